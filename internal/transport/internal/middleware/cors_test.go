package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		allowed    []string
		method     string
		origin     string
		wantStatus int
		wantOrigin string
		wantNext   bool
	}{
		{"wildcard preflight", []string{"*"}, http.MethodOptions, "https://app.example", http.StatusNoContent, "*", false},
		{"wildcard post", []string{"*"}, http.MethodPost, "https://app.example", http.StatusOK, "*", true},
		{"listed origin", []string{"https://app.example"}, http.MethodGet, "https://app.example", http.StatusOK, "https://app.example", true},
		{"unlisted origin", []string{"https://app.example"}, http.MethodGet, "https://evil.example", http.StatusOK, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			called := false
			handler := NewCORSMiddleware(tt.allowed)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))

			req := httptest.NewRequest(tt.method, "/mcp", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
			if called != tt.wantNext {
				t.Errorf("next called = %v, want %v", called, tt.wantNext)
			}
			if tt.method == http.MethodOptions && w.Header().Get("Access-Control-Allow-Headers") == "" {
				t.Error("preflight without Allow-Headers")
			}
		})
	}
}
