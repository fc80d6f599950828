package plugin

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

// Embedded schema names.
const (
	marketplaceSchema = "marketplace.schema.json"
	pluginSchema      = "plugin.schema.json"
)

var (
	compileOnce sync.Once
	compiled    map[string]*jsonschema.Schema
	compileErr  error
	printer     = message.NewPrinter(language.English)
)

// schemaIssue is one leaf failure from schema validation.
type schemaIssue struct {
	Pointer string
	Keyword string
	Message string
}

func loadSchemas() (map[string]*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		c := jsonschema.NewCompiler()
		names := []string{marketplaceSchema, pluginSchema}

		for _, name := range names {
			raw, err := schemaFS.ReadFile("schemas/" + name)
			if err != nil {
				compileErr = fmt.Errorf("reading %s: %w", name, err)
				return
			}
			doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
			if err != nil {
				compileErr = fmt.Errorf("unmarshaling %s: %w", name, err)
				return
			}
			if err := c.AddResource(name, doc); err != nil {
				compileErr = fmt.Errorf("adding schema resource %s: %w", name, err)
				return
			}
		}

		out := make(map[string]*jsonschema.Schema, len(names))
		for _, name := range names {
			sch, err := c.Compile(name)
			if err != nil {
				compileErr = fmt.Errorf("compiling %s: %w", name, err)
				return
			}
			out[name] = sch
		}
		compiled = out
	})
	return compiled, compileErr
}

// validateSchema checks data against the named embedded schema. A non-nil
// error means data is not JSON or the schema is broken; schema violations
// come back as issues.
func validateSchema(name string, data []byte) ([]schemaIssue, error) {
	schemas, err := loadSchemas()
	if err != nil {
		return nil, err
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	err = schemas[name].Validate(inst)
	if err == nil {
		return nil, nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return nil, fmt.Errorf("unexpected validation error type: %w", err)
	}

	var issues []schemaIssue
	collectSchemaIssues(ve, &issues)
	if len(issues) == 0 {
		issues = append(issues, schemaIssue{Message: ve.Error()})
	}
	return dedupe(issues), nil
}

func collectSchemaIssues(ve *jsonschema.ValidationError, issues *[]schemaIssue) {
	if len(ve.Causes) > 0 {
		for _, cause := range ve.Causes {
			collectSchemaIssues(cause, issues)
		}
		return
	}

	var keyword, msg string
	if ve.ErrorKind != nil {
		if kw := ve.ErrorKind.KeywordPath(); len(kw) > 0 {
			keyword = kw[len(kw)-1]
		}
		msg = ve.ErrorKind.LocalizedString(printer)
	}
	if keyword == "" || keyword == "allOf" || keyword == "oneOf" || keyword == "$ref" {
		return
	}

	pointer := ""
	if len(ve.InstanceLocation) > 0 {
		pointer = "/" + strings.Join(ve.InstanceLocation, "/")
	}
	*issues = append(*issues, schemaIssue{Pointer: pointer, Keyword: keyword, Message: msg})
}

func dedupe(issues []schemaIssue) []schemaIssue {
	seen := make(map[schemaIssue]bool, len(issues))
	out := issues[:0]
	for _, issue := range issues {
		if seen[issue] {
			continue
		}
		seen[issue] = true
		out = append(out, issue)
	}
	return out
}
