package plugin

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

var (
	// ErrNoFrontMatter is returned for documents that do not open with a
	// "---" line.
	ErrNoFrontMatter = errors.New("no front matter")

	// ErrUnterminatedFrontMatter is returned when the closing "---" is missing.
	ErrUnterminatedFrontMatter = errors.New("front matter is not terminated")
)

// FrontMatter is the YAML header of a skill, agent or command document.
type FrontMatter map[string]any

// String returns key as a string, or "" when absent or not a string.
func (fm FrontMatter) String(key string) string {
	s, _ := fm[key].(string)
	return s
}

// Has reports whether key is present.
func (fm FrontMatter) Has(key string) bool {
	_, ok := fm[key]
	return ok
}

// ParseFrontMatter splits a Markdown document into its YAML front matter
// and body. The document must start with a "---" line and the front
// matter ends at the next "---" line.
func ParseFrontMatter(doc []byte) (FrontMatter, []byte, error) {
	doc = bytes.TrimPrefix(doc, []byte("\xef\xbb\xbf"))

	first, rest, _ := cutLine(doc)
	if string(bytes.TrimRight(first, " \t")) != "---" {
		return nil, doc, ErrNoFrontMatter
	}

	var header []byte
	for {
		line, next, more := cutLine(rest)
		if string(bytes.TrimRight(line, " \t")) == "---" {
			fm := FrontMatter{}
			if len(bytes.TrimSpace(header)) > 0 {
				if err := yaml.Unmarshal(header, &fm); err != nil {
					return nil, next, fmt.Errorf("invalid front matter YAML: %w", err)
				}
			}
			return fm, next, nil
		}
		header = append(header, line...)
		header = append(header, '\n')
		if !more {
			return nil, nil, ErrUnterminatedFrontMatter
		}
		rest = next
	}
}

// cutLine returns the first line of b without its terminator, the rest,
// and whether a terminator was found.
func cutLine(b []byte) (line, rest []byte, found bool) {
	line, rest, found = bytes.Cut(b, []byte("\n"))
	return bytes.TrimSuffix(line, []byte("\r")), rest, found
}
