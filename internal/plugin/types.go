// Package plugin lints a plugin marketplace checkout: the marketplace
// manifest, each listed plugin's manifest, and the skill, agent and command
// documents inside every plugin. Markdown bodies are never interpreted;
// only directory shape, names and front matter are checked.
package plugin

import (
	"cmp"
	"slices"
)

// Severity classifies an Issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one finding.
type Issue struct {
	Severity Severity `json:"severity"`
	// Path is slash-separated and relative to the marketplace root.
	Path    string `json:"path"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Report is the result of validating one marketplace.
type Report struct {
	Root    string   `json:"root"`
	Plugins []string `json:"plugins"`
	Issues  []Issue  `json:"issues"`
}

// HasErrors reports whether any issue has error severity.
func (r *Report) HasErrors() bool {
	return r.Count(SeverityError) > 0
}

// Count returns the number of issues with severity s.
func (r *Report) Count(s Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == s {
			n++
		}
	}
	return n
}

// Sort orders issues by path, then errors before warnings, then rule.
func (r *Report) Sort() {
	slices.SortStableFunc(r.Issues, func(a, b Issue) int {
		return cmp.Or(
			cmp.Compare(a.Path, b.Path),
			cmp.Compare(severityRank(a.Severity), severityRank(b.Severity)),
			cmp.Compare(a.Rule, b.Rule),
		)
	})
}

func severityRank(s Severity) int {
	if s == SeverityError {
		return 0
	}
	return 1
}

// Marketplace is .cursor-plugin/marketplace.json.
type Marketplace struct {
	Name     string             `json:"name"`
	Owner    Person             `json:"owner"`
	Metadata MarketplaceMeta    `json:"metadata"`
	Plugins  []MarketplaceEntry `json:"plugins"`
}

// MarketplaceMeta is the marketplace metadata block.
type MarketplaceMeta struct {
	Description string `json:"description"`
	Version     string `json:"version"`
	// PluginRoot is where plugin directories live, "plugins" when empty.
	PluginRoot string `json:"pluginRoot,omitempty"`
}

// MarketplaceEntry lists one plugin.
type MarketplaceEntry struct {
	Name        string `json:"name"`
	Source      string `json:"source"`
	Description string `json:"description"`
	Version     string `json:"version,omitempty"`
}

// Person is an owner or author.
type Person struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	URL   string `json:"url,omitempty"`
}

// Manifest is <plugin>/.cursor-plugin/plugin.json.
type Manifest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Version     string   `json:"version"`
	Author      *Person  `json:"author,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	License     string   `json:"license,omitempty"`
	Homepage    string   `json:"homepage,omitempty"`
	Repository  string   `json:"repository,omitempty"`
}
