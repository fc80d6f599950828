package plugin

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
)

// Layout of a marketplace checkout.
const (
	ManifestDir        = ".cursor-plugin"
	MarketplaceFile    = ManifestDir + "/marketplace.json"
	PluginManifestFile = ManifestDir + "/plugin.json"
	DefaultPluginRoot  = "plugins"
	SkillsDir          = "skills"
	AgentsDir          = "agents"
	CommandsDir        = "commands"
	SkillFile          = "SKILL.md"
	SkillAssetsDir     = "assets"
	markdownExt        = ".md"
	frontMatterDescKey = "description"
	frontMatterNameKey = "name"
)

// Rule identifiers reported in Issue.Rule.
const (
	RuleMarketplaceMissing = "marketplace-missing"
	RuleMarketplaceInvalid = "marketplace-invalid"
	RuleMarketplaceSchema  = "marketplace-schema"
	RuleManifestMissing    = "manifest-missing"
	RuleManifestInvalid    = "manifest-invalid"
	RuleManifestSchema     = "manifest-schema"
	RuleVersion            = "semver"
	RuleKebabCase          = "kebab-case"
	RuleDuplicatePlugin    = "duplicate-plugin"
	RuleSourceMissing      = "source-missing"
	RuleSourceOutsideRoot  = "source-outside-root"
	RuleNameMismatch       = "name-mismatch"
	RuleEmptyPlugin        = "empty-plugin"
	RuleSkillFileMissing   = "skill-file-missing"
	RuleFrontMatter        = "front-matter"
	RuleStrayFile          = "stray-file"
	RuleUnlistedPlugin     = "unlisted-plugin"
)

// Validate lints the marketplace checked out at root. The error is
// non-nil only when root cannot be read at all.
func Validate(root string) (*Report, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("marketplace root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("marketplace root %s is not a directory", root)
	}
	return ValidateFS(os.DirFS(root), root), nil
}

// ValidateFS lints the marketplace in fsys. root is only recorded in the
// report.
func ValidateFS(fsys fs.FS, root string) *Report {
	v := &validator{fsys: fsys, report: &Report{Root: root, Plugins: []string{}, Issues: []Issue{}}}
	v.run()
	v.report.Sort()
	return v.report
}

type validator struct {
	fsys   fs.FS
	report *Report
}

func (v *validator) errorf(p, rule, format string, args ...any) {
	v.add(SeverityError, p, rule, format, args...)
}

func (v *validator) warnf(p, rule, format string, args ...any) {
	v.add(SeverityWarning, p, rule, format, args...)
}

func (v *validator) add(sev Severity, p, rule, format string, args ...any) {
	v.report.Issues = append(v.report.Issues, Issue{
		Severity: sev,
		Path:     p,
		Rule:     rule,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (v *validator) run() {
	data, err := fs.ReadFile(v.fsys, MarketplaceFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			v.errorf(MarketplaceFile, RuleMarketplaceMissing, "marketplace manifest not found")
		} else {
			v.errorf(MarketplaceFile, RuleMarketplaceInvalid, "reading marketplace manifest: %v", err)
		}
		return
	}

	var m Marketplace
	if !v.checkJSON(MarketplaceFile, marketplaceSchema, RuleMarketplaceInvalid, RuleMarketplaceSchema, data, &m) {
		return
	}

	if m.Metadata.Version != "" {
		if _, err := ParseVersion(m.Metadata.Version); err != nil {
			v.errorf(MarketplaceFile, RuleVersion, "metadata.version %q is not a semantic version", m.Metadata.Version)
		}
	}

	pluginRoot, customRoot := DefaultPluginRoot, false
	if m.Metadata.PluginRoot != "" {
		if dir, ok := cleanSource(m.Metadata.PluginRoot); ok {
			pluginRoot, customRoot = dir, true
		} else {
			v.errorf(MarketplaceFile, RuleSourceOutsideRoot, "metadata.pluginRoot %q escapes the marketplace root", m.Metadata.PluginRoot)
		}
	}

	seen := make(map[string]bool)
	listed := make(map[string]bool)

	for i, entry := range m.Plugins {
		where := fmt.Sprintf("%s#/plugins/%d", MarketplaceFile, i)

		if entry.Name == "" {
			continue
		}
		if !IsKebabCase(entry.Name) {
			v.errorf(where, RuleKebabCase, "plugin name %q must be kebab-case", entry.Name)
		}
		if seen[entry.Name] {
			v.errorf(where, RuleDuplicatePlugin, "plugin %q is listed more than once", entry.Name)
			continue
		}
		seen[entry.Name] = true

		if entry.Source == "" {
			continue
		}
		dir, ok := cleanSource(entry.Source)
		if !ok {
			v.errorf(where, RuleSourceOutsideRoot, "source %q escapes the marketplace root", entry.Source)
			continue
		}
		if customRoot {
			dir = v.underPluginRoot(pluginRoot, dir)
		}
		listed[dir] = true

		info, err := fs.Stat(v.fsys, dir)
		if err != nil || !info.IsDir() {
			v.errorf(where, RuleSourceMissing, "source directory %q does not exist", entry.Source)
			continue
		}

		if base := path.Base(dir); base != entry.Name {
			v.errorf(dir, RuleNameMismatch, "directory name %q does not match plugin name %q", base, entry.Name)
		}

		v.report.Plugins = append(v.report.Plugins, entry.Name)
		v.validatePlugin(dir, entry)
	}

	v.checkUnlisted(pluginRoot, listed)
}

// checkJSON validates data against schema and decodes it into dst. It
// returns false when decoding is impossible.
func (v *validator) checkJSON(p, schema, invalidRule, schemaRule string, data []byte, dst any) bool {
	issues, err := validateSchema(schema, data)
	if err != nil {
		v.errorf(p, invalidRule, "invalid JSON: %v", err)
		return false
	}
	for _, issue := range issues {
		loc := issue.Pointer
		if loc == "" {
			loc = "/"
		}
		v.errorf(p, schemaRule, "%s: %s", loc, issue.Message)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		if len(issues) == 0 {
			v.errorf(p, invalidRule, "decoding: %v", err)
		}
		return false
	}
	return true
}

func (v *validator) validatePlugin(dir string, entry MarketplaceEntry) {
	manifestPath := path.Join(dir, PluginManifestFile)

	data, err := fs.ReadFile(v.fsys, manifestPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		v.errorf(manifestPath, RuleManifestMissing, "plugin manifest not found")
	case err != nil:
		v.errorf(manifestPath, RuleManifestInvalid, "reading plugin manifest: %v", err)
	default:
		var manifest Manifest
		if v.checkJSON(manifestPath, pluginSchema, RuleManifestInvalid, RuleManifestSchema, data, &manifest) {
			if manifest.Name != "" && manifest.Name != entry.Name {
				v.errorf(manifestPath, RuleNameMismatch, "manifest name %q does not match marketplace entry %q", manifest.Name, entry.Name)
			}
			if manifest.Version != "" {
				if _, err := ParseVersion(manifest.Version); err != nil {
					v.errorf(manifestPath, RuleVersion, "version %q is not a semantic version", manifest.Version)
				}
			}
		}
	}

	items := v.validateSkills(path.Join(dir, SkillsDir))
	items += v.validateDocuments(path.Join(dir, AgentsDir), "agent")
	items += v.validateDocuments(path.Join(dir, CommandsDir), "command")

	if items == 0 {
		v.errorf(dir, RuleEmptyPlugin, "plugin has no skills, agents or commands")
	}
}

// validateSkills checks skills/<skill>/SKILL.md and returns the number of
// skill directories.
func (v *validator) validateSkills(dir string) int {
	entries, err := fs.ReadDir(v.fsys, dir)
	if err != nil {
		return 0
	}

	count := 0
	for _, e := range entries {
		p := path.Join(dir, e.Name())
		if isHidden(e.Name()) {
			continue
		}
		if !e.IsDir() {
			v.warnf(p, RuleStrayFile, "unexpected file in %s/; skills live in their own directory", SkillsDir)
			continue
		}

		count++
		if !IsKebabCase(e.Name()) {
			v.errorf(p, RuleKebabCase, "skill name %q must be kebab-case", e.Name())
		}
		v.validateSkill(p, e.Name())
	}
	return count
}

func (v *validator) validateSkill(dir, name string) {
	entries, err := fs.ReadDir(v.fsys, dir)
	if err != nil {
		v.errorf(dir, RuleSkillFileMissing, "reading skill directory: %v", err)
		return
	}

	hasSkillFile := false
	for _, e := range entries {
		switch {
		case isHidden(e.Name()):
		case e.Name() == SkillFile && !e.IsDir():
			hasSkillFile = true
		case e.Name() == SkillAssetsDir && e.IsDir():
		default:
			v.warnf(path.Join(dir, e.Name()), RuleStrayFile, "only %s and %s/ belong in a skill directory", SkillFile, SkillAssetsDir)
		}
	}

	skillPath := path.Join(dir, SkillFile)
	if !hasSkillFile {
		v.errorf(skillPath, RuleSkillFileMissing, "skill %q has no %s", name, SkillFile)
		return
	}

	fm, ok := v.frontMatter(skillPath)
	if !ok {
		return
	}
	switch got := fm.String(frontMatterNameKey); {
	case got == "":
		v.errorf(skillPath, RuleFrontMatter, "front matter needs a name")
	case got != name:
		v.errorf(skillPath, RuleNameMismatch, "front matter name %q does not match directory %q", got, name)
	}
	if strings.TrimSpace(fm.String(frontMatterDescKey)) == "" {
		v.errorf(skillPath, RuleFrontMatter, "front matter needs a description")
	}
}

// validateDocuments checks agents/*.md or commands/*.md and returns how
// many documents were found.
func (v *validator) validateDocuments(dir, kind string) int {
	entries, err := fs.ReadDir(v.fsys, dir)
	if err != nil {
		return 0
	}

	count := 0
	for _, e := range entries {
		p := path.Join(dir, e.Name())
		if isHidden(e.Name()) {
			continue
		}
		if e.IsDir() || path.Ext(e.Name()) != markdownExt {
			v.warnf(p, RuleStrayFile, "only %s files belong in %s/", markdownExt, path.Base(dir))
			continue
		}

		count++
		stem := strings.TrimSuffix(e.Name(), markdownExt)
		if !IsKebabCase(stem) {
			v.errorf(p, RuleKebabCase, "%s name %q must be kebab-case", kind, stem)
		}

		fm, ok := v.frontMatter(p)
		if !ok {
			continue
		}
		if strings.TrimSpace(fm.String(frontMatterDescKey)) == "" {
			v.errorf(p, RuleFrontMatter, "front matter needs a description")
		}
		if fm.Has(frontMatterNameKey) && fm.String(frontMatterNameKey) != stem {
			v.errorf(p, RuleNameMismatch, "front matter name %v does not match file name %q", fm[frontMatterNameKey], stem)
		}
	}
	return count
}

func (v *validator) frontMatter(p string) (FrontMatter, bool) {
	data, err := fs.ReadFile(v.fsys, p)
	if err != nil {
		v.errorf(p, RuleFrontMatter, "reading: %v", err)
		return nil, false
	}
	fm, _, err := ParseFrontMatter(data)
	if err != nil {
		v.errorf(p, RuleFrontMatter, "%v", err)
		return nil, false
	}
	return fm, true
}

func (v *validator) checkUnlisted(pluginRoot string, listed map[string]bool) {
	entries, err := fs.ReadDir(v.fsys, pluginRoot)
	if err != nil {
		return
	}
	for _, e := range entries {
		if !e.IsDir() || isHidden(e.Name()) {
			continue
		}
		p := path.Join(pluginRoot, e.Name())
		if !listed[p] {
			v.warnf(p, RuleUnlistedPlugin, "plugin directory is not listed in %s", MarketplaceFile)
		}
	}
}

// cleanSource turns a marketplace-relative source into an fs.FS path. It
// reports false for absolute paths and paths leaving the root.
// underPluginRoot resolves a source against metadata.pluginRoot. A source
// already inside the plugin root, or one that exists relative to the
// marketplace root, is kept as is.
func (v *validator) underPluginRoot(pluginRoot, dir string) string {
	if dir == pluginRoot || strings.HasPrefix(dir, pluginRoot+"/") {
		return dir
	}
	if info, err := fs.Stat(v.fsys, dir); err == nil && info.IsDir() {
		return dir
	}
	return path.Join(pluginRoot, dir)
}

func cleanSource(source string) (string, bool) {
	if path.IsAbs(source) || strings.Contains(source, `\`) {
		return "", false
	}
	p := path.Clean(source)
	if p == ".." || strings.HasPrefix(p, "../") || !fs.ValidPath(p) {
		return "", false
	}
	return p, true
}
