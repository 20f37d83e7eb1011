package entities

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

const overrideSection = "[replace]"

var (
	inlineVersionPattern = regexp.MustCompile(`version\s*=\s*"[^"]*"`)
	inlinePathPattern    = regexp.MustCompile(`path\s*=\s*"[^"]*"`)
)

// ManifestDocument is the line model of one manifest. Every operation rewrites
// only the lines matching its key pattern; all other lines stay byte-identical.
type ManifestDocument struct {
	lines []string
}

// ParseManifestDocument splits content into lines without interpreting it.
func ParseManifestDocument(content []byte) *ManifestDocument {
	return &ManifestDocument{lines: strings.Split(string(content), "\n")}
}

// Bytes joins the lines back into file content.
func (d *ManifestDocument) Bytes() []byte {
	return []byte(strings.Join(d.lines, "\n"))
}

// String returns the document content.
func (d *ManifestDocument) String() string {
	return strings.Join(d.lines, "\n")
}

// Clone returns an independent copy of the document.
func (d *ManifestDocument) Clone() *ManifestDocument {
	return &ManifestDocument{lines: append([]string(nil), d.lines...)}
}

// BumpVersion rewrites the first `version = "<old>"` line to the new version.
func (d *ManifestDocument) BumpVersion(old, next *semver.Version) bool {
	pattern := regexp.MustCompile(`^\s*version\s*=\s*"` + regexp.QuoteMeta(old.String()) + `"\s*(#.*)?$`)
	for i, line := range d.lines {
		if pattern.MatchString(line) {
			d.lines[i] = strings.Replace(line, quote(old.String()), quote(next.String()), 1)
			return d.lines[i] != line
		}
	}
	return false
}

// UpdateDependency rewrites the requested version of every entry for name,
// in bare (`name = "1.2.3"`) or inline-table (`name = { version = "1.2.3" }`)
// form. Requirement operators (=, ^, ~) in front of the version are kept.
func (d *ManifestDocument) UpdateDependency(name string, old, next *semver.Version) bool {
	key := dependencyKeyPattern(name)
	value := regexp.MustCompile(`"([=^~]?)` + regexp.QuoteMeta(old.String()) + `"`)
	changed := false
	for i, line := range d.lines {
		if !key.MatchString(line) {
			continue
		}
		updated := value.ReplaceAllString(line, `"${1}`+next.String()+`"`)
		if updated != line {
			d.lines[i] = updated
			changed = true
		}
	}
	return changed
}

// SetDependencyPath makes every entry for name carry both a version and a
// local path, converting the bare form into an inline table.
func (d *ManifestDocument) SetDependencyPath(name, relPath string, version *semver.Version) bool {
	key := dependencyKeyPattern(name)
	bare := regexp.MustCompile(`^(\s*)` + regexp.QuoteMeta(name) + `\s*=\s*"[^"]*"\s*(#.*)?$`)
	inline := regexp.MustCompile(`^(\s*` + regexp.QuoteMeta(name) + `\s*=\s*\{)(.*)\}(.*)$`)

	versionEntry := "version = " + quote(version.String())
	pathEntry := "path = " + quote(relPath)
	changed := false
	for i, line := range d.lines {
		if !key.MatchString(line) {
			continue
		}
		var updated string
		switch {
		case bare.MatchString(line):
			indent := bare.FindStringSubmatch(line)[1]
			updated = fmt.Sprintf("%s%s = { %s, %s }", indent, name, versionEntry, pathEntry)
		case inline.MatchString(line):
			parts := inline.FindStringSubmatch(line)
			updated = parts[1] + setInlineEntries(parts[2], versionEntry, pathEntry) + "}" + parts[3]
		default:
			continue
		}
		if updated != line {
			d.lines[i] = updated
			changed = true
		}
	}
	return changed
}

// SetOrInsertOverride rewrites the first `"name:<old>"` override key to the
// target version. When no such entry exists and the target names a source, a
// new entry is appended to the override section. An entry already keyed on the
// target version leaves the document unchanged.
func (d *ManifestDocument) SetOrInsertOverride(name string, old *semver.Version, target Override) bool {
	targetKey := quote(name + ":" + target.Version.String())
	for _, line := range d.lines {
		if strings.HasPrefix(strings.TrimSpace(line), targetKey) {
			return false
		}
	}

	oldKey := quote(name + ":" + old.String())
	for i, line := range d.lines {
		if !strings.HasPrefix(strings.TrimSpace(line), oldKey) {
			continue
		}
		if target.HasSource() {
			indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
			d.lines[i] = indent + targetKey + " = " + target.Source()
		} else {
			d.lines[i] = strings.Replace(line, oldKey, targetKey, 1)
		}
		return true
	}

	if !target.HasSource() {
		return false
	}
	d.appendOverride(targetKey + " = " + target.Source())
	return true
}

// Contains reports whether any line contains the given text.
func (d *ManifestDocument) Contains(text string) bool {
	for _, line := range d.lines {
		if strings.Contains(line, text) {
			return true
		}
	}
	return false
}

func (d *ManifestDocument) appendOverride(entry string) {
	section := -1
	for i, line := range d.lines {
		if strings.TrimSpace(line) == overrideSection {
			section = i
			break
		}
	}

	if section < 0 {
		extra := []string{"", overrideSection, entry}
		// keep the trailing newline, if any, at the end of the document
		if n := len(d.lines); n > 0 && d.lines[n-1] == "" {
			d.lines = append(append(d.lines[:n-1:n-1], extra...), "")
			return
		}
		d.lines = append(d.lines, extra...)
		return
	}

	// insert after the last non-blank line of the section
	at := section + 1
	for i := section + 1; i < len(d.lines); i++ {
		trimmed := strings.TrimSpace(d.lines[i])
		if strings.HasPrefix(trimmed, "[") {
			break
		}
		if trimmed != "" {
			at = i + 1
		}
	}
	d.lines = append(d.lines[:at:at], append([]string{entry}, d.lines[at:]...)...)
}

// Override is the target of a workspace-level override entry.
type Override struct {
	Version *semver.Version
	Git     string
	Rev     string
	Path    string
}

// HasSource reports whether the override names a git or path source.
func (o Override) HasSource() bool {
	return o.Path != "" || o.Git != ""
}

// Source renders the inline table of the override value.
func (o Override) Source() string {
	if o.Path != "" {
		return "{ path = " + quote(o.Path) + " }"
	}
	if o.Rev != "" {
		return "{ git = " + quote(o.Git) + ", rev = " + quote(o.Rev) + " }"
	}
	return "{ git = " + quote(o.Git) + " }"
}

func dependencyKeyPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`^\s*` + regexp.QuoteMeta(name) + `\s*=`)
}

// setInlineEntries sets the version and path keys inside the body of an inline table.
func setInlineEntries(body, versionEntry, pathEntry string) string {
	if inlineVersionPattern.MatchString(body) {
		body = inlineVersionPattern.ReplaceAllLiteralString(body, versionEntry)
	} else {
		body = " " + versionEntry + "," + body
	}
	if inlinePathPattern.MatchString(body) {
		return inlinePathPattern.ReplaceAllLiteralString(body, pathEntry)
	}
	trimmed := strings.TrimRight(body, " ")
	if strings.HasSuffix(trimmed, ",") {
		return trimmed + " " + pathEntry + " "
	}
	return trimmed + ", " + pathEntry + " "
}

func quote(value string) string {
	return `"` + value + `"`
}
