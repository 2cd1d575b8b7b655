package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aretw0/accelerate/pkg/domain"
)

var (
	templateAddRegex = regexp.MustCompile(`(?i)^([x.]+)([-_ ~]+)template\.add(.*)$`)
	templateSubRegex = regexp.MustCompile(`(?i)^([x.]+)([-_ ~]+)template\.sub(.*)$`)
)

// template describes the naming convention of a motion directory, derived from its
// pair of template files (e.g. "xxx-template.add.sql" / "xxx-template.sub.sql").
type template struct {
	// widths holds the zero-padded width of each dot-separated version component.
	widths    []int
	separator string
	extension string
	add       string
	sub       string
	pattern   *regexp.Regexp
}

// loadTemplate finds the one template pair in dir and reads both bodies.
func loadTemplate(dir string, names []string) (*template, error) {
	var adds, subs []string
	for _, name := range names {
		if templateAddRegex.MatchString(name) {
			adds = append(adds, name)
		}
		if templateSubRegex.MatchString(name) {
			subs = append(subs, name)
		}
	}

	if len(adds) == 0 || len(subs) == 0 {
		return nil, fmt.Errorf("%w: no valid template in directory %s", domain.ErrInvalidCatalog, dir)
	}
	if len(adds) > 1 || len(subs) > 1 {
		return nil, fmt.Errorf("%w: expected one template pair in %s, found %d add and %d sub templates",
			domain.ErrInvalidCatalog, dir, len(adds), len(subs))
	}

	addMatch := templateAddRegex.FindStringSubmatch(adds[0])
	subMatch := templateSubRegex.FindStringSubmatch(subs[0])
	if addMatch[1] != subMatch[1] || addMatch[2] != subMatch[2] || addMatch[3] != subMatch[3] {
		return nil, fmt.Errorf("%w: template '%s' does not match '%s'", domain.ErrInvalidCatalog, adds[0], subs[0])
	}

	widths, err := versionWidths(addMatch[1])
	if err != nil {
		return nil, fmt.Errorf("%w: template '%s': %v", domain.ErrInvalidCatalog, adds[0], err)
	}

	t := &template{
		widths:    widths,
		separator: addMatch[2],
		extension: addMatch[3],
	}
	t.pattern = t.motionPattern()

	if t.add, err = readBody(filepath.Join(dir, adds[0])); err != nil {
		return nil, err
	}
	if t.sub, err = readBody(filepath.Join(dir, subs[0])); err != nil {
		return nil, err
	}
	return t, nil
}

// versionWidths turns a version pattern such as "x.x.xx" into component widths.
func versionWidths(pattern string) ([]int, error) {
	parts := strings.Split(pattern, ".")
	widths := make([]int, len(parts))
	for i, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("malformed version pattern %q", pattern)
		}
		widths[i] = len(p)
	}
	return widths, nil
}

// motionPattern matches motion file names: version, separator, name, operation, extension.
func (t *template) motionPattern() *regexp.Regexp {
	components := make([]string, len(t.widths))
	for i, w := range t.widths {
		components[i] = fmt.Sprintf(`\d{%d}`, w)
	}
	return regexp.MustCompile(`(?i)^(` + strings.Join(components, `\.`) + `)` +
		regexp.QuoteMeta(t.separator) + `(.+)\.(add|sub)` + regexp.QuoteMeta(t.extension) + `$`)
}

// fileName renders the file name for a motion half.
func (t *template) fileName(version, name string, op domain.Operation) string {
	return version + t.separator + name + "." + op.Name() + t.extension
}

// formatVersion zero-pads each component to its template width.
func (t *template) formatVersion(version []int) (string, error) {
	parts := make([]string, len(version))
	for i, v := range version {
		s := fmt.Sprintf("%0*d", t.widths[i], v)
		if len(s) != t.widths[i] {
			return "", fmt.Errorf("%w: version component '%s' does not fit in %d digits",
				domain.ErrInvalidCatalog, s, t.widths[i])
		}
		parts[i] = s
	}
	return strings.Join(parts, "."), nil
}

func readBody(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidCatalog, err)
	}
	return string(data), nil
}
