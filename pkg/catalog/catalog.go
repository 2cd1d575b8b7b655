package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/aretw0/accelerate/pkg/domain"
)

// entry is one motion file matched by the template pattern.
type entry struct {
	file    string
	version string
	name    string
	op      domain.Operation
}

// key identifies the motion an add/sub file belongs to: its file name without the
// operation part.
func (e entry) key(t *template) string {
	return e.version + t.separator + e.name + t.extension
}

// Discover reads the motion catalog stored in dir.
//
// The directory must hold exactly one template pair. Every file following the template's
// naming convention is paired with its counterpart by name; motions are ordered by file
// name, so zero-padded versions sort naturally.
func Discover(dir string) ([]domain.Motion, error) {
	motions, _, err := discover(dir)
	return motions, err
}

func discover(dir string) ([]domain.Motion, *template, error) {
	names, err := listFiles(dir)
	if err != nil {
		return nil, nil, err
	}

	tmpl, err := loadTemplate(dir, names)
	if err != nil {
		return nil, nil, err
	}

	adds := map[string]entry{}
	subs := map[string]entry{}
	for _, name := range names {
		m := tmpl.pattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		e := entry{file: name, version: m[1], name: m[2], op: domain.Forward}
		target := adds
		if strings.EqualFold(m[3], domain.Backward.Name()) {
			e.op = domain.Backward
			target = subs
		}

		k := e.key(tmpl)
		if prev, ok := target[k]; ok {
			return nil, nil, fmt.Errorf("%w: '%s' and '%s' describe the same motion", domain.ErrInvalidCatalog, prev.file, name)
		}
		target[k] = e
	}

	keys := make([]string, 0, len(adds))
	for k := range adds {
		keys = append(keys, k)
	}
	for k := range subs {
		if _, ok := adds[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	motions := make([]domain.Motion, 0, len(keys))
	for _, k := range keys {
		add, hasAdd := adds[k]
		sub, hasSub := subs[k]
		if !hasAdd {
			return nil, nil, fmt.Errorf("%w: add file not found for sub file '%s'", domain.ErrInvalidCatalog, sub.file)
		}
		if !hasSub {
			return nil, nil, fmt.Errorf("%w: sub file not found for add file '%s'", domain.ErrInvalidCatalog, add.file)
		}

		m, err := load(dir, k, add, sub)
		if err != nil {
			return nil, nil, err
		}
		motions = append(motions, m)
	}
	return motions, tmpl, nil
}

func load(dir, name string, add, sub entry) (domain.Motion, error) {
	version, err := parseVersion(add.version)
	if err != nil {
		return domain.Motion{}, fmt.Errorf("%w: '%s': %v", domain.ErrInvalidCatalog, add.file, err)
	}

	m := domain.Motion{
		Name:    name,
		Version: version,
		AddPath: filepath.Join(dir, add.file),
		SubPath: filepath.Join(dir, sub.file),
	}
	if m.Add, err = readBody(m.AddPath); err != nil {
		return domain.Motion{}, err
	}
	if m.Sub, err = readBody(m.SubPath); err != nil {
		return domain.Motion{}, err
	}
	return m, nil
}

func parseVersion(s string) ([]int, error) {
	parts := strings.Split(s, ".")
	version := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("malformed version component %q", p)
		}
		version[i] = v
	}
	return version, nil
}

// listFiles returns the sorted names of the regular files in dir.
func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCatalog, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}
