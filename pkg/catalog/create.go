package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/accelerate/pkg/domain"
)

// Create scaffolds a new motion in dir from the directory's template.
//
// The new version is the last motion's version with its least significant component
// incremented (or 0…01 for an empty catalog). Both files are written from the template
// bodies. Existing files are never overwritten.
func Create(dir, name string) (domain.Motion, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return domain.Motion{}, fmt.Errorf("%w: invalid motion name %q", domain.ErrInvalidCatalog, name)
	}

	motions, tmpl, err := discover(dir)
	if err != nil {
		return domain.Motion{}, err
	}

	version := make([]int, len(tmpl.widths))
	if len(motions) > 0 {
		last := motions[len(motions)-1].Version
		if len(last) != len(version) {
			return domain.Motion{}, fmt.Errorf("%w: motion '%s' does not follow the template version pattern",
				domain.ErrInvalidCatalog, motions[len(motions)-1].Name)
		}
		copy(version, last)
	}
	version[len(version)-1]++

	prefix, err := tmpl.formatVersion(version)
	if err != nil {
		return domain.Motion{}, err
	}

	m := domain.Motion{
		Name:    prefix + tmpl.separator + name + tmpl.extension,
		Version: version,
		Add:     tmpl.add,
		Sub:     tmpl.sub,
		AddPath: filepath.Join(dir, tmpl.fileName(prefix, name, domain.Forward)),
		SubPath: filepath.Join(dir, tmpl.fileName(prefix, name, domain.Backward)),
	}

	if err := writeNew(m.AddPath, m.Add); err != nil {
		return domain.Motion{}, err
	}
	if err := writeNew(m.SubPath, m.Sub); err != nil {
		// Leave the catalog consistent: no add file without its sub file.
		_ = os.Remove(m.AddPath)
		return domain.Motion{}, err
	}
	return m, nil
}

func writeNew(path, body string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidCatalog, err)
	}
	if _, err := f.WriteString(body); err != nil {
		f.Close()
		return fmt.Errorf("%w: %v", domain.ErrInvalidCatalog, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidCatalog, err)
	}
	return nil
}
