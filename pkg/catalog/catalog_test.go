package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/accelerate/pkg/catalog"
	"github.com/aretw0/accelerate/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeDir creates a motion directory from a name → body map.
func writeDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0644))
	}
	return dir
}

func names(motions []domain.Motion) []string {
	out := make([]string, len(motions))
	for i, m := range motions {
		out[i] = m.Name
	}
	return out
}

func TestDiscover_Standard(t *testing.T) {
	dir := writeDir(t, map[string]string{
		"xxx-template.add":    "",
		"xxx-template.sub":    "",
		"999-thing.add":       "999,thing,add\n",
		"999-thing.sub":       "999,thing,sub\n",
		"001-lorem-ipsum.add": "001,lorem-ipsum,add\n",
		"001-lorem-ipsum.sub": "001,lorem-ipsum,sub\n",
		"004-motion.add":      "004,motion,add\n",
		"004-motion.sub":      "004,motion,sub\n",
		"002-hello-world.add": "002,hello-world,add\n",
		"002-hello-world.sub": "002,hello-world,sub\n",
		"README.md":           "not a motion",
		"03-too-short.add":    "ignored",
		"0005-too-long.add":   "ignored",
	})

	motions, err := catalog.Discover(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"001-lorem-ipsum", "002-hello-world", "004-motion", "999-thing"}, names(motions))
	assert.Equal(t, "001,lorem-ipsum,add\n", motions[0].Add)
	assert.Equal(t, "001,lorem-ipsum,sub\n", motions[0].Sub)
	assert.Equal(t, []int{4}, motions[2].Version)
	assert.Equal(t, filepath.Join(dir, "999-thing.add"), motions[3].AddPath)
	assert.Equal(t, filepath.Join(dir, "999-thing.sub"), motions[3].SubPath)
}

func TestDiscover_Semantic(t *testing.T) {
	dir := writeDir(t, map[string]string{
		"x.x.xx-template.add":    "",
		"x.x.xx-template.sub":    "",
		"3.2.01-hello-world.add": "3.2.01,hello-world,add\n",
		"3.2.01-hello-world.sub": "3.2.01,hello-world,sub\n",
		"0.0.01-lorem-ipsum.add": "0.0.01,lorem-ipsum,add\n",
		"0.0.01-lorem-ipsum.sub": "0.0.01,lorem-ipsum,sub\n",
		"001-not-semantic.add":   "ignored",
		"001-not-semantic.sub":   "ignored",
	})

	motions, err := catalog.Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"0.0.01-lorem-ipsum", "3.2.01-hello-world"}, names(motions))
	assert.Equal(t, []int{3, 2, 1}, motions[1].Version)
	assert.Equal(t, "3.2.1", motions[1].VersionString())
}

func TestDiscover_Separator(t *testing.T) {
	dir := writeDir(t, map[string]string{
		"xxx_template.add":    "",
		"xxx_template.sub":    "",
		"001_lorem-ipsum.add": "001,lorem-ipsum,add\n",
		"001_lorem-ipsum.sub": "001,lorem-ipsum,sub\n",
		"002-wrong-sep.add":   "ignored",
		"002-wrong-sep.sub":   "ignored",
	})

	motions, err := catalog.Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_lorem-ipsum"}, names(motions))
}

func TestDiscover_Extension(t *testing.T) {
	dir := writeDir(t, map[string]string{
		"xxx-template.add.csv": "",
		"xxx-template.sub.csv": "",
		"010-foo.add.csv":      "010,foo,add\n",
		"010-foo.sub.csv":      "010,foo,sub\n",
		"011-bar.add.txt":      "ignored",
		"011-bar.sub.txt":      "ignored",
	})

	motions, err := catalog.Discover(dir)
	require.NoError(t, err)
	require.Len(t, motions, 1)
	assert.Equal(t, "010-foo.csv", motions[0].Name)
	assert.Equal(t, "010,foo,add\n", motions[0].Add)
}

func TestDiscover_EmptyCatalog(t *testing.T) {
	dir := writeDir(t, map[string]string{
		"xxx-template.add.sql": "-- add",
		"xxx-template.sub.sql": "-- sub",
	})

	motions, err := catalog.Discover(dir)
	require.NoError(t, err)
	assert.Empty(t, motions)
}

func TestDiscover_Errors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
	}{
		{
			name:  "No Template",
			files: map[string]string{"001-a.add": "", "001-a.sub": ""},
		},
		{
			name:  "Missing Sub Template",
			files: map[string]string{"xxx-template.add": ""},
		},
		{
			name:  "Mismatched Template",
			files: map[string]string{"xxx-template.add": "", "xx-template.sub": ""},
		},
		{
			name:  "Mismatched Template Extension",
			files: map[string]string{"xxx-template.add.sql": "", "xxx-template.sub.txt": ""},
		},
		{
			name: "Two Templates",
			files: map[string]string{
				"xxx-template.add": "", "xxx-template.sub": "",
				"xx-template.add": "", "xx-template.sub": "",
			},
		},
		{
			name:  "Malformed Version Pattern",
			files: map[string]string{"x..x-template.add": "", "x..x-template.sub": ""},
		},
		{
			name: "Add Without Sub",
			files: map[string]string{
				"xxx-template.add": "", "xxx-template.sub": "",
				"001-a.add": "", "001-a.sub": "", "002-b.add": "",
			},
		},
		{
			name: "Sub Without Add",
			files: map[string]string{
				"xxx-template.add": "", "xxx-template.sub": "",
				"001-a.sub":        "",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := catalog.Discover(writeDir(t, tt.files))
			assert.ErrorIs(t, err, domain.ErrInvalidCatalog)
		})
	}
}

func TestDiscover_MissingDirectory(t *testing.T) {
	_, err := catalog.Discover(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, domain.ErrInvalidCatalog)
}
