package catalog

import (
	"testing"

	"github.com/aretw0/accelerate/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionWidths(t *testing.T) {
	widths, err := versionWidths("x.x.xx")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 2}, widths)

	_, err = versionWidths(".xx")
	assert.Error(t, err)
}

func TestTemplate_FormatVersion(t *testing.T) {
	tmpl := &template{widths: []int{1, 3}, separator: "~", extension: ".lua"}

	v, err := tmpl.formatVersion([]int{2, 7})
	require.NoError(t, err)
	assert.Equal(t, "2.007", v)
	assert.Equal(t, "2.007~seed.sub.lua", tmpl.fileName(v, "seed", domain.Backward))

	_, err = tmpl.formatVersion([]int{10, 7})
	assert.ErrorIs(t, err, domain.ErrInvalidCatalog)
}

func TestTemplate_MotionPattern(t *testing.T) {
	tmpl := &template{widths: []int{1, 3}, separator: "~", extension: ".lua"}
	p := tmpl.motionPattern()

	m := p.FindStringSubmatch("2.007~seed.data.ADD.lua")
	require.NotNil(t, m)
	assert.Equal(t, "2.007", m[1])
	assert.Equal(t, "seed.data", m[2])
	assert.Equal(t, "ADD", m[3])

	assert.Nil(t, p.FindStringSubmatch("2.07~seed.add.lua"))
	assert.Nil(t, p.FindStringSubmatch("2.007-seed.add.lua"))
	assert.Nil(t, p.FindStringSubmatch("2.007~seed.add.sql"))
}
