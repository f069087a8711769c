package patch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DavidVonDerau/merged-lands/internal/domain/landscape"
)

const validHeader = "version = \"0\"\nmeta_type = \"Patch\"\n"

func TestParse_FullDescriptor(t *testing.T) {
	t.Parallel()

	d, err := Parse("mod_a", []byte(validHeader+`
[height_map]
conflict_strategy = "Overwrite"

[texture_indices]
included = false
`))
	require.NoError(t, err)

	r := NewResolver()
	r.Register("mod_a", d)

	p := r.Policy("mod_a", LayerHeightMap)
	assert.True(t, p.Included)
	assert.Equal(t, StrategyOverwrite, p.Strategy)

	p = r.Policy("mod_a", LayerTextureIndices)
	assert.False(t, p.Included)
	assert.Equal(t, StrategyAuto, p.Strategy)

	// Layers the descriptor never mentions fall back to defaults.
	p = r.Policy("mod_a", LayerVertexColors)
	assert.Equal(t, DefaultPolicy, p)
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	t.Parallel()

	_, err := Parse("mod_a", []byte(validHeader+"[vertex_normals]\nincluded = false\n"))
	require.Error(t, err)

	var ue *landscape.UserError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, landscape.ErrCodePatchInvalid, ue.Code)
}

func TestParse_RejectsWrongVersionAndMetaType(t *testing.T) {
	t.Parallel()

	t.Run("version", func(t *testing.T) {
		t.Parallel()
		_, err := Parse("p", []byte("version = \"1\"\nmeta_type = \"Patch\"\n"))
		assert.Error(t, err)
	})

	t.Run("meta_type", func(t *testing.T) {
		t.Parallel()
		_, err := Parse("p", []byte("version = \"0\"\nmeta_type = \"Plugin\"\n"))
		assert.Error(t, err)
	})
}

func TestParse_RejectsUnknownStrategy(t *testing.T) {
	t.Parallel()

	_, err := Parse("p", []byte(validHeader+"[height_map]\nconflict_strategy = \"merge\"\n"))
	assert.Error(t, err)
}

func TestParseStrategy_CaseInsensitive(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		in   string
		want Strategy
	}{
		{"Auto", StrategyAuto},
		{"OVERWRITE", StrategyOverwrite},
		{"ignore", StrategyIgnore},
		{"Keep", StrategyKeep},
	} {
		got, err := ParseStrategy(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}
}

func TestResolver_MissingDescriptorMeansDefaults(t *testing.T) {
	t.Parallel()

	r := NewResolver()
	assert.Equal(t, DefaultPolicy, r.Policy("nobody", LayerHeightMap))
}
