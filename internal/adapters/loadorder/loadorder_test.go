package loadorder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_PartitionsAndOrders(t *testing.T) {
	t.Parallel()

	ini := `
[General]
SCR Width=1920

[Game Files]
GameFile0=Morrowind.esm
GameFile1=Tribunal.esm
GameFile2=Clean Roads.esp
GameFile3=Hills.esp
`
	lo, err := Parse([]byte(ini))
	require.NoError(t, err)

	assert.Equal(t, []string{"Morrowind.esm", "Tribunal.esm"}, lo.Masters)
	assert.Equal(t, []string{"Clean Roads.esp", "Hills.esp"}, lo.Mods)
	assert.Equal(t, []string{"Morrowind.esm", "Tribunal.esm", "Clean Roads.esp", "Hills.esp"}, lo.All())
}

func TestParse_NumericIndexDefinesOrder(t *testing.T) {
	t.Parallel()

	// Indices out of key order, including a double-digit one that a
	// lexicographic sort would misplace.
	ini := `
[Game Files]
GameFile10=Last.esp
GameFile2=Second.esp
GameFile0=First.esp
`
	lo, err := Parse([]byte(ini))
	require.NoError(t, err)

	assert.Equal(t, []string{"First.esp", "Second.esp", "Last.esp"}, lo.Mods)
}

func TestParse_MalformedKeyFails(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("[Game Files]\nGameFileX=Broken.esp\n"))
	assert.Error(t, err)
}

func TestParse_EmptySectionIsEmptyOrder(t *testing.T) {
	t.Parallel()

	lo, err := Parse([]byte("[General]\n"))
	require.NoError(t, err)
	assert.Empty(t, lo.Masters)
	assert.Empty(t, lo.Mods)
}
