package docgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	data, err := NewRenderer().Render("Video Summary", "First paragraph.\nSecond paragraph.")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
	assert.Greater(t, len(data), 500)
}

func TestRender_NoTitle(t *testing.T) {
	data, err := NewRenderer().Render("", "Body only.")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}

func TestRender_LongTextPaginates(t *testing.T) {
	long := strings.Repeat("A fairly long line of transcript text for the document.\n", 200)
	data, err := NewRenderer().Render("Transcript", long)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))

	short, err := NewRenderer().Render("Transcript", "one line")
	require.NoError(t, err)
	assert.Greater(t, len(data), len(short))
}
