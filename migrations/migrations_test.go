package migrations

import (
	"io/fs"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedFiles(t *testing.T) {
	entries, err := fs.ReadDir(Files, ".")
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".sql") {
			names = append(names, entry.Name())
		}
	}
	require.NotEmpty(t, names, "no migration files embedded")
	assert.True(t, sort.StringsAreSorted(names))

	for _, name := range names {
		content, err := fs.ReadFile(Files, name)
		require.NoError(t, err)
		assert.NotEmpty(t, content, name)
	}
}
