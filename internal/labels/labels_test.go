package labels

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "IMG_5193_pts.dat")
	content := "[211, 88],[257, 76],[279, 60],[421, 66],[4]\n" +
		"[100, 50],[100, 50],[1]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	var out bytes.Buffer
	lines, err := Load(path, &out)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	require.Equal(t, []string{"[211 88]", "[257 76]", "[279 60]", "[421 66]", "[4]"}, lines[0])

	// The duplicated point collapses to one token.
	require.Equal(t, []string{"[100 50]", "[1]"}, lines[1])

	require.Contains(t, out.String(), "[211 88]")
	require.Contains(t, out.String(), "[4]")
}

func TestLoadSkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pts.dat")
	require.NoError(t, os.WriteFile(path, []byte("\n[5, 6],[1]\n\n"), 0o644))

	var out bytes.Buffer
	lines, err := Load(path, &out)
	require.NoError(t, err)
	require.Len(t, lines, 1)
}

func TestLoadMissingFile(t *testing.T) {
	var out bytes.Buffer
	_, err := Load(filepath.Join(t.TempDir(), "nope.dat"), &out)
	require.Error(t, err)
}
