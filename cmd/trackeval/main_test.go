package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootCommandWiring(t *testing.T) {
	root := newRootCommand()

	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	require.True(t, names["run"])
	require.True(t, names["labels"])

	flag := root.PersistentFlags().Lookup("config")
	require.NotNil(t, flag)
	require.Equal(t, "trackeval.toml", flag.DefValue)
}

func TestLabelsCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pts.dat")
	require.NoError(t, os.WriteFile(path, []byte("[10, 20],[2]\n"), 0o644))

	root := newRootCommand()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs([]string{"labels", path})

	require.NoError(t, root.Execute())
	require.Contains(t, out.String(), "[10 20]")
}

func TestRunCommandMissingConfig(t *testing.T) {
	root := newRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"run", "--config", filepath.Join(t.TempDir(), "nope.toml")})

	require.Error(t, root.Execute())
}
