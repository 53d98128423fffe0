package results

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteValuesCreates(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out3.eval")

	require.NoError(t, WriteValues([]float64{0.5, 1}, dest, "\n", true))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, "0.50000\n1.00000\n", string(data))
}

func TestWriteValuesAppend(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.eval")

	require.NoError(t, WriteValues([]float64{0.25}, dest, "\n", true))
	require.NoError(t, WriteValues([]float64{0.75}, dest, "\n", true))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, "0.25000\n0.75000\n", string(data))
}

func TestWriteValuesTruncate(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.eval")

	require.NoError(t, WriteValues([]float64{0.25, 0.5}, dest, "\n", true))
	require.NoError(t, WriteValues([]float64{0.75}, dest, "\n", false))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, "0.75000\n", string(data))
}

func TestGroupFileName(t *testing.T) {
	require.Equal(t, "out3.eval", GroupFileName("out.eval", 3))
	require.Equal(t, "/tmp/results5.eval", GroupFileName("/tmp/results.dat", 5))
	require.Equal(t, "results7.eval", GroupFileName("results", 7))
}

func TestProfileResampling(t *testing.T) {
	scores := []float64{0, 0.5, 1}

	p := Profile(scores, 5)
	require.Len(t, p, 5)
	require.InDelta(t, 0, p[0], 1e-6)
	require.InDelta(t, 0.5, p[2], 1e-6)
	require.InDelta(t, 1, p[4], 1e-6)
}

func TestProfileEdgeCases(t *testing.T) {
	require.Equal(t, make([]float32, 8), Profile(nil, 8))

	p := Profile([]float64{0.4}, 4)
	for _, v := range p {
		require.InDelta(t, 0.4, v, 1e-6)
	}

	long := make([]float64, 500)
	for i := range long {
		long[i] = float64(i) / 499
	}
	p = Profile(long, 64)
	require.Len(t, p, 64)
	require.InDelta(t, 0, p[0], 1e-6)
	require.InDelta(t, 1, p[63], 1e-6)
}
