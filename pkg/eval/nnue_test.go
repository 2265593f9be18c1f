package eval_test

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/corvidchess/corvid/pkg/eval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempWeights(t *testing.T, magic uint32) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "weights.nn")

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, binary.Write(f, binary.LittleEndian, magic))
	return path
}

func TestLoadNNUEWeightsRejectsBadMagic(t *testing.T) {
	path := writeTempWeights(t, 0xDEADBEEF)

	_, err := eval.LoadNNUEWeights(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad magic")
}

func TestLoadNNUEWeightsRejectsTruncatedFile(t *testing.T) {
	// Correct magic but nothing after it: the first section marker read
	// must fail rather than return a half-initialized network.
	path := writeTempWeights(t, 0x4E4E5545)

	_, err := eval.LoadNNUEWeights(path)
	require.Error(t, err)
}

func TestLoadNNUEWeightsMissingFile(t *testing.T) {
	_, err := eval.LoadNNUEWeights(filepath.Join(t.TempDir(), "absent.nn"))
	require.Error(t, err)
}
