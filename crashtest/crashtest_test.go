package crashtest

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureExit(t *testing.T) *[]int {
	codes := &[]int{}
	exit = func(code int) { *codes = append(*codes, code) }
	t.Cleanup(func() {
		exit = os.Exit
		mu.Lock()
		crashAt = map[string]CrashPoint{}
		mu.Unlock()
	})
	return codes
}

func TestHitOnlyAtScheduledPoint(t *testing.T) {
	codes := captureExit(t)

	require.NoError(t, Set("t1", CrashPoint_TRICK_DONE))
	Hit("t1", CrashPoint_DEAL)
	Hit("t2", CrashPoint_TRICK_DONE)
	assert.Empty(t, *codes)

	Hit("t1", CrashPoint_TRICK_DONE)
	assert.Equal(t, []int{1}, *codes)
}

func TestNoCrashClears(t *testing.T) {
	codes := captureExit(t)

	require.NoError(t, Set("t1", CrashPoint_DEAL))
	require.NoError(t, Set("t1", CrashPoint_NO_CRASH))
	Hit("t1", CrashPoint_DEAL)
	assert.Empty(t, *codes)
}

func TestNowExitsImmediately(t *testing.T) {
	codes := captureExit(t)

	require.NoError(t, Set("t1", CrashPoint_NOW))
	assert.Equal(t, []int{1}, *codes)
}

func TestInvalidPoint(t *testing.T) {
	captureExit(t)
	assert.Error(t, Set("t1", CrashPoint("SOMEWHERE")))
}
