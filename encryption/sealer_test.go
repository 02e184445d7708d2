package encryption

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	key1 = "7faadaf6-ed32-47a9-a09a-01fd0daf9c3f"
	key2 = "b42ac4a3-8789-4f6e-98ca-2e829478e362"
)

func TestSealOpen(t *testing.T) {
	plain := []byte(`{"hands":[["CA","C10"]]}`)
	s, err := NewSealerFromString(key1)
	require.NoError(t, err)

	sealed, err := s.Seal(plain)
	require.NoError(t, err)
	assert.False(t, cmp.Equal(sealed, plain))

	again, err := s.Seal(plain)
	require.NoError(t, err)
	assert.False(t, cmp.Equal(sealed, again), "nonce must differ")

	opened, err := s.Open(sealed)
	require.NoError(t, err)
	if diff := cmp.Diff(plain, opened); diff != "" {
		t.Errorf("opened mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenWithWrongKey(t *testing.T) {
	s1, err := NewSealerFromString(key1)
	require.NoError(t, err)
	s2, err := NewSealerFromString(key2)
	require.NoError(t, err)

	sealed, err := s1.Seal([]byte("secret"))
	require.NoError(t, err)
	_, err = s2.Open(sealed)
	assert.Error(t, err)
}

func TestOpenShortData(t *testing.T) {
	s, err := NewSealerFromString(key1)
	require.NoError(t, err)
	_, err = s.Open([]byte{1, 2})
	assert.ErrorIs(t, err, ErrShortCiphertext)
}

func TestInvalidKey(t *testing.T) {
	_, err := NewSealerFromString("not-a-uuid")
	assert.Error(t, err)
}
