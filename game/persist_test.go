package game

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"skat.com/server/encryption"
	"skat.com/server/protocol"
)

func TestMemoryGameStateTracker(t *testing.T) {
	tracker := NewMemoryGameStateTracker()
	_, err := tracker.Load("t1")
	require.Error(t, err)
	assert.Equal(t, ErrStateNotFound, errors.Cause(err))

	st := &SavedState{
		Table:       "t1",
		Game:        protocol.NewGameState(),
		Hands:       [protocol.MaxSeats]protocol.CardCollection{protocol.CollectionOf(1, 2)},
		Skat:        [2]protocol.Card{3, 4},
		GameStarted: true,
		SavedAt:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	st.Players[2] = &protocol.Player{ID: "c", Name: "carol", Seat: 2}
	require.NoError(t, tracker.Save("t1", st))

	loaded, err := tracker.Load("t1")
	require.NoError(t, err)
	assert.Equal(t, st, loaded)

	require.NoError(t, tracker.Remove("t1"))
	_, err = tracker.Load("t1")
	assert.Error(t, err)
}

func TestMemoryResultRecorderRecent(t *testing.T) {
	rec := NewMemoryResultRecorder()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= 3; i++ {
		require.NoError(t, rec.Record(ctx, RoundResult{Table: "a", RoundNum: i, FinishedAt: base.Add(time.Duration(i) * time.Minute)}))
	}
	require.NoError(t, rec.Record(ctx, RoundResult{Table: "b", RoundNum: 1, FinishedAt: base}))

	recent, err := rec.Recent(ctx, "a", 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, 3, recent[0].RoundNum)
	assert.Equal(t, 2, recent[1].RoundNum)
}

func TestSealedCheckpointEncoding(t *testing.T) {
	sealer, err := encryption.NewSealerFromString("7faadaf6-ed32-47a9-a09a-01fd0daf9c3f")
	require.NoError(t, err)
	st := &SavedState{
		Table: "t1",
		Game:  protocol.NewGameState(),
		Hands: [protocol.MaxSeats]protocol.CardCollection{protocol.CollectionOf(1, 2)},
		Skat:  [2]protocol.Card{3, 4},
	}

	plain, err := encodeState(st, nil)
	require.NoError(t, err)
	sealed, err := encodeState(st, sealer)
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), `"table":"t1"`)
	assert.Contains(t, string(plain), `"table":"t1"`)

	decoded, err := decodeState(sealed, sealer)
	require.NoError(t, err)
	assert.Equal(t, st, decoded)

	_, err = decodeState(plain, sealer)
	assert.Error(t, err, "a plain checkpoint does not open")
}
