package game

import (
	"context"
	"sort"
	"sync"
	"time"
)

// RoundResult is the outcome of one finished round.
type RoundResult struct {
	Table       string    `db:"table_name" json:"table"`
	RoundNum    int       `db:"round_num" json:"roundNum"`
	AloneSeat   int       `db:"alone_seat" json:"aloneSeat"`
	AlonePlayer string    `db:"alone_player" json:"alonePlayer"`
	AloneName   string    `db:"alone_name" json:"aloneName"`
	GameType    string    `db:"game_type" json:"gameType"`
	AlonePoints int       `db:"alone_points" json:"alonePoints"`
	Won         bool      `db:"won" json:"won"`
	Score       int       `db:"score" json:"score"`
	FinishedAt  time.Time `db:"finished_at" json:"finishedAt"`
}

type ResultRecorder interface {
	Record(ctx context.Context, r RoundResult) error
	// Recent returns up to limit results of a table, newest first.
	Recent(ctx context.Context, table string, limit int) ([]RoundResult, error)
}

type MemoryResultRecorder struct {
	mu      sync.Mutex
	results []RoundResult
}

func NewMemoryResultRecorder() *MemoryResultRecorder {
	return &MemoryResultRecorder{}
}

func (m *MemoryResultRecorder) Record(_ context.Context, r RoundResult) error {
	m.mu.Lock()
	m.results = append(m.results, r)
	m.mu.Unlock()
	return nil
}

func (m *MemoryResultRecorder) Recent(_ context.Context, table string, limit int) ([]RoundResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []RoundResult
	for _, r := range m.results {
		if r.Table == table {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].FinishedAt.After(out[j].FinishedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
