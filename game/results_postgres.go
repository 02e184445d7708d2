package game

import (
	"context"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
)

const createResultsTable = `
CREATE TABLE IF NOT EXISTS round_results (
	id           SERIAL PRIMARY KEY,
	table_name   TEXT NOT NULL,
	round_num    INTEGER NOT NULL,
	alone_seat   INTEGER NOT NULL,
	alone_player TEXT NOT NULL,
	alone_name   TEXT NOT NULL,
	game_type    TEXT NOT NULL,
	alone_points INTEGER NOT NULL,
	won          BOOLEAN NOT NULL,
	score        INTEGER NOT NULL,
	finished_at  TIMESTAMPTZ NOT NULL
)`

const insertResult = `
INSERT INTO round_results
	(table_name, round_num, alone_seat, alone_player, alone_name, game_type, alone_points, won, score, finished_at)
VALUES
	(:table_name, :round_num, :alone_seat, :alone_player, :alone_name, :game_type, :alone_points, :won, :score, :finished_at)`

const selectRecentResults = `
SELECT table_name, round_num, alone_seat, alone_player, alone_name, game_type, alone_points, won, score, finished_at
FROM round_results
WHERE table_name = $1
ORDER BY finished_at DESC
LIMIT $2`

type PostgresResultRecorder struct {
	db *sqlx.DB
}

func NewPostgresResultRecorder(connStr string) (*PostgresResultRecorder, error) {
	db, err := sqlx.Connect("postgres", connStr)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to postgres")
	}
	if _, err := db.Exec(createResultsTable); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating round_results table")
	}
	return &PostgresResultRecorder{db: db}, nil
}

func (p *PostgresResultRecorder) Record(ctx context.Context, r RoundResult) error {
	_, err := p.db.NamedExecContext(ctx, insertResult, r)
	return errors.Wrapf(err, "recording round %d of table %s", r.RoundNum, r.Table)
}

func (p *PostgresResultRecorder) Recent(ctx context.Context, table string, limit int) ([]RoundResult, error) {
	var out []RoundResult
	if err := p.db.SelectContext(ctx, &out, selectRecentResults, table, limit); err != nil {
		return nil, errors.Wrapf(err, "loading results of table %s", table)
	}
	return out, nil
}

func (p *PostgresResultRecorder) Close() error {
	return p.db.Close()
}
