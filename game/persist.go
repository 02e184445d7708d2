package game

import (
	"github.com/pkg/errors"
)

var ErrStateNotFound = errors.New("table state not found")

type PersistGameState interface {
	Load(table string) (*SavedState, error)
	Save(table string, state *SavedState) error
	Remove(table string) error
}
