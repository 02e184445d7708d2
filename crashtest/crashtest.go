package crashtest

import (
	"fmt"
	"os"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// CrashPoint names a place in the table's life where the process can be
// made to exit, to test recovery from a checkpoint.
type CrashPoint string

const (
	CrashPoint_NO_CRASH         CrashPoint = "NO_CRASH"
	CrashPoint_NOW              CrashPoint = "NOW"
	CrashPoint_DEAL             CrashPoint = "DEAL"
	CrashPoint_TRICK_DONE       CrashPoint = "TRICK_DONE"
	CrashPoint_ROUND_DONE       CrashPoint = "ROUND_DONE"
	CrashPoint_CHECKPOINT_SAVED CrashPoint = "CHECKPOINT_SAVED"
)

// IsValid checks if cp is a valid enum value for CrashPoint.
func (cp CrashPoint) IsValid() error {
	switch cp {
	case CrashPoint_NO_CRASH, CrashPoint_NOW, CrashPoint_DEAL, CrashPoint_TRICK_DONE,
		CrashPoint_ROUND_DONE, CrashPoint_CHECKPOINT_SAVED:
		return nil
	}
	return errors.Errorf("Invalid crash point [%s]", cp)
}

var crashTestLogger = log.With().Str("logger_name", "crashtest::controller").Logger()

var (
	mu      sync.Mutex
	crashAt = map[string]CrashPoint{}
	exit    = os.Exit
)

// Set schedules table to crash at the specified point.
// If cp == CrashPoint_NOW, the function crashes immediately without returning.
func Set(table string, cp CrashPoint) error {
	if err := cp.IsValid(); err != nil {
		return err
	}
	mu.Lock()
	if cp == CrashPoint_NO_CRASH {
		delete(crashAt, table)
	} else {
		crashAt[table] = cp
	}
	mu.Unlock()
	crashTestLogger.Info().Str("table", table).Msgf("Crash point set to %s", cp)
	if cp == CrashPoint_NOW {
		Hit(table, CrashPoint_NOW)
	}
	return nil
}

// Hit exits the process if cp matches the crash point scheduled for table.
func Hit(table string, cp CrashPoint) {
	mu.Lock()
	scheduled, ok := crashAt[table]
	mu.Unlock()
	if ok && scheduled == cp {
		fmt.Printf("CRASHTEST: %s %s\n", table, cp)
		exit(1)
	}
}
