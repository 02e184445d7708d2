package game

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Timing holds the time-based phase transitions, in milliseconds.
type Timing struct {
	BetweenRounds  uint32 `yaml:"betweenRounds"`
	DeclareTimeout uint32 `yaml:"declareTimeout"`
}

func DefaultTiming() Timing {
	return Timing{
		BetweenRounds:  5000,
		DeclareTimeout: 30000,
	}
}

// ParseTiming reads a timing YAML file. Keys missing from the file keep
// their default values.
func ParseTiming(timingFile string) (Timing, error) {
	bytes, err := os.ReadFile(timingFile)
	if err != nil {
		return Timing{}, errors.Wrap(err, fmt.Sprintf("Error reading timing config file [%s]", timingFile))
	}

	data := DefaultTiming()
	err = yaml.Unmarshal(bytes, &data)
	if err != nil {
		return Timing{}, errors.Wrap(err, fmt.Sprintf("Error parsing timing YAML file [%s]", timingFile))
	}

	return data, nil
}

func (t Timing) BetweenRoundsDuration() time.Duration {
	return time.Duration(t.BetweenRounds) * time.Millisecond
}

func (t Timing) DeclareTimeoutDuration() time.Duration {
	return time.Duration(t.DeclareTimeout) * time.Millisecond
}
