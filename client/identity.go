package client

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"skat.com/server/protocol"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Identity is what a client presents in its handshake. Keeping the id lets
// a restarted client take back its seat.
type Identity struct {
	ID   protocol.PlayerID `json:"id"`
	Name string            `json:"name"`
}

func NewIdentity(name string) Identity {
	return Identity{ID: protocol.PlayerID(uuid.NewString()), Name: name}
}

func (i Identity) Player() protocol.Player {
	return protocol.Player{ID: i.ID, Name: i.Name, Seat: protocol.NoSeat}
}

func LoadIdentity(path string) (Identity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Identity{}, errors.Wrapf(err, "reading identity file %s", path)
	}
	var id Identity
	if err := json.Unmarshal(data, &id); err != nil {
		return Identity{}, errors.Wrapf(err, "decoding identity file %s", path)
	}
	if id.ID == "" {
		return Identity{}, errors.Errorf("identity file %s has no id", path)
	}
	return id, nil
}

func SaveIdentity(path string, id Identity) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return errors.Wrapf(err, "creating directory for %s", path)
		}
	}
	data, err := json.Marshal(id)
	if err != nil {
		return errors.Wrap(err, "encoding identity")
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Wrapf(err, "writing identity file %s", path)
	}
	return nil
}

// ResolveIdentity loads the stored identity when resuming and creates and
// stores a fresh one otherwise. A non-empty name replaces the stored name.
func ResolveIdentity(path string, name string, resume bool) (Identity, error) {
	if resume {
		id, err := LoadIdentity(path)
		if err != nil {
			return Identity{}, errors.Wrap(err, "cannot resume")
		}
		if name != "" {
			id.Name = name
		}
		return id, nil
	}
	id := NewIdentity(name)
	if err := SaveIdentity(path, id); err != nil {
		return Identity{}, err
	}
	return id, nil
}
