package game

import (
	"context"

	"github.com/go-redis/redis/v8"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"skat.com/server/encryption"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type RedisGameStateTracker struct {
	rdclient *redis.Client
	prefix   string
	sealer   *encryption.Sealer
}

func NewRedisGameStateTracker(redisURL string, redisPW string, redisDB int) *RedisGameStateTracker {
	rdclient := redis.NewClient(&redis.Options{
		Addr:     redisURL,
		Password: redisPW,
		DB:       redisDB,
	})
	return &RedisGameStateTracker{
		rdclient: rdclient,
		prefix:   "skat:table:",
	}
}

// SealWith encrypts checkpoints before they reach redis.
func (r *RedisGameStateTracker) SealWith(sealer *encryption.Sealer) {
	r.sealer = sealer
}

func (r *RedisGameStateTracker) key(table string) string {
	return r.prefix + table
}

func (r *RedisGameStateTracker) Load(table string) (*SavedState, error) {
	data, err := r.rdclient.Get(context.Background(), r.key(table)).Bytes()
	if err == redis.Nil {
		return nil, errors.Wrapf(ErrStateNotFound, "table %s", table)
	} else if err != nil {
		return nil, errors.Wrapf(err, "loading state of table %s", table)
	}
	state, err := decodeState(data, r.sealer)
	return state, errors.Wrapf(err, "decoding state of table %s", table)
}

func (r *RedisGameStateTracker) Save(table string, state *SavedState) error {
	data, err := encodeState(state, r.sealer)
	if err != nil {
		return errors.Wrapf(err, "encoding state of table %s", table)
	}
	err = r.rdclient.Set(context.Background(), r.key(table), data, 0).Err()
	return errors.Wrapf(err, "saving state of table %s", table)
}

func (r *RedisGameStateTracker) Remove(table string) error {
	err := r.rdclient.Del(context.Background(), r.key(table)).Err()
	return errors.Wrapf(err, "removing state of table %s", table)
}

func (r *RedisGameStateTracker) Close() error {
	return r.rdclient.Close()
}

func encodeState(state *SavedState, sealer *encryption.Sealer) ([]byte, error) {
	data, err := json.Marshal(state)
	if err != nil || sealer == nil {
		return data, err
	}
	return sealer.Seal(data)
}

func decodeState(data []byte, sealer *encryption.Sealer) (*SavedState, error) {
	if sealer != nil {
		var err error
		if data, err = sealer.Open(data); err != nil {
			return nil, err
		}
	}
	state := &SavedState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, err
	}
	return state, nil
}
