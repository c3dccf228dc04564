package kvstore

import (
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/bola-na-rede/internal/config"
)

// Open returns the Store selected by cfg.Driver together with a function
// that releases it.  The redis driver requires a live client.
func Open(cfg config.StorageConfig, rdb *redis.Client) (Store, func() error, error) {
	switch cfg.Driver {
	case "redis":
		if rdb == nil {
			return nil, nil, errors.New("kvstore: redis driver selected but redis is unreachable")
		}
		return NewRedisStore(rdb), func() error { return nil }, nil
	case "bolt":
		s, err := NewBoltStore(cfg.BoltPath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
}
