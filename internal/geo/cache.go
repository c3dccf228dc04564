package geo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/iliyamo/bola-na-rede/internal/logger"
	"github.com/iliyamo/bola-na-rede/internal/model"
)

// CoordinatesBucket holds geocoded addresses.
const CoordinatesBucket = "coordinates"

// Cache persists geocoding results in a bbolt file so restarts do not spend
// OpenCage quota on addresses already seen.
type Cache struct {
	db *bbolt.DB
}

// OpenCache opens (or creates) the cache file at dbPath.
func OpenCache(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}
	db, err := bbolt.Open(dbPath, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open geocode cache at %s: %w", dbPath, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(CoordinatesBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}
	c := &Cache{db: db}
	n, err := c.Len()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to read cache stats: %w", err)
	}
	logger.Info("geocode cache initialized at: %s (%d entries)", dbPath, n)
	return c, nil
}

func (c *Cache) Get(key string) (model.Coordinates, bool, error) {
	var (
		coords model.Coordinates
		found  bool
	)
	err := c.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(CoordinatesBucket)).Get([]byte(key))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &coords)
	})
	if err != nil {
		return model.Coordinates{}, false, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return coords, found, nil
}

func (c *Cache) Set(key string, coords model.Coordinates) error {
	data, err := json.Marshal(coords)
	if err != nil {
		return fmt.Errorf("failed to marshal coordinates: %w", err)
	}
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(CoordinatesBucket)).Put([]byte(key), data)
	})
}

// Delete drops one entry.  Deleting a missing key is not an error.
func (c *Cache) Delete(key string) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(CoordinatesBucket)).Delete([]byte(key))
	})
}

// Len counts cached entries.
func (c *Cache) Len() (int, error) {
	n := 0
	err := c.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket([]byte(CoordinatesBucket)).Stats().KeyN
		return nil
	})
	return n, err
}

func (c *Cache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
