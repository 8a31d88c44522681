// Package bolt is a go.etcd.io/bbolt-backed cache.Cache, structurally
// parallel to sheens' cmd/mservice/storage/bolt/bolt.go: a single
// bucket holding one marshaled Machine per grammar digest.
package bolt

import (
	"encoding/json"
	"log"
	"time"

	"go.etcd.io/bbolt"

	"github.com/loomlang/loom/cache"
	"github.com/loomlang/loom/core"
)

var bucketName = []byte("machines")

// Storage is a bbolt-backed cache.Cache.
type Storage struct {
	Debug    bool
	filename string
	db       *bbolt.DB
}

func NewStorage(filename string) (*Storage, error) {
	return &Storage{filename: filename}, nil
}

func (s *Storage) Open() error {
	opts := &bbolt.Options{Timeout: time.Second}
	db, err := bbolt.Open(s.filename, 0644, opts)
	if err != nil {
		return err
	}
	s.db = db
	return s.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) logf(format string, args ...interface{}) {
	if s.Debug {
		log.Printf("bolt cache."+format, args...)
	}
}

func (s *Storage) Get(key string) (*core.Machine, bool, error) {
	s.logf("Get %s", key)
	var (
		m     *core.Machine
		found bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		bs := b.Get([]byte(key))
		if bs == nil {
			return nil
		}
		found = true
		m = &core.Machine{}
		if err := json.Unmarshal(bs, m); err != nil {
			return &cache.CacheCorrupt{Key: key, Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return m, found, nil
}

func (s *Storage) Put(key string, m *core.Machine) error {
	s.logf("Put %s", key)
	bs, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		return b.Put([]byte(key), bs)
	})
}
