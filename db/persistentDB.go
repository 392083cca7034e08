package db

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"time"

	"github.com/boltdb/bolt"
	"github.com/giwty/title-menu/settings"
	"go.uber.org/zap"
)

const (
	DB_INTERNAL_TABLENAME = "internal-metadata"
)

var (
	ErrNotFound = errors.New("entry not found")
)

type PersistentDB struct {
	db     *bolt.DB
	logger *zap.SugaredLogger
}

func NewPersistentDB(path string, l *zap.SugaredLogger) (*PersistentDB, error) {
	if l == nil {
		l = zap.NewNop().Sugar()
	}

	// It will be created if it doesn't exist.
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open metadata db %v: %w", path, err)
	}

	//set DB version
	err = db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(DB_INTERNAL_TABLENAME))
		if err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		return b.Put([]byte("app_version"), []byte(settings.MEN_VERSION))
	})
	if err != nil {
		l.Warnf("failed to save app_version - %v", err)
	}

	return &PersistentDB{db: db, logger: l}, nil
}

func (pd *PersistentDB) Close() error {
	return pd.db.Close()
}

func (pd *PersistentDB) ClearTable(tableName string) error {
	err := pd.db.Update(func(tx *bolt.Tx) error {
		err := tx.DeleteBucket([]byte(tableName))
		if errors.Is(err, bolt.ErrBucketNotFound) {
			return nil
		}
		return err
	})
	return err
}

func (pd *PersistentDB) AddEntry(tableName string, key string, value interface{}) error {
	var bytesBuff bytes.Buffer
	if err := gob.NewEncoder(&bytesBuff).Encode(value); err != nil {
		return err
	}

	return pd.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(tableName))
		if err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		return b.Put([]byte(key), bytesBuff.Bytes())
	})
}

// Decode the entry stored under key into value, ErrNotFound when the table
// or the key is missing
func (pd *PersistentDB) GetEntry(tableName string, key string, value interface{}) error {
	return pd.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(tableName))
		if b == nil {
			return ErrNotFound
		}
		v := b.Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}

		return gob.NewDecoder(bytes.NewReader(v)).Decode(value)
	})
}

func (pd *PersistentDB) CountEntries(tableName string) int {
	count := 0
	pd.db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket([]byte(tableName)); b != nil {
			count = b.Stats().KeyN
		}
		return nil
	})
	return count
}
