package blockchain

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var backupsBucket = []byte("backups")

// BackupInfo describes one backup file. Blocks and TipSignature are zero for
// files the catalog never saw.
type BackupInfo struct {
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	Blocks       int       `json:"blocks"`
	TipSignature string    `json:"tip_signature"`
	Size         int64     `json:"size"`
}

// Catalog indexes backups in a BoltDB file, keyed by backup name. Names embed
// a sortable timestamp, so key order is creation order.
type Catalog struct {
	db *bolt.DB
}

// OpenCatalog opens (or creates) the catalog at path. BoltDB holds an
// exclusive file lock, so a second opener gives up after one second.
func OpenCatalog(path string) (*Catalog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create catalog directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("error opening backup catalog: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(backupsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating backups bucket: %w", err)
	}

	return &Catalog{db: db}, nil
}

func (c *Catalog) Put(info BackupInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return err
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(backupsBucket)
		if bucket == nil {
			return errors.New("backups bucket not found")
		}
		return bucket.Put([]byte(info.Name), data)
	})
}

func (c *Catalog) Delete(name string) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(backupsBucket)
		if bucket == nil {
			return errors.New("backups bucket not found")
		}
		return bucket.Delete([]byte(name))
	})
}

// List returns every catalogued backup, newest first.
func (c *Catalog) List() ([]BackupInfo, error) {
	var infos []BackupInfo

	err := c.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(backupsBucket)
		if bucket == nil {
			return errors.New("backups bucket not found")
		}

		cur := bucket.Cursor()
		for k, v := cur.Last(); k != nil; k, v = cur.Prev() {
			var info BackupInfo
			if err := json.Unmarshal(v, &info); err != nil {
				return fmt.Errorf("bad catalog entry %q: %w", k, err)
			}
			infos = append(infos, info)
		}
		return nil
	})

	return infos, err
}

func (c *Catalog) Close() error {
	if err := c.db.Close(); err != nil {
		return err
	}
	return nil
}
