package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/ayoisaiah/worklog/internal/osutil"
	"github.com/ayoisaiah/worklog/tracker"
)

const (
	stateBucket = "state"
	snapshotKey = "snapshot"
)

var errWorklogRunning = errors.New(
	"is worklog already running? Only one instance can use the database at a time",
)

// Bolt keeps the encoded snapshot in a BoltDB file. The database is locked
// for as long as it is open.
type Bolt struct {
	db *bolt.DB
}

// open creates or opens a database and locks it.
func openDB(pathToDB string) (*bolt.DB, error) {
	err := os.MkdirAll(filepath.Dir(pathToDB), osutil.DirPermission)
	if err != nil {
		return nil, err
	}

	db, err := bolt.Open(
		pathToDB,
		osutil.FilePermission,
		&bolt.Options{Timeout: 1 * time.Second},
	)
	if err != nil {
		if errors.Is(err, bolt.ErrDatabaseOpen) ||
			errors.Is(err, bolt.ErrTimeout) {
			return nil, errWorklogRunning
		}

		return nil, err
	}

	return db, nil
}

// OpenBolt opens the database at path, creating it if needed.
func OpenBolt(path string) (*Bolt, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err = tx.CreateBucketIfNotExists([]byte(stateBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Bolt{db}, nil
}

// Load returns the stored snapshot. An empty database yields an error
// wrapping fs.ErrNotExist.
func (b *Bolt) Load() (*tracker.Snapshot, error) {
	var data []byte

	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(stateBucket)).Get([]byte(snapshotKey))
		if v == nil {
			return fmt.Errorf("no snapshot stored: %w", fs.ErrNotExist)
		}

		// v is only valid for the life of the transaction
		data = append([]byte(nil), v...)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return Decode(data)
}

// Save replaces the stored snapshot.
func (b *Bolt) Save(snap *tracker.Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(stateBucket)).Put([]byte(snapshotKey), data)
	})
}

// Close releases the database lock.
func (b *Bolt) Close() error {
	return b.db.Close()
}
