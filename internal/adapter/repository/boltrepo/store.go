// Package boltrepo keeps users and bookings in a single embedded BoltDB file.
//
// Records are JSON values keyed by id. Two index buckets back the lookups the
// services need: email -> user id, and (user id, created_at, booking id) ->
// booking id for per-user listing.
package boltrepo

import (
	"time"

	bolt "github.com/boltdb/bolt"
)

var (
	usersBucket          = []byte("users")
	usersByEmailBucket   = []byte("users_by_email")
	bookingsBucket       = []byte("bookings")
	bookingsByUserBucket = []byte("bookings_by_user")
)

type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the database file and ensures every bucket exists.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{usersBucket, usersByEmailBucket, bookingsBucket, bookingsByUserBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close releases the database file lock.
func (s *Store) Close() error {
	return s.db.Close()
}
