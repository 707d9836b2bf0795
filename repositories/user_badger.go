package repositories

import (
	"fileserver-lab/errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
)

const maxConflictRetries = 5

// diskUser is the stored form of a User inside Badger.
type diskUser struct {
	Hash      []byte `cbor:"1,keyasint"`
	Salt      []byte `cbor:"2,keyasint"`
	CreatedAt int64  `cbor:"3,keyasint"`
}

// BadgerUserRepository keeps users in an in-memory Badger instance.
// Nothing is written to disk: users live as long as the process.
type BadgerUserRepository struct {
	db  *badger.DB
	log *slog.Logger
}

// OpenInMemoryBadger opens a Badger instance that never touches the filesystem.
func OpenInMemoryBadger() (*badger.DB, error) {
	return badger.Open(badger.DefaultOptions("").
		WithInMemory(true).
		WithLogger(nil))
}

func NewBadgerUserRepository(db *badger.DB, log *slog.Logger) *BadgerUserRepository {
	return &BadgerUserRepository{db: db, log: log}
}

func userKey(username string) []byte {
	return []byte("user:" + username)
}

// Register stores a new user, or fails with ErrUserAlreadyExists.
// The read and the write share one transaction. When two registrations of the same name race,
// Badger rejects the second commit with ErrConflict; the retry then observes the first user.
func (u BadgerUserRepository) Register(username string, hash, salt []byte) error {
	data, err := cbor.Marshal(diskUser{
		Hash:      hash,
		Salt:      salt,
		CreatedAt: time.Now().UTC().UnixNano(),
	})
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}

	for attempt := 0; ; attempt++ {
		err = u.db.Update(func(txn *badger.Txn) error {
			key := userKey(username)
			if _, err := txn.Get(key); err == nil {
				return fmt.Errorf("%w: cannot register user under name '%s', already exists", errors.ErrUserAlreadyExists, username)
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			return txn.Set(key, data)
		})
		if !errors.Is(err, badger.ErrConflict) || attempt >= maxConflictRetries {
			return err
		}
		u.log.Debug("Registration conflict, retrying", "username", username, "attempt", attempt+1)
	}
}

// Lookup returns the stored user, or ErrUserNotFound.
func (u BadgerUserRepository) Lookup(username string) (User, error) {
	var stored diskUser

	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(username))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return cbor.Unmarshal(val, &stored)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return User{}, fmt.Errorf("%w: cannot serve non-registered user '%s'", errors.ErrUserNotFound, username)
	}
	if err != nil {
		return User{}, err
	}

	return User{
		Username:  username,
		Hash:      stored.Hash,
		Salt:      stored.Salt,
		CreatedAt: time.Unix(0, stored.CreatedAt).UTC(),
	}, nil
}
