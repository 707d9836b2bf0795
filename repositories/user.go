//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"bytes"
	"fileserver-lab/errors"
	"fmt"
	"sync"
	"time"
)

// IUserRepository is the credential store shared by every connection.
// Register must be atomic with respect to concurrent Lookup and Register calls on the same username.
type IUserRepository interface {
	Register(username string, hash, salt []byte) error
	Lookup(username string) (User, error)
}

// User is a registered credential: SHA256(signature || salt) and the salt itself.
// Records are created once and never updated.
type User struct {
	Username  string
	Hash      []byte
	Salt      []byte
	CreatedAt time.Time
}

// MemoryUserRepository keeps users in a map guarded by a single lock.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]User)}
}

// Register stores a new user, or fails with ErrUserAlreadyExists.
// The existence check and the insert happen under the same write lock.
func (r *MemoryUserRepository) Register(username string, hash, salt []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[username]; ok {
		return fmt.Errorf("%w: cannot register user under name '%s', already exists", errors.ErrUserAlreadyExists, username)
	}
	r.users[username] = User{
		Username:  username,
		Hash:      bytes.Clone(hash),
		Salt:      bytes.Clone(salt),
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

// Lookup returns a copy of the stored user, or ErrUserNotFound.
func (r *MemoryUserRepository) Lookup(username string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[username]
	if !ok {
		return User{}, fmt.Errorf("%w: cannot serve non-registered user '%s'", errors.ErrUserNotFound, username)
	}
	user.Hash = bytes.Clone(user.Hash)
	user.Salt = bytes.Clone(user.Salt)
	return user, nil
}

// Len returns the number of registered users.
func (r *MemoryUserRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}
