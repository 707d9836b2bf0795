package repositories

import (
	"fileserver-lab/errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// repositoryFactories runs every test against both store implementations.
func repositoryFactories(t *testing.T) map[string]func() IUserRepository {
	return map[string]func() IUserRepository{
		"memory": func() IUserRepository {
			return NewMemoryUserRepository()
		},
		"badger": func() IUserRepository {
			db, err := OpenInMemoryBadger()
			require.NoError(t, err)
			t.Cleanup(func() { _ = db.Close() })
			return NewBadgerUserRepository(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
		},
	}
}

func TestUserRepository_RegisterAndLookup(t *testing.T) {
	for name, newRepository := range repositoryFactories(t) {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			repository := newRepository()
			hash := []byte("0123456789abcdef0123456789abcdef")
			salt := []byte("saltsaltsaltsalt")

			// Given alice is registered
			req.NoError(repository.Register("alice", hash, salt))

			// Then the record can be looked up
			user, err := repository.Lookup("alice")
			req.NoError(err)
			req.Equal("alice", user.Username)
			req.Equal(hash, user.Hash)
			req.Equal(salt, user.Salt)
			req.False(user.CreatedAt.IsZero())
		})
	}
}

func TestUserRepository_RegisterTwice(t *testing.T) {
	for name, newRepository := range repositoryFactories(t) {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			repository := newRepository()

			req.NoError(repository.Register("alice", []byte("first"), []byte("salt-1")))
			err := repository.Register("alice", []byte("second"), []byte("salt-2"))
			req.ErrorIs(err, errors.ErrUserAlreadyExists)

			// Records are never updated
			user, err := repository.Lookup("alice")
			req.NoError(err)
			req.Equal([]byte("first"), user.Hash)
			req.Equal([]byte("salt-1"), user.Salt)
		})
	}
}

func TestUserRepository_LookupUnknown(t *testing.T) {
	for name, newRepository := range repositoryFactories(t) {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)

			_, err := newRepository().Lookup("bob")
			req.ErrorIs(err, errors.ErrUserNotFound)
		})
	}
}

func TestUserRepository_ConcurrentRegistration(t *testing.T) {
	for name, newRepository := range repositoryFactories(t) {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			repository := newRepository()
			const attempts = 16

			var wg sync.WaitGroup
			results := make(chan error, attempts)
			start := make(chan struct{})
			for i := 0; i < attempts; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					<-start
					results <- repository.Register("alice", []byte(fmt.Sprintf("hash-%d", i)), []byte("salt"))
				}(i)
			}
			close(start)
			wg.Wait()
			close(results)

			// Then exactly one registration wins
			successes, conflicts := 0, 0
			for err := range results {
				switch {
				case err == nil:
					successes++
				case errors.Is(err, errors.ErrUserAlreadyExists):
					conflicts++
				default:
					req.Failf("unexpected error", "%v", err)
				}
			}
			req.Equal(1, successes)
			req.Equal(attempts-1, conflicts)
		})
	}
}

func TestUserRepository_ConcurrentDistinctUsers(t *testing.T) {
	for name, newRepository := range repositoryFactories(t) {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			repository := newRepository()
			const users = 32

			var wg sync.WaitGroup
			for i := 0; i < users; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_ = repository.Register(fmt.Sprintf("user-%d", i), []byte("hash"), []byte("salt"))
				}(i)
			}
			wg.Wait()

			for i := 0; i < users; i++ {
				_, err := repository.Lookup(fmt.Sprintf("user-%d", i))
				req.NoError(err)
			}
		})
	}
}

func TestMemoryUserRepository_LookupReturnsCopies(t *testing.T) {
	req := require.New(t)
	repository := NewMemoryUserRepository()
	req.NoError(repository.Register("alice", []byte("hash"), []byte("salt")))

	user, err := repository.Lookup("alice")
	req.NoError(err)
	user.Hash[0] = 'X'

	again, err := repository.Lookup("alice")
	req.NoError(err)
	req.Equal([]byte("hash"), again.Hash)
	req.Equal(1, repository.Len())
}
