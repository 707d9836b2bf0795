//go:generate go run go.uber.org/mock/mockgen -source=file_service.go -destination=../mocks/mock_file_service.go -package=mocks
package services

import (
	"fileserver-lab/auth"
	"fileserver-lab/errors"
	"fileserver-lab/repositories"
	"fileserver-lab/storage"
	"fmt"
	"log/slog"
)

// IFileService answers decoded requests. Failures are returned as wrapped sentinel errors
// and turned into a wire status by the caller.
type IFileService interface {
	Register(username string, signature []byte) ([]byte, error)
	Fetch(username string, signature []byte, path string) ([]byte, error)
}

type FileService struct {
	userRepository repositories.IUserRepository
	fileSource     storage.IFileSource
	log            *slog.Logger
}

func NewFileService(repo repositories.IUserRepository, source storage.IFileSource, log *slog.Logger) IFileService {
	return &FileService{userRepository: repo, fileSource: source, log: log}
}

func (s *FileService) Register(username string, signature []byte) ([]byte, error) {
	// 1. Reject empty or unprintable names before touching the store
	if err := auth.ValidateRegister(auth.RegisterRequest{
		Username:  username,
		Signature: signature,
	}); err != nil {
		return nil, err
	}

	// 2. The salt is per user and never leaves the server
	salt, err := auth.NewSalt()
	if err != nil {
		return nil, fmt.Errorf("salt generation failed: %w", err)
	}

	// 3. Will propagate ErrUserAlreadyExists if the name is taken
	if err := s.userRepository.Register(username, auth.HashSignature(signature, salt), salt); err != nil {
		return nil, err
	}

	s.log.Info("Registered new user", "username", username)
	return []byte(fmt.Sprintf("New user %s registered.", username)), nil
}

func (s *FileService) Fetch(username string, signature []byte, path string) ([]byte, error) {
	// 1. Retrieve the credential
	user, err := s.userRepository.Lookup(username)
	if err != nil {
		return nil, err
	}

	// 2. Compare in constant time against the stored hash
	if !auth.CompareSignature(signature, user.Salt, user.Hash) {
		return nil, fmt.Errorf("%w: signature hashes do not match for %s", errors.ErrInvalidCredentials, username)
	}

	// 3. Resolve below the serving root and read the whole file
	file, err := s.fileSource.ReadFile(path)
	if err != nil {
		return nil, err
	}

	s.log.Debug("Serving file", "username", username, "path", file.Path, "size", len(file.Data), "mime", file.MimeType)
	return file.Data, nil
}
