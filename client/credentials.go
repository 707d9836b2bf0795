package client

import (
	"encoding/hex"
	"fileserver-lab/auth"
	"fileserver-lab/errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Credentials are kept on the client between runs. The password is never stored:
// the signature is derived again from the password and the salt on each request.
type Credentials struct {
	Username string `yaml:"username"`
	Salt     string `yaml:"salt"`
}

// NewCredentials draws a fresh salt for username.
func NewCredentials(username string) (Credentials, error) {
	salt, err := auth.NewSalt()
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{Username: username, Salt: hex.EncodeToString(salt)}, nil
}

// Signature derives the signature sent to the server.
func (c Credentials) Signature(password string) ([]byte, error) {
	salt, err := hex.DecodeString(c.Salt)
	if err != nil {
		return nil, fmt.Errorf("corrupted salt for %s: %w", c.Username, err)
	}
	return auth.DeriveSignature(password, salt), nil
}

// CredentialsPath is where the credentials of username live inside dir.
// Usernames that would name a file outside dir are rejected.
func CredentialsPath(dir, username string) (string, error) {
	name := username + ".yaml"
	if username == "" || !filepath.IsLocal(name) || filepath.Base(name) != name {
		return "", fmt.Errorf("%w: no credentials file for %q", errors.ErrInvalidUsername, username)
	}
	return filepath.Join(dir, name), nil
}

// LoadCredentials reads credentials written by Save.
func LoadCredentials(path string) (Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Credentials{}, fmt.Errorf("unable to read credentials: %w", err)
	}
	var credentials Credentials
	if err := yaml.Unmarshal(data, &credentials); err != nil {
		return Credentials{}, fmt.Errorf("unable to parse credentials %s: %w", path, err)
	}
	return credentials, nil
}

// Save writes the credentials to path, refusing to replace an existing file.
func (c Credentials) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return writeNew(path, data, 0o600)
}

// writeNew creates path and writes data to it; it fails if path already exists.
func writeNew(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return fmt.Errorf("refusing to write %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// SaveFile stores a fetched payload under dir using the base name of the requested path.
// Existing files are never overwritten.
func SaveFile(dir, requested string, payload []byte) (string, error) {
	name := filepath.Base(filepath.FromSlash(requested))
	if name == "." || name == string(filepath.Separator) || name == ".." {
		return "", fmt.Errorf("cannot derive a local file name from %q", requested)
	}
	path := filepath.Join(dir, name)
	if err := writeNew(path, payload, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
