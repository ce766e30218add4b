package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/gofrs/flock"
	"github.com/zalando/go-keyring"
)

const serviceName = "planner"

// ErrNoCredentials is returned when nothing is stored for an origin.
var ErrNoCredentials = errors.New("no stored credentials")

// Credentials is what gets persisted per backend origin.
type Credentials struct {
	Token   string    `json:"token"`
	SavedAt time.Time `json:"saved_at"`
}

// Store persists credentials in the system keyring, falling back to a
// 0600 JSON file when no keyring is available.
type Store struct {
	useKeyring  bool
	fallbackDir string
}

// NewStore probes the keyring once. PLANNER_NO_KEYRING forces the file
// fallback.
func NewStore(fallbackDir string) *Store {
	if os.Getenv("PLANNER_NO_KEYRING") != "" {
		return NewFileStore(fallbackDir)
	}

	probe := serviceName + "::probe"
	if err := keyring.Set(serviceName, probe, "probe"); err == nil {
		_ = keyring.Delete(serviceName, probe)
		return &Store{useKeyring: true, fallbackDir: fallbackDir}
	}
	fmt.Fprintf(os.Stderr, "warning: system keyring unavailable, credentials stored in plaintext at %s\n",
		filepath.Join(fallbackDir, credentialsFile))
	return NewFileStore(fallbackDir)
}

// NewKeyringStore always uses the keyring.
func NewKeyringStore() *Store {
	return &Store{useKeyring: true}
}

// NewFileStore always uses the credentials file in dir.
func NewFileStore(dir string) *Store {
	return &Store{fallbackDir: dir}
}

// Backend names the storage in use: "keyring" or "file".
func (s *Store) Backend() string {
	if s.useKeyring {
		return "keyring"
	}
	return "file"
}

func keyFor(origin string) string {
	return serviceName + "::" + origin
}

// Load returns the credentials stored for origin.
func (s *Store) Load(origin string) (*Credentials, error) {
	if s.useKeyring {
		data, err := keyring.Get(serviceName, keyFor(origin))
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrNoCredentials
		}
		if err != nil {
			return nil, fmt.Errorf("read keyring: %w", err)
		}
		var creds Credentials
		if err := json.Unmarshal([]byte(data), &creds); err != nil {
			return nil, fmt.Errorf("invalid credentials: %w", err)
		}
		return &creds, nil
	}

	var creds *Credentials
	err := s.withFileLock(func() error {
		all, err := s.readAll()
		if err != nil {
			return err
		}
		creds = all[origin]
		return nil
	})
	if err != nil {
		return nil, err
	}
	if creds == nil {
		return nil, ErrNoCredentials
	}
	return creds, nil
}

// Save stores creds for origin, replacing any previous entry.
func (s *Store) Save(origin string, creds *Credentials) error {
	if s.useKeyring {
		data, err := json.Marshal(creds)
		if err != nil {
			return err
		}
		return keyring.Set(serviceName, keyFor(origin), string(data))
	}

	return s.withFileLock(func() error {
		all, err := s.readAll()
		if err != nil {
			return err
		}
		all[origin] = creds
		return s.writeAll(all)
	})
}

// Delete removes the entry for origin. Deleting a missing entry is not an
// error.
func (s *Store) Delete(origin string) error {
	if s.useKeyring {
		err := keyring.Delete(serviceName, keyFor(origin))
		if errors.Is(err, keyring.ErrNotFound) {
			return nil
		}
		return err
	}

	return s.withFileLock(func() error {
		all, err := s.readAll()
		if err != nil {
			return err
		}
		if _, ok := all[origin]; !ok {
			return nil
		}
		delete(all, origin)
		return s.writeAll(all)
	})
}

const (
	credentialsFile = "credentials.json"
	lockFile        = ".credentials.lock"

	// lockTimeout bounds how long a command waits on another planner
	// process holding the credentials file.
	lockTimeout = 2 * time.Second
)

func (s *Store) path() string {
	return filepath.Join(s.fallbackDir, credentialsFile)
}

func (s *Store) withFileLock(fn func() error) error {
	if err := os.MkdirAll(s.fallbackDir, 0o700); err != nil {
		return err
	}

	fl := flock.New(filepath.Join(s.fallbackDir, lockFile))
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	locked, err := fl.TryLockContext(ctx, 10*time.Millisecond)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("credentials file is locked by another process")
		}
		return err
	}
	if !locked {
		return fmt.Errorf("credentials file is locked by another process")
	}
	defer func() { _ = fl.Unlock() }()

	return fn()
}

func (s *Store) readAll() (map[string]*Credentials, error) {
	data, err := os.ReadFile(s.path())
	if os.IsNotExist(err) {
		return make(map[string]*Credentials), nil
	}
	if err != nil {
		return nil, err
	}

	all := make(map[string]*Credentials)
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("invalid credentials file %s: %w", s.path(), err)
	}
	return all, nil
}

func (s *Store) writeAll(all map[string]*Credentials) error {
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.fallbackDir, "credentials-*.json.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	dest := s.path()
	if err := os.Rename(tmpPath, dest); err != nil {
		if runtime.GOOS == "windows" {
			_ = os.Remove(dest)
			return os.Rename(tmpPath, dest)
		}
		os.Remove(tmpPath)
		return err
	}
	return nil
}
