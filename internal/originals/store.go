// Package originals keeps uploaded images under content-addressed names in
// the data directory. Sessions with identical uploads share one file.
package originals

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/blake2b"
)

const dirName = "originals"

// Store serializes the two operations that race on a shared file: a new
// session claiming it and the cleaner deleting its last user.
type Store struct {
	dataDir string
	mu      sync.Mutex
}

func New(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

// Path resolves a data-dir relative path returned by Put.
func (s *Store) Path(rel string) string {
	return filepath.Join(s.dataDir, rel)
}

// Put copies r to originals/<blake2b-256 hex><ext>. claim is called with the
// relative path and hash once the content is hashed; the file is moved into
// place only if claim succeeds, replacing any copy already there.
func (s *Store) Put(r io.Reader, ext string, claim func(rel, hash string) error) (string, string, error) {
	dir := filepath.Join(s.dataDir, dirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", fmt.Errorf("create originals dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "upload-*")
	if err != nil {
		return "", "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	hasher, err := blake2b.New256(nil)
	if err != nil {
		tmp.Close()
		return "", "", err
	}
	_, err = io.Copy(tmp, io.TeeReader(r, hasher))
	tmp.Close()
	if err != nil {
		return "", "", fmt.Errorf("write upload: %w", err)
	}

	hash := hex.EncodeToString(hasher.Sum(nil))
	rel := filepath.Join(dirName, hash+ext)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := claim(rel, hash); err != nil {
		return "", "", err
	}
	if err := os.Rename(tmp.Name(), s.Path(rel)); err != nil {
		return "", "", fmt.Errorf("store original: %w", err)
	}
	return rel, hash, nil
}

// Release deletes rel unless inUse reports it still has users. It returns
// whether the file is gone.
func (s *Store) Release(rel string, inUse func() (bool, error)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	used, err := inUse()
	if err != nil || used {
		return false, err
	}
	if err := os.Remove(s.Path(rel)); err != nil && !os.IsNotExist(err) {
		return false, err
	}
	return true, nil
}
