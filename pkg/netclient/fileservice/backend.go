package fileservice

import (
	"crypto/md5"
	"encoding/hex"
	"io/fs"
	"os"
	"path/filepath"
)

// Backend is the file-system seam the service works through: hash, read,
// write, and enumerate primitives, nothing more. Keeping the service
// behind it makes the batch logic testable without touching disk.
type Backend interface {
	// ReadFile returns the full content of the file at path.
	ReadFile(path string) ([]byte, error)
	// WriteFile writes data to path, creating parent directories.
	WriteFile(path string, data []byte) error
	// Exists reports whether path names an existing regular file.
	Exists(path string) bool
	// MD5Sum returns the lowercase-hex MD5 digest of the file at path.
	MD5Sum(path string) (string, error)
	// Enumerate resolves path to absolute form and lists the files it
	// names: itself for a regular file, every regular file under it
	// (recursively) for a directory.
	Enumerate(path string) ([]string, error)
}

// LocalBackend implements Backend on the local file system.
type LocalBackend struct{}

func (LocalBackend) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (LocalBackend) WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (LocalBackend) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (LocalBackend) MD5Sum(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return MD5Hex(data), nil
}

func (LocalBackend) Enumerate(path string) ([]string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{abs}, nil
	}

	var files []string
	err = filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// MD5Hex returns the lowercase-hex MD5 digest of data, the identity the
// file service keys its cache on.
func MD5Hex(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}
