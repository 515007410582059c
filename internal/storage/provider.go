// Package storage defines the vault file-system abstraction.
package storage

import "io/fs"

// Provider is the interface for vault file operations. Every path is
// relative to the vault root and uses forward slashes.
type Provider interface {
	// ReadDir lists the immediate entries of dir, sorted by name.
	ReadDir(dir string) ([]fs.DirEntry, error)
	// Stat returns file info for path.
	Stat(path string) (fs.FileInfo, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent folders.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// MkdirAll creates dir and any missing parents.
	MkdirAll(dir string) error
}

// Exists reports whether path exists in the vault.
func Exists(p Provider, path string) bool {
	_, err := p.Stat(path)
	return err == nil
}

// IsDir reports whether path exists and is a directory.
func IsDir(p Provider, path string) bool {
	info, err := p.Stat(path)
	return err == nil && info.IsDir()
}
