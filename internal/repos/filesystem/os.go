package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// OSFileSystem implements shared.FileSystem using the operating system primitives.
type OSFileSystem struct{}

// Stat retrieves file metadata.
func (OSFileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// Abs resolves an absolute path.
func (OSFileSystem) Abs(path string) (string, error) {
	return filepath.Abs(path)
}

// RootedFileSystemProvider yields a billy filesystem rooted at a project directory.
type RootedFileSystemProvider func(rootPath string) billy.Filesystem

// NewRootedFileSystem returns an operating system backed billy filesystem rooted at rootPath.
func NewRootedFileSystem(rootPath string) billy.Filesystem {
	return osfs.New(rootPath)
}
