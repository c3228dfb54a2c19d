package rom

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// CreateFS is a file system that can create files for writing images.
type CreateFS interface {
	// Create creates or truncates the named file for writing.
	Create(name string) (file io.WriteCloser, err error)
}

type dirFS string

// DirFS returns a CreateFS rooted at the host directory dir.
func DirFS(dir string) CreateFS {
	return dirFS(dir)
}

func (dir dirFS) Create(name string) (file io.WriteCloser, err error) {
	if !fs.ValidPath(name) {
		err = &fs.PathError{Op: "create", Path: name, Err: fs.ErrInvalid}
		return
	}

	return os.Create(filepath.Join(string(dir), filepath.FromSlash(name)))
}

// BinaryName returns the image path for an assembly source: same
// directory, same base name, EXT_BINARY extension.
func BinaryName(source string) string {
	base := filepath.Base(source)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(source), stem+EXT_BINARY)
}

// ReadFile reads an image from a file system. The size is checked before
// any data is read.
func ReadFile(fsys fs.FS, name string) (rc *Rom, err error) {
	info, err := fs.Stat(fsys, name)
	if err != nil {
		return
	}

	err = CheckSize(info.Size())
	if err != nil {
		return
	}

	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return
	}

	rc = &Rom{Data: data}
	return
}

// Open reads an image from a host path.
func Open(path string) (rc *Rom, err error) {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	return ReadFile(os.DirFS(dir), name)
}

// WriteFile writes the image to a file system.
func (rc *Rom) WriteFile(fsys CreateFS, name string) (err error) {
	file, err := fsys.Create(name)
	if err != nil {
		return
	}
	defer func() {
		cerr := file.Close()
		if err == nil {
			err = cerr
		}
	}()

	_, err = file.Write(rc.Data)
	return
}

// Save writes the image to a host path.
func (rc *Rom) Save(path string) error {
	dir, name := filepath.Split(path)
	return rc.WriteFile(DirFS(dir), name)
}
