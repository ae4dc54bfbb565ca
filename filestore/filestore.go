// Package filestore stores evidence uploads on disk under a fixed root.
// Stored names are opaque; the original filename only survives in the
// returned metadata. Relative paths handed back to callers use the
// /uploads/ prefix the rest of the system serves them under.
package filestore

import (
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const pathPrefix = "/uploads/"

// FileMeta describes a stored upload.
type FileMeta struct {
	Filename string // original client filename
	Path     string // relative path, e.g. /uploads/<opaque-name>
	Mimetype string
	Size     int64
}

type Store interface {
	Save(header *multipart.FileHeader) (*FileMeta, error)
	// Remove deletes a stored file by its relative path. A file that is
	// already gone is not an error.
	Remove(relPath string) error
}

type diskStore struct {
	root string
}

func NewDiskStore(root string) (Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrap(err, "create upload root")
	}
	return &diskStore{root: root}, nil
}

func (s *diskStore) Save(header *multipart.FileHeader) (*FileMeta, error) {
	src, err := header.Open()
	if err != nil {
		return nil, errors.Wrap(err, "open upload")
	}
	defer src.Close()

	stored := uuid.NewString() + filepath.Ext(header.Filename)
	dstPath := filepath.Join(s.root, stored)

	dst, err := os.Create(dstPath)
	if err != nil {
		return nil, errors.Wrap(err, "create stored file")
	}

	size, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dstPath)
		return nil, errors.Wrap(err, "write stored file")
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		if detected, derr := mimetype.DetectFile(dstPath); derr == nil {
			contentType = detected.String()
		} else {
			contentType = "application/octet-stream"
		}
	}

	return &FileMeta{
		Filename: header.Filename,
		Path:     pathPrefix + stored,
		Mimetype: contentType,
		Size:     size,
	}, nil
}

func (s *diskStore) Remove(relPath string) error {
	if relPath == "" {
		return nil
	}
	// Stored names are opaque; only the base name is honored so a stored
	// path can never point outside the root.
	name := path.Base(relPath)
	err := os.Remove(filepath.Join(s.root, name))
	if os.IsNotExist(err) {
		return nil
	}
	return errors.Wrap(err, "remove stored file")
}
