// Package dirblob implements blob.Store on a local directory.
package dirblob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"rightfit/pkg/blob"
	"strings"
)

// Dir stores blobs as files under a root directory.
type Dir struct {
	root string
}

var _ blob.Store = (*Dir)(nil)

// New creates the root directory if needed.
func New(root string) (*Dir, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("could not create blob dir: %w", err)
	}

	return &Dir{root: root}, nil
}

func (d *Dir) path(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if clean == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid blob key %q", key)
	}

	return filepath.Join(d.root, filepath.FromSlash(clean)), nil
}

func (d *Dir) Put(_ context.Context, key string, r io.Reader, size int64, _ string) error {
	p, err := d.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return fmt.Errorf("could not create blob parent dir: %w", err)
	}

	f, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return fmt.Errorf("could not create blob file: %w", err)
	}
	n, err := io.Copy(f, io.LimitReader(r, size))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil && n != size {
		err = fmt.Errorf("short write: %d of %d bytes", n, size)
	}
	if err != nil {
		_ = os.Remove(f.Name())

		return fmt.Errorf("could not write blob: %w", err)
	}

	if err := os.Rename(f.Name(), p); err != nil {
		return fmt.Errorf("could not move blob into place: %w", err)
	}

	return nil
}

func (d *Dir) Open(_ context.Context, key string) (*blob.Object, error) {
	p, err := d.path(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, blob.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("could not open blob: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()

		return nil, fmt.Errorf("could not stat blob: %w", err)
	}

	ct := mime.TypeByExtension(filepath.Ext(p))
	if ct == "" {
		ct = "application/octet-stream"
	}

	return &blob.Object{ReadCloser: f, ContentType: ct, Size: info.Size()}, nil
}

func (d *Dir) Delete(_ context.Context, key string) error {
	p, err := d.path(key)
	if err != nil {
		return err
	}

	err = os.Remove(p)
	if errors.Is(err, fs.ErrNotExist) {
		return blob.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("could not delete blob: %w", err)
	}

	return nil
}
