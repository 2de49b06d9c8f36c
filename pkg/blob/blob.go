// Package blob stores uploaded and delivered CV files.
//
//go:generate mockgen -package mockblob -source=blob.go -destination=mock/mockblob.go Store
package blob

import (
	"context"
	"errors"
	"io"
	"path"
	"regexp"
	"rightfit/pkg/domain"
	"rightfit/pkg/serrors"
	"strings"
)

// ErrNotFound is returned by Open and Delete when the key does not exist.
var ErrNotFound = errors.New("blob not found")

// DefaultMaxSize is the upload cap used when none is configured.
const DefaultMaxSize int64 = 10 << 20

// Key prefixes.
const (
	PrefixCV        = "cv"
	PrefixDelivered = "delivered"
)

// Object is an opened blob. Callers must close it.
type Object struct {
	io.ReadCloser

	ContentType string
	Size        int64
}

// Store is a flat key/value blob store.
type Store interface {
	// Put writes size bytes read from r under key, replacing any existing blob.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Open returns the blob stored under key.
	Open(ctx context.Context, key string) (*Object, error)
	// Delete removes the blob stored under key.
	Delete(ctx context.Context, key string) error
}

// allowedTypes maps accepted file extensions to their canonical content type.
var allowedTypes = map[string]string{ //nolint: gochecknoglobals
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain",
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// SanitizeName reduces a client supplied file name to a safe base name.
func SanitizeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "file"
	}
	if len(name) > 120 {
		ext := path.Ext(name)
		name = name[:120-len(ext)] + ext
	}

	return name
}

// Key builds the storage key for a submission file.
func Key(prefix string, id domain.SubmissionID, name string) string {
	return prefix + "/" + id.String() + "/" + SanitizeName(name)
}

// ValidateUpload checks the extension and size of an upload and returns the
// content type to store it with.
func ValidateUpload(name string, size, maxSize int64) (string, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if size <= 0 {
		return "", serrors.With(serrors.ErrBadRequest, "uploaded file is empty")
	}
	if size > maxSize {
		return "", serrors.With(serrors.ErrTooLarge, "file exceeds the %d MB limit", maxSize>>20)
	}

	ct, ok := allowedTypes[strings.ToLower(path.Ext(name))]
	if !ok {
		return "", serrors.With(serrors.ErrBadRequest, "only PDF, DOC, DOCX and TXT files are accepted")
	}

	return ct, nil
}
