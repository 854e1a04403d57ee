// Package storage archives rendered certificate PDFs in object storage.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/brgy-records/apiserver/config"
	"github.com/brgy-records/apiserver/types"
)

const pdfContentType = "application/pdf"

var (
	// ErrInvalidKey is returned for control numbers that cannot form an object key.
	ErrInvalidKey = errors.New("invalid archive key")
	// ErrNotFound is returned when no certificate is archived under a key.
	ErrNotFound = errors.New("archived certificate not found")
)

var controlNumberPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]{0,63}$`)

// Backend is the subset of object-store operations the archive needs.
type Backend interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Bucket() string
	Close() error
}

// Archive keeps one PDF per issued certificate under
// certificates/<kind>/<control number>.pdf.
type Archive struct {
	backend Backend
}

// NewArchive wraps backend.
func NewArchive(backend Backend) *Archive {
	return &Archive{backend: backend}
}

// Open builds the archive selected by cfg.Backend and makes sure its bucket
// exists. It returns nil for the "none" backend.
func Open(ctx context.Context, cfg config.StorageConfig) (*Archive, error) {
	var (
		backend Backend
		err     error
	)
	switch cfg.Backend {
	case "", "none":
		return nil, nil
	case "minio":
		backend, err = newMinioBackend(cfg.Minio)
	case "gcs":
		backend, err = newGCSBackend(ctx, cfg.GCS)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	if err := backend.EnsureBucket(ctx); err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("ensure bucket %s: %w", backend.Bucket(), err)
	}
	return NewArchive(backend), nil
}

// CertificateKey returns the object key of a certificate.
func CertificateKey(kind types.CertificateType, controlNumber string) (string, error) {
	if !controlNumberPattern.MatchString(controlNumber) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, controlNumber)
	}
	if strings.ContainsAny(string(kind), "/.") || kind == "" {
		return "", fmt.Errorf("%w: kind %q", ErrInvalidKey, kind)
	}
	return path.Join("certificates", string(kind), controlNumber+".pdf"), nil
}

// SaveCertificate uploads pdf and returns its key.
func (a *Archive) SaveCertificate(ctx context.Context, kind types.CertificateType, controlNumber string, pdf []byte) (string, error) {
	key, err := CertificateKey(kind, controlNumber)
	if err != nil {
		return "", err
	}
	if err := a.backend.Put(ctx, key, bytes.NewReader(pdf), int64(len(pdf)), pdfContentType); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return key, nil
}

// OpenCertificate streams a previously archived certificate.
func (a *Archive) OpenCertificate(ctx context.Context, kind types.CertificateType, controlNumber string) (io.ReadCloser, error) {
	key, err := CertificateKey(kind, controlNumber)
	if err != nil {
		return nil, err
	}
	return a.backend.Get(ctx, key)
}

// Close releases the backend client. A nil archive has nothing to close.
func (a *Archive) Close() error {
	if a == nil {
		return nil
	}
	return a.backend.Close()
}

// Bucket returns the bucket backing the archive.
func (a *Archive) Bucket() string {
	return a.backend.Bucket()
}
