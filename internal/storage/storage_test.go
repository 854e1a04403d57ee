package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/brgy-records/apiserver/config"
	"github.com/brgy-records/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryBackend struct {
	objects      map[string][]byte
	contentTypes map[string]string
	failPut      error
	closed       bool
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{objects: map[string][]byte{}, contentTypes: map[string]string{}}
}

func (m *memoryBackend) EnsureBucket(context.Context) error { return nil }

func (m *memoryBackend) Close() error {
	m.closed = true
	return nil
}

func (m *memoryBackend) Put(_ context.Context, key string, r io.Reader, size int64, contentType string) error {
	if m.failPut != nil {
		return m.failPut
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if int64(len(data)) != size {
		return errors.New("size mismatch")
	}
	m.objects[key] = data
	m.contentTypes[key] = contentType
	return nil
}

func (m *memoryBackend) Get(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memoryBackend) Bucket() string { return "certificates" }

func TestCertificateKey(t *testing.T) {
	key, err := CertificateKey(types.CertificateIndigency, "IND-2024-0A1B2C3D")
	require.NoError(t, err)
	assert.Equal(t, "certificates/indigency/IND-2024-0A1B2C3D.pdf", key)

	for _, bad := range []string{"", "../etc/passwd", "a/b", "BP 2024"} {
		_, err := CertificateKey(types.CertificateIndigency, bad)
		assert.ErrorIs(t, err, ErrInvalidKey, bad)
	}
	_, err = CertificateKey("../x", "BP-1")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestArchiveRoundTrip(t *testing.T) {
	backend := newMemoryBackend()
	archive := NewArchive(backend)
	ctx := context.Background()

	key, err := archive.SaveCertificate(ctx, types.CertificateBusinessPermit, "BP-2024-0A1B2C3D", []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "certificates/business-permit/BP-2024-0A1B2C3D.pdf", key)
	assert.Equal(t, pdfContentType, backend.contentTypes[key])

	rc, err := archive.OpenCertificate(ctx, types.CertificateBusinessPermit, "BP-2024-0A1B2C3D")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data))

	_, err = archive.OpenCertificate(ctx, types.CertificateBusinessPermit, "BP-2024-FFFFFFFF")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestArchiveSaveError(t *testing.T) {
	backend := newMemoryBackend()
	backend.failPut = errors.New("bucket offline")

	_, err := NewArchive(backend).SaveCertificate(context.Background(), types.CertificateResidency, "RES-2024-1", []byte("x"))
	assert.ErrorContains(t, err, "bucket offline")
}

func TestOpenNoneBackend(t *testing.T) {
	archive, err := Open(context.Background(), config.StorageConfig{Backend: "none"})
	require.NoError(t, err)
	assert.Nil(t, archive)

	_, err = Open(context.Background(), config.StorageConfig{Backend: "s3"})
	assert.Error(t, err)

	_, err = Open(context.Background(), config.StorageConfig{Backend: "minio"})
	assert.Error(t, err)
}

func TestArchiveClose(t *testing.T) {
	backend := newMemoryBackend()
	require.NoError(t, NewArchive(backend).Close())
	assert.True(t, backend.closed)

	var disabled *Archive
	assert.NoError(t, disabled.Close())
}
