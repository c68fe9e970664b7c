package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"studiodesk/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[r.URL.Path] = string(body)
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		delete(f.objects, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestStore(t *testing.T) (*S3Store, *fakeS3, string) {
	t.Helper()
	fake := &fakeS3{objects: make(map[string]string)}
	ts := httptest.NewServer(fake)
	t.Cleanup(ts.Close)

	store, err := NewS3Store(config.StorageConfig{
		Endpoint:        ts.URL,
		Region:          "us-east-1",
		Bucket:          "photos",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		UsePathStyle:    true,
	})
	require.NoError(t, err)
	return store, fake, ts.URL
}

func TestS3Store_UploadAndDelete(t *testing.T) {
	store, fake, endpoint := newTestStore(t)
	ctx := context.Background()

	url, err := store.Upload(ctx, "Summer Shoot.JPG", "image/jpeg", strings.NewReader("jpegdata"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, endpoint+"/photos/gallery/"))
	assert.True(t, strings.HasSuffix(url, "-summer-shoot.jpg"))

	objectPath := strings.TrimPrefix(url, endpoint)
	fake.mu.Lock()
	assert.Equal(t, "jpegdata", fake.objects[objectPath])
	fake.mu.Unlock()

	require.NoError(t, store.Delete(ctx, url))
	fake.mu.Lock()
	assert.NotContains(t, fake.objects, objectPath)
	fake.mu.Unlock()
}

func TestS3Store_DeleteForeignURL(t *testing.T) {
	store, _, _ := newTestStore(t)
	assert.NoError(t, store.Delete(context.Background(), "https://cdn.example.com/a.jpg"))
}

func TestNewS3Store_NotConfigured(t *testing.T) {
	_, err := NewS3Store(config.StorageConfig{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestPublicBaseURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com", publicBaseURL(config.StorageConfig{PublicBaseURL: "https://cdn.example.com/"}))
	assert.Equal(t, "https://photos.s3.us-east-1.amazonaws.com", publicBaseURL(config.StorageConfig{Bucket: "photos", Region: "us-east-1"}))
}

func TestObjectKey(t *testing.T) {
	key := objectKey("../Évènement Photo.PNG")
	assert.True(t, strings.HasPrefix(key, keyPrefix))
	assert.True(t, strings.HasSuffix(key, "-evenement-photo.png"))
	assert.NotContains(t, key, "..")
}
