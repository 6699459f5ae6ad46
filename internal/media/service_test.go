package media

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Purav2003/epimech-admin/internal/apperr"
	"github.com/Purav2003/epimech-admin/internal/catalog"
	"github.com/Purav2003/epimech-admin/internal/store"
)

type fakeObjects struct {
	mu      sync.Mutex
	objects []store.ObjectInfo
	removed []string
	expiry  map[string]time.Duration
	err     error
}

func (f *fakeObjects) PresignPut(_ context.Context, key string, expiry time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.record("put:"+key, expiry)
	return "https://s3.example.com/bucket/" + key + "?X-Amz-Signature=put", nil
}

func (f *fakeObjects) PresignGet(_ context.Context, key string, expiry time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("get:"+key, expiry)
	return "https://s3.example.com/bucket/" + key + "?X-Amz-Signature=get", nil
}

func (f *fakeObjects) List(_ context.Context, prefix string) ([]store.ObjectInfo, error) {
	var out []store.ObjectInfo
	for _, o := range f.objects {
		if strings.HasPrefix(o.Key, prefix) {
			out = append(out, o)
		}
	}
	return out, f.err
}

func (f *fakeObjects) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, key)
	return f.err
}

func (f *fakeObjects) record(key string, d time.Duration) {
	if f.expiry == nil {
		f.expiry = map[string]time.Duration{}
	}
	f.expiry[key] = d
}

func TestUploadURL_KeysByCategory(t *testing.T) {
	objs := &fakeObjects{}
	svc := NewService(objs, "https://cdn.example.com/")

	up, err := svc.UploadURL(context.Background(), catalog.OtherParts, "seal kit.png", "image/png")
	require.NoError(t, err)
	assert.Equal(t, "otherParts/seal kit.png", up.Key)
	assert.Contains(t, up.URL, "X-Amz-Signature=put")
	assert.Equal(t, "https://cdn.example.com/otherParts/seal%20kit.png", up.PublicURL)
	assert.Equal(t, 60*time.Second, objs.expiry["put:otherParts/seal kit.png"])

	up, err = svc.UploadURL(context.Background(), catalog.Waterpump, "../../etc/pump.jpg", "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "pump.jpg", up.Key)
}

func TestUploadURL_Validation(t *testing.T) {
	svc := NewService(&fakeObjects{}, "")
	ctx := context.Background()

	for _, tc := range []struct{ name, typ string }{
		{"", "image/png"},
		{"a.png", ""},
		{"a.exe", "application/octet-stream"},
		{"..", "image/png"},
	} {
		_, err := svc.UploadURL(ctx, catalog.Waterpump, tc.name, tc.typ)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "%+v", tc)
	}

	up, err := svc.UploadURL(ctx, catalog.Waterpump, "a.png", "image/png")
	require.NoError(t, err)
	assert.Empty(t, up.PublicURL)
}

func TestUploadURL_StorageFailure(t *testing.T) {
	svc := NewService(&fakeObjects{err: errors.New("bucket gone")}, "")
	_, err := svc.UploadURL(context.Background(), catalog.Waterpump, "a.png", "image/png")
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
}

func TestListImages_SignsAndScopes(t *testing.T) {
	now := time.Now()
	objs := &fakeObjects{objects: []store.ObjectInfo{
		{Key: "pump1.jpg", LastModified: now.Add(-time.Hour)},
		{Key: "pump2.jpg", LastModified: now},
		{Key: "otherParts/seal.jpg", LastModified: now},
	}}
	svc := NewService(objs, "")

	pumps, err := svc.ListImages(context.Background(), catalog.Waterpump)
	require.NoError(t, err)
	require.Len(t, pumps, 2)
	assert.Equal(t, "pump2.jpg", pumps[0].Key)
	assert.Contains(t, pumps[0].URL, "X-Amz-Signature=get")
	assert.Equal(t, 5*time.Minute, objs.expiry["get:pump1.jpg"])

	parts, err := svc.ListImages(context.Background(), catalog.OtherParts)
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Equal(t, "otherParts/seal.jpg", parts[0].Key)
}

func TestDeleteImage(t *testing.T) {
	objs := &fakeObjects{}
	svc := NewService(objs, "")

	require.NoError(t, svc.DeleteImage(context.Background(), "/otherParts/seal.jpg"))
	assert.Equal(t, []string{"otherParts/seal.jpg"}, objs.removed)

	err := svc.DeleteImage(context.Background(), "  ")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
