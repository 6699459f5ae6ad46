// Package media hands out pre-signed object storage URLs for product
// images. Uploads go straight from the browser to the bucket.
package media

import (
	"context"
	"net/url"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/Purav2003/epimech-admin/internal/apperr"
	"github.com/Purav2003/epimech-admin/internal/catalog"
	"github.com/Purav2003/epimech-admin/internal/store"
)

const (
	UploadURLExpiry   = 60 * time.Second
	DownloadURLExpiry = 5 * time.Minute
)

// ObjectStore defines the interface for the image bucket.
type ObjectStore interface {
	PresignPut(ctx context.Context, key string, expiry time.Duration) (string, error)
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
	List(ctx context.Context, prefix string) ([]store.ObjectInfo, error)
	Remove(ctx context.Context, key string) error
}

// Upload is a pre-signed PUT target.
type Upload struct {
	URL       string `json:"url"`
	Key       string `json:"key"`
	PublicURL string `json:"public_url,omitempty"`
}

// Image is a stored object with a temporary download URL.
type Image struct {
	Key          string    `json:"key"`
	URL          string    `json:"url"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

type Service struct {
	objects    ObjectStore
	publicBase string
}

// NewService builds the media service. publicBase, when set, is the
// public origin objects are served from and is used to build the
// permanent image URL stored on products.
func NewService(objects ObjectStore, publicBase string) *Service {
	return &Service{objects: objects, publicBase: strings.TrimRight(publicBase, "/")}
}

// UploadURL signs a PUT for filename under the category's prefix.
func (s *Service) UploadURL(ctx context.Context, cat catalog.Category, filename, filetype string) (*Upload, error) {
	if filename == "" || filetype == "" {
		return nil, apperr.Validation("filename and filetype are required")
	}
	if !strings.HasPrefix(filetype, "image/") {
		return nil, apperr.Validation("only image uploads are allowed")
	}
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" || base == ".." {
		return nil, apperr.Validation("invalid filename")
	}

	key := cat.Info().ImagePrefix + base
	signed, err := s.objects.PresignPut(ctx, key, UploadURLExpiry)
	if err != nil {
		return nil, apperr.Upstream("failed to create upload url", err)
	}
	return &Upload{URL: signed, Key: key, PublicURL: s.publicURL(key)}, nil
}

// ListImages returns the category's objects with 5-minute download URLs.
// The root category does not list objects that belong to a prefixed one.
func (s *Service) ListImages(ctx context.Context, cat catalog.Category) ([]Image, error) {
	prefix := cat.Info().ImagePrefix
	objs, err := s.objects.List(ctx, prefix)
	if err != nil {
		return nil, apperr.Upstream("failed to list images", err)
	}

	images := []Image{}
	for _, o := range objs {
		if prefix == "" && ownedByOther(o.Key, cat) {
			continue
		}
		signed, err := s.objects.PresignGet(ctx, o.Key, DownloadURLExpiry)
		if err != nil {
			return nil, apperr.Upstream("failed to sign image url", err)
		}
		images = append(images, Image{Key: o.Key, URL: signed, Size: o.Size, LastModified: o.LastModified})
	}
	sort.Slice(images, func(i, j int) bool { return images[i].LastModified.After(images[j].LastModified) })
	return images, nil
}

// DeleteImage removes an object by key.
func (s *Service) DeleteImage(ctx context.Context, key string) error {
	key = strings.TrimPrefix(strings.TrimSpace(key), "/")
	if key == "" {
		return apperr.Validation("key is required")
	}
	if err := s.objects.Remove(ctx, key); err != nil {
		return apperr.Upstream("failed to delete image", err)
	}
	return nil
}

func (s *Service) publicURL(key string) string {
	if s.publicBase == "" {
		return ""
	}
	return s.publicBase + "/" + (&url.URL{Path: key}).EscapedPath()
}

func ownedByOther(key string, cat catalog.Category) bool {
	for _, c := range catalog.Categories() {
		p := c.Info().ImagePrefix
		if c != cat && p != "" && strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}
