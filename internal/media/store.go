// Package media stores uploaded images and hands back the public URL the
// catalog rows reference. Two logical buckets exist: product-images and
// establishment-logos.
package media

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	BucketProducts       = "product-images"
	BucketEstablishments = "establishment-logos"
)

// Store is the object-storage seam. The disk implementation below serves
// local deployments; a hosted bucket service plugs in behind the same
// interface.
type Store interface {
	// Save writes the file under the bucket and returns its public URL.
	Save(bucket, origName string, r io.Reader) (string, error)
}

// DiskStore keeps uploads under Root/<bucket>/ and serves them from
// BaseURL (the /media/* route).
type DiskStore struct {
	Root    string
	BaseURL string
}

func NewDiskStore(root string) *DiskStore {
	return &DiskStore{Root: root, BaseURL: "/media"}
}

// Save generates a random filename keeping the original extension, so
// uploads never collide and never carry user-controlled path segments.
func (s *DiskStore) Save(bucket, origName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(origName))
	name := uuid.NewString() + ext

	dir := filepath.Join(s.Root, bucket)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return s.BaseURL + "/" + bucket + "/" + name, nil
}
