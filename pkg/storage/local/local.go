// Package local implements storage.Bucket on a local directory tree.
//
// Each bucket is one root directory; object keys are slash-separated
// paths relative to that root. This is the driver used for on-prem
// deployments and tests; cloud buckets plug in behind the same interface.
package local

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/soufianesys/mlsys/pkg/storage"
)

type bucket struct {
	name string
	root string
}

var _ storage.Bucket = &bucket{}

// New opens the directory root as a bucket named name.
func New(name string, root string) (storage.Bucket, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("bucket %s: %w", name, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("bucket %s: %s is not a directory", name, root)
	}
	return &bucket{name: name, root: root}, nil
}

func (b *bucket) Name() string {
	return b.name
}

func (b *bucket) List(ctx context.Context) ([]storage.ObjectInfo, error) {
	found := []storage.ObjectInfo{}
	err := filepath.WalkDir(b.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(b.root, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		found = append(found, storage.ObjectInfo{
			Key:        filepath.ToSlash(rel),
			Size:       info.Size(),
			ModifiedAt: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (b *bucket) Stat(ctx context.Context, key string) (storage.ObjectInfo, error) {
	path, err := b.resolve(key)
	if err != nil {
		return storage.ObjectInfo{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return storage.ObjectInfo{}, fmt.Errorf("%w: %s", storage.ErrNotFound, key)
		}
		return storage.ObjectInfo{}, err
	}
	if info.IsDir() {
		return storage.ObjectInfo{}, fmt.Errorf("%w: %s", storage.ErrNotFound, key)
	}
	return storage.ObjectInfo{
		Key:        key,
		Size:       info.Size(),
		ModifiedAt: info.ModTime(),
	}, nil
}

func (b *bucket) Get(ctx context.Context, key string) ([]byte, error) {
	path, err := b.resolve(key)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, key)
		}
		return nil, err
	}
	return content, nil
}

// resolve maps a key to a filesystem path, refusing keys that would
// escape the bucket root.
func (b *bucket) resolve(key string) (string, error) {
	path := filepath.Join(b.root, filepath.FromSlash(key))
	rel, err := filepath.Rel(b.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s (escapes bucket root)", storage.ErrNotFound, key)
	}
	return path, nil
}
