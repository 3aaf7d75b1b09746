package mock

import (
	"context"

	"github.com/soufianesys/mlsys/pkg/storage"
)

// Bucket is a hand-written mock of storage.Bucket.
//
// Set behaviour via Impl; inspect invocations via Calls.
type Bucket struct {
	Impl struct {
		Name func() string
		List func(context.Context) ([]storage.ObjectInfo, error)
		Stat func(context.Context, string) (storage.ObjectInfo, error)
		Get  func(context.Context, string) ([]byte, error)
	}
	Calls struct {
		List int
		Stat []string
		Get  []string
	}
}

func New() *Bucket {
	return &Bucket{}
}

var _ storage.Bucket = &Bucket{}

func (b *Bucket) Name() string {
	if b.Impl.Name != nil {
		return b.Impl.Name()
	}
	return "mock-bucket"
}

func (b *Bucket) List(ctx context.Context) ([]storage.ObjectInfo, error) {
	b.Calls.List += 1
	if b.Impl.List != nil {
		return b.Impl.List(ctx)
	}
	panic("storage mock: List is not set")
}

func (b *Bucket) Stat(ctx context.Context, key string) (storage.ObjectInfo, error) {
	b.Calls.Stat = append(b.Calls.Stat, key)
	if b.Impl.Stat != nil {
		return b.Impl.Stat(ctx, key)
	}
	panic("storage mock: Stat is not set")
}

func (b *Bucket) Get(ctx context.Context, key string) ([]byte, error) {
	b.Calls.Get = append(b.Calls.Get, key)
	if b.Impl.Get != nil {
		return b.Impl.Get(ctx, key)
	}
	panic("storage mock: Get is not set")
}
