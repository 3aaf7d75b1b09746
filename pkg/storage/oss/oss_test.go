package oss_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	aliyun "github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/soufianesys/mlsys/pkg/storage"
	"github.com/soufianesys/mlsys/pkg/storage/oss"
	"github.com/soufianesys/mlsys/pkg/utils/try"
)

type fakeAPI struct {
	Impl struct {
		ListObjects   func(options ...aliyun.Option) (aliyun.ListObjectsResult, error)
		GetObjectMeta func(key string, options ...aliyun.Option) (http.Header, error)
		GetObject     func(key string, options ...aliyun.Option) (io.ReadCloser, error)
	}
	Calls struct {
		ListObjects   int
		GetObjectMeta []string
		GetObject     []string
	}
}

var _ oss.API = &fakeAPI{}

func (f *fakeAPI) ListObjects(options ...aliyun.Option) (aliyun.ListObjectsResult, error) {
	f.Calls.ListObjects += 1
	if f.Impl.ListObjects != nil {
		return f.Impl.ListObjects(options...)
	}
	panic("oss fake: ListObjects is not set")
}

func (f *fakeAPI) GetObjectMeta(key string, options ...aliyun.Option) (http.Header, error) {
	f.Calls.GetObjectMeta = append(f.Calls.GetObjectMeta, key)
	if f.Impl.GetObjectMeta != nil {
		return f.Impl.GetObjectMeta(key, options...)
	}
	panic("oss fake: GetObjectMeta is not set")
}

func (f *fakeAPI) GetObject(key string, options ...aliyun.Option) (io.ReadCloser, error) {
	f.Calls.GetObject = append(f.Calls.GetObject, key)
	if f.Impl.GetObject != nil {
		return f.Impl.GetObject(key, options...)
	}
	panic("oss fake: GetObject is not set")
}

func TestBucket_List(t *testing.T) {
	ctx := context.Background()
	modified := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)

	t.Run("it follows truncated listings across pages", func(t *testing.T) {
		api := &fakeAPI{}
		api.Impl.ListObjects = func(options ...aliyun.Option) (aliyun.ListObjectsResult, error) {
			switch api.Calls.ListObjects {
			case 1:
				return aliyun.ListObjectsResult{
					Objects: []aliyun.ObjectProperties{
						{
							Key: "churn/v1/model.json", Size: 100,
							LastModified: modified,
							Owner:        aliyun.Owner{DisplayName: "alice"},
						},
					},
					IsTruncated: true,
					NextMarker:  "churn/v1/model.json",
				}, nil
			default:
				return aliyun.ListObjectsResult{
					Objects: []aliyun.ObjectProperties{
						{Key: "fraud/v1/model.json", Size: 200, LastModified: modified},
					},
				}, nil
			}
		}

		found := try.To(oss.Wrap("models-dev", api).List(ctx)).OrFatal(t)

		expected := []storage.ObjectInfo{
			{Key: "churn/v1/model.json", Size: 100, ModifiedAt: modified, Owner: "alice"},
			{Key: "fraud/v1/model.json", Size: 200, ModifiedAt: modified},
		}
		if len(found) != len(expected) {
			t.Fatalf("expected %d objects, got %d", len(expected), len(found))
		}
		for i := range expected {
			if found[i] != expected[i] {
				t.Errorf("object %d: unmatch: actual = %+v, expected = %+v", i, found[i], expected[i])
			}
		}
		if api.Calls.ListObjects != 2 {
			t.Errorf("expected 2 listing calls, got %d", api.Calls.ListObjects)
		}
	})

	t.Run("a listing failure is passed through", func(t *testing.T) {
		expected := errors.New("fake error")
		api := &fakeAPI{}
		api.Impl.ListObjects = func(options ...aliyun.Option) (aliyun.ListObjectsResult, error) {
			return aliyun.ListObjectsResult{}, expected
		}

		if _, err := oss.Wrap("models-dev", api).List(ctx); !errors.Is(err, expected) {
			t.Errorf("expected %v, got %v", expected, err)
		}
	})
}

func TestBucket_Stat(t *testing.T) {
	ctx := context.Background()

	t.Run("it reads metadata from the HEAD headers", func(t *testing.T) {
		api := &fakeAPI{}
		api.Impl.GetObjectMeta = func(key string, options ...aliyun.Option) (http.Header, error) {
			return http.Header{
				"Content-Length": []string{"512"},
				"Last-Modified":  []string{"Mon, 01 Apr 2024 12:00:00 GMT"},
			}, nil
		}

		info := try.To(oss.Wrap("models-dev", api).Stat(ctx, "churn/v1/model.json")).OrFatal(t)

		expected := storage.ObjectInfo{
			Key:        "churn/v1/model.json",
			Size:       512,
			ModifiedAt: time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC),
		}
		if info != expected {
			t.Errorf("unmatch: actual = %+v, expected = %+v", info, expected)
		}
	})

	t.Run("a missing key is ErrNotFound", func(t *testing.T) {
		api := &fakeAPI{}
		api.Impl.GetObjectMeta = func(key string, options ...aliyun.Option) (http.Header, error) {
			return nil, aliyun.ServiceError{StatusCode: http.StatusNotFound, Code: "NoSuchKey"}
		}

		if _, err := oss.Wrap("models-dev", api).Stat(ctx, "no/v1/model.json"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("other service errors are passed through", func(t *testing.T) {
		api := &fakeAPI{}
		api.Impl.GetObjectMeta = func(key string, options ...aliyun.Option) (http.Header, error) {
			return nil, aliyun.ServiceError{StatusCode: http.StatusForbidden, Code: "AccessDenied"}
		}

		if _, got := oss.Wrap("models-dev", api).Stat(ctx, "churn/v1/model.json"); errors.Is(got, storage.ErrNotFound) {
			t.Errorf("expected a non-ErrNotFound error, got %v", got)
		} else if got == nil {
			t.Errorf("expected error, got nil")
		}
	})
}

func TestBucket_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("it reads and closes the object body", func(t *testing.T) {
		body := &closeTrackingReader{Reader: bytes.NewReader([]byte(`{"kind":"majority_class"}`))}
		api := &fakeAPI{}
		api.Impl.GetObject = func(key string, options ...aliyun.Option) (io.ReadCloser, error) {
			return body, nil
		}

		raw := try.To(oss.Wrap("models-dev", api).Get(ctx, "churn/v1/model.json")).OrFatal(t)

		if string(raw) != `{"kind":"majority_class"}` {
			t.Errorf("unmatch content: %s", string(raw))
		}
		if !body.closed {
			t.Errorf("body was not closed")
		}
	})

	t.Run("a missing key is ErrNotFound", func(t *testing.T) {
		api := &fakeAPI{}
		api.Impl.GetObject = func(key string, options ...aliyun.Option) (io.ReadCloser, error) {
			return nil, aliyun.ServiceError{StatusCode: http.StatusNotFound, Code: "NoSuchKey"}
		}

		if _, err := oss.Wrap("models-dev", api).Get(ctx, "no/v1/model.json"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

type closeTrackingReader struct {
	io.Reader
	closed bool
}

func (r *closeTrackingReader) Close() error {
	r.closed = true
	return nil
}
