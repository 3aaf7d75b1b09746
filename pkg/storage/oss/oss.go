// Package oss implements storage.Bucket on Alibaba Cloud OSS.
package oss

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	aliyun "github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/soufianesys/mlsys/pkg/storage"
)

// API is the subset of *aliyun.Bucket this driver consumes.
type API interface {
	ListObjects(options ...aliyun.Option) (aliyun.ListObjectsResult, error)
	GetObjectMeta(key string, options ...aliyun.Option) (http.Header, error)
	GetObject(key string, options ...aliyun.Option) (io.ReadCloser, error)
}

// Config locates one OSS bucket and the credentials to reach it.
type Config struct {
	Endpoint        string
	AccessKeyId     string
	AccessKeySecret string

	// SecurityToken is set when the credentials come from STS.
	SecurityToken string
}

type bucket struct {
	name string
	api  API
}

var _ storage.Bucket = &bucket{}

// New opens the OSS bucket named name at conf.Endpoint.
func New(name string, conf Config) (storage.Bucket, error) {
	options := []aliyun.ClientOption{}
	if conf.SecurityToken != "" {
		options = append(options, aliyun.SecurityToken(conf.SecurityToken))
	}
	client, err := aliyun.New(
		conf.Endpoint, conf.AccessKeyId, conf.AccessKeySecret, options...,
	)
	if err != nil {
		return nil, fmt.Errorf("bucket %s: %w", name, err)
	}
	b, err := client.Bucket(name)
	if err != nil {
		return nil, fmt.Errorf("bucket %s: %w", name, err)
	}
	return Wrap(name, b), nil
}

// Wrap adapts an already-opened OSS bucket.
func Wrap(name string, api API) storage.Bucket {
	return &bucket{name: name, api: api}
}

func (b *bucket) Name() string {
	return b.name
}

func (b *bucket) List(ctx context.Context) ([]storage.ObjectInfo, error) {
	found := []storage.ObjectInfo{}
	marker := ""
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := b.api.ListObjects(aliyun.Marker(marker))
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Objects {
			found = append(found, asObjectInfo(obj))
		}
		if !page.IsTruncated {
			return found, nil
		}
		marker = page.NextMarker
	}
}

func (b *bucket) Stat(ctx context.Context, key string) (storage.ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return storage.ObjectInfo{}, err
	}
	header, err := b.api.GetObjectMeta(key)
	if err != nil {
		return storage.ObjectInfo{}, wrapNotFound(key, err)
	}
	return fromObjectMeta(key, header)
}

func (b *bucket) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, err := b.api.GetObject(key)
	if err != nil {
		return nil, wrapNotFound(key, err)
	}
	defer body.Close()
	return io.ReadAll(body)
}

func asObjectInfo(obj aliyun.ObjectProperties) storage.ObjectInfo {
	return storage.ObjectInfo{
		Key:        obj.Key,
		Size:       obj.Size,
		ModifiedAt: obj.LastModified,
		Owner:      obj.Owner.DisplayName,
	}
}

// fromObjectMeta builds object metadata from a GetObjectMeta response.
// OSS reports HEAD metadata as HTTP headers, not XML.
func fromObjectMeta(key string, header http.Header) (storage.ObjectInfo, error) {
	size, err := strconv.ParseInt(header.Get("Content-Length"), 10, 64)
	if err != nil {
		return storage.ObjectInfo{}, fmt.Errorf("stat %s: %w", key, err)
	}
	info := storage.ObjectInfo{Key: key, Size: size}
	if t, err := http.ParseTime(header.Get("Last-Modified")); err == nil {
		info.ModifiedAt = t
	}
	return info, nil
}

func wrapNotFound(key string, err error) error {
	var serr aliyun.ServiceError
	if errors.As(err, &serr) && serr.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", key, storage.ErrNotFound)
	}
	return err
}
