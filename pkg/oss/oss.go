// Package oss is the remote media collaborator: it uploads local files to
// object storage and removes or replaces them by public id.
package oss

import (
	"context"
	"fmt"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/errno"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// Asset is an uploaded media object. Duration is set for videos only.
type Asset struct {
	URL      string
	PublicID string
	Duration float64
}

type Media interface {
	Upload(ctx context.Context, localPath, kind string) (*Asset, error)
	Delete(ctx context.Context, publicID, kind string) error
	// Replace overwrites the object behind publicID, keeping the id.
	Replace(ctx context.Context, localPath, publicID, kind string) (*Asset, error)
}

// Prober reads the duration of a local video file.
type Prober func(path string) (float64, error)

type MinioMedia struct {
	client *minio.Client
	cfg    Config
	probe  Prober
}

func NewMinioMedia(client *minio.Client, cfg Config, probe Prober) *MinioMedia {
	return &MinioMedia{client: client, cfg: cfg, probe: probe}
}

var _ Media = (*MinioMedia)(nil)

func (m *MinioMedia) bucket(kind string) (string, error) {
	switch kind {
	case constants.MediaVideo:
		return m.cfg.VideoBucket, nil
	case constants.MediaImage:
		return m.cfg.ImageBucket, nil
	}
	return "", errno.ParamErr.WithMessage(fmt.Sprintf("unknown media kind %q", kind))
}

// ensureBucket 检查存储桶是否存在，不存在则创建
func (m *MinioMedia) ensureBucket(ctx context.Context, bucket string) error {
	exists, err := m.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("check bucket error: %w", err)
	}
	if !exists {
		if err := m.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket error: %w", err)
		}
	}
	return nil
}

func (m *MinioMedia) Upload(ctx context.Context, localPath, kind string) (*Asset, error) {
	objectName := path.Join(kind, uuid.NewString()+strings.ToLower(filepath.Ext(localPath)))
	return m.put(ctx, localPath, objectName, kind)
}

func (m *MinioMedia) Replace(ctx context.Context, localPath, publicID, kind string) (*Asset, error) {
	if publicID == "" {
		return m.Upload(ctx, localPath, kind)
	}
	return m.put(ctx, localPath, publicID, kind)
}

func (m *MinioMedia) put(ctx context.Context, localPath, objectName, kind string) (*Asset, error) {
	bucket, err := m.bucket(kind)
	if err != nil {
		return nil, err
	}
	if err := m.ensureBucket(ctx, bucket); err != nil {
		return nil, errno.UpstreamErr.WithMessage(err.Error())
	}
	asset := &Asset{PublicID: objectName, URL: m.objectURL(bucket, objectName)}
	if kind == constants.MediaVideo && m.probe != nil {
		d, err := m.probe(localPath)
		if err != nil {
			hlog.CtxWarnf(ctx, "probe %s failed: %v", localPath, err)
		}
		asset.Duration = d
	}
	contentType := mime.TypeByExtension(filepath.Ext(localPath))
	if _, err := m.client.FPutObject(ctx, bucket, objectName, localPath, minio.PutObjectOptions{ContentType: contentType}); err != nil {
		hlog.CtxErrorf(ctx, "upload %s to %s failed: %v", localPath, bucket, err)
		return nil, errno.UpstreamErr.WithMessage("Failed to upload " + kind)
	}
	return asset, nil
}

func (m *MinioMedia) Delete(ctx context.Context, publicID, kind string) error {
	if publicID == "" {
		return nil
	}
	bucket, err := m.bucket(kind)
	if err != nil {
		return err
	}
	if err := m.client.RemoveObject(ctx, bucket, publicID, minio.RemoveObjectOptions{}); err != nil {
		hlog.CtxErrorf(ctx, "delete %s/%s failed: %v", bucket, publicID, err)
		return errno.UpstreamErr.WithMessage("Failed to delete " + kind)
	}
	return nil
}

func (m *MinioMedia) objectURL(bucket, objectName string) string {
	base := m.cfg.PublicURL
	if base == "" {
		scheme := "http"
		if m.cfg.UseSSL {
			scheme = "https"
		}
		base = scheme + "://" + m.cfg.Endpoint
	}
	return strings.TrimRight(base, "/") + "/" + bucket + "/" + objectName
}
