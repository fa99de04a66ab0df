package oss

import (
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Config struct {
	Endpoint    string
	AccessKey   string
	SecretKey   string
	UseSSL      bool
	VideoBucket string
	ImageBucket string
	// PublicURL 对外访问前缀, 为空时使用 endpoint
	PublicURL string
}

func NewMinioClient(cfg Config) (*minio.Client, error) {
	hlog.Infof("Initializing MinIO client with endpoint: %s, accessKey: %s", cfg.Endpoint, cfg.AccessKey)
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		hlog.Errorf("Failed to create MinIO client: %v", err)
		return nil, err
	}
	hlog.Info("Connect Minio Success")
	return client, nil
}
