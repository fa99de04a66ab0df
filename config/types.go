package config

import (
	"fmt"
	"time"
)

type config struct {
	Server   server   `yaml:"server" mapstructure:"server"`
	Mongo    mongo    `yaml:"mongo" mapstructure:"mongo"`
	Redis    redis    `yaml:"redis" mapstructure:"redis"`
	RabbitMq rabbitmq `yaml:"rabbitmq" mapstructure:"rabbitmq"`
	Minio    minio    `yaml:"minio" mapstructure:"minio"`
	Jwt      jwt      `yaml:"jwt" mapstructure:"jwt"`
	Relation relation `yaml:"relation" mapstructure:"relation"`
	Cache    cache    `yaml:"cache" mapstructure:"cache"`
	Limit    limit    `yaml:"ratelimit" mapstructure:"ratelimit"`
}

type server struct {
	Addr         string   `yaml:"addr"`
	PprofAddr    string   `yaml:"pprof_addr" mapstructure:"pprof_addr"`
	UploadDir    string   `yaml:"upload_dir" mapstructure:"upload_dir"`
	MaxBodyMB    int      `yaml:"max_body_mb" mapstructure:"max_body_mb"`
	AllowOrigins []string `yaml:"allow_origins" mapstructure:"allow_origins"`
}

type mongo struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type redis struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type rabbitmq struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

func (r rabbitmq) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s/", r.Username, r.Password, r.Addr)
}

type minio struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	AccessKey   string `yaml:"access_key" mapstructure:"access_key"`
	SecretKey   string `yaml:"secret_key" mapstructure:"secret_key"`
	UseSSL      bool   `yaml:"use_ssl" mapstructure:"use_ssl"`
	VideoBucket string `yaml:"video_bucket" mapstructure:"video_bucket"`
	ImageBucket string `yaml:"image_bucket" mapstructure:"image_bucket"`
	PublicURL   string `yaml:"public_url" mapstructure:"public_url"`
}

type jwt struct {
	Secret    string        `yaml:"secret"`
	Issuer    string        `yaml:"issuer"`
	AccessTTL time.Duration `yaml:"access_ttl" mapstructure:"access_ttl"`
}

type relation struct {
	LockTTL     time.Duration `yaml:"lock_ttl" mapstructure:"lock_ttl"`
	MaxAttempts int           `yaml:"max_attempts" mapstructure:"max_attempts"`
}

type cache struct {
	LikeCountTTL time.Duration `yaml:"like_count_ttl" mapstructure:"like_count_ttl"`
}

// limit 切换类接口的限流, 需要开启 redis
type limit struct {
	Window      time.Duration `yaml:"window"`
	MaxRequests int64         `yaml:"max_requests" mapstructure:"max_requests"`
}
