package config

import (
	"os"
	"path/filepath"
	"strings"

	"VidTube.com/pkg/constants"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var ConfigInfo config

func setDefaults() {
	viper.SetDefault("server.addr", "0.0.0.0:8000")
	viper.SetDefault("server.upload_dir", filepath.Join(os.TempDir(), "vidtube"))
	viper.SetDefault("server.max_body_mb", 512)
	viper.SetDefault("server.allow_origins", []string{"http://localhost:5173"})
	viper.SetDefault("mongo.uri", "mongodb://localhost:27017")
	viper.SetDefault("mongo.database", "vidtube")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("rabbitmq.addr", "localhost:5672")
	viper.SetDefault("rabbitmq.username", "guest")
	viper.SetDefault("rabbitmq.password", "guest")
	viper.SetDefault("minio.endpoint", "localhost:9000")
	viper.SetDefault("minio.video_bucket", "videos")
	viper.SetDefault("minio.image_bucket", "images")
	viper.SetDefault("jwt.issuer", "vidtube")
	viper.SetDefault("jwt.access_ttl", "24h")
	viper.SetDefault("relation.lock_ttl", constants.DefaultLockTTL)
	viper.SetDefault("relation.max_attempts", constants.MaxToggleAttempts)
	viper.SetDefault("cache.like_count_ttl", constants.LikeCountCacheTTL)
	viper.SetDefault("ratelimit.window", "1m")
	viper.SetDefault("ratelimit.max_requests", 0)
}

// 使用Viper的好处在于支持配置文件的热更新 同时viper对于大小写并不敏感 都是统一进行处理
// 环境变量 VIDTUBE_<SECTION>_<KEY> 覆盖配置文件, 例如 VIDTUBE_MONGO_URI
func Init() {
	wd, _ := os.Getwd()
	logrus.Infof("Current working directory: %s", wd)

	setDefaults()
	viper.SetEnvPrefix("VIDTUBE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigType("yaml")
	viper.SetConfigName("config.yml")

	// 添加多个可能的配置文件路径
	for _, path := range []string{"../../config", "./config", "../config", "."} {
		viper.AddConfigPath(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logrus.Warnf("config file not found, using defaults and environment: %v", err)
		} else {
			logrus.Errorf("config error: %v", err)
		}
	} else {
		logrus.Infof("Successfully read config file: %s", viper.ConfigFileUsed())
	}

	// 手动从viper获取配置值，避免Unmarshal问题
	ConfigInfo.Server.Addr = viper.GetString("server.addr")
	ConfigInfo.Server.PprofAddr = viper.GetString("server.pprof_addr")
	ConfigInfo.Server.UploadDir = viper.GetString("server.upload_dir")
	ConfigInfo.Server.MaxBodyMB = viper.GetInt("server.max_body_mb")
	ConfigInfo.Server.AllowOrigins = viper.GetStringSlice("server.allow_origins")

	ConfigInfo.Mongo.URI = viper.GetString("mongo.uri")
	ConfigInfo.Mongo.Database = viper.GetString("mongo.database")

	ConfigInfo.Redis.Enabled = viper.GetBool("redis.enabled")
	ConfigInfo.Redis.Addr = viper.GetString("redis.addr")
	ConfigInfo.Redis.Password = viper.GetString("redis.password")
	ConfigInfo.Redis.DB = viper.GetInt("redis.db")

	ConfigInfo.RabbitMq.Enabled = viper.GetBool("rabbitmq.enabled")
	ConfigInfo.RabbitMq.Addr = viper.GetString("rabbitmq.addr")
	ConfigInfo.RabbitMq.Username = viper.GetString("rabbitmq.username")
	ConfigInfo.RabbitMq.Password = viper.GetString("rabbitmq.password")

	ConfigInfo.Minio.Enabled = viper.GetBool("minio.enabled")
	ConfigInfo.Minio.Endpoint = viper.GetString("minio.endpoint")
	ConfigInfo.Minio.AccessKey = viper.GetString("minio.access_key")
	ConfigInfo.Minio.SecretKey = viper.GetString("minio.secret_key")
	ConfigInfo.Minio.UseSSL = viper.GetBool("minio.use_ssl")
	ConfigInfo.Minio.VideoBucket = viper.GetString("minio.video_bucket")
	ConfigInfo.Minio.ImageBucket = viper.GetString("minio.image_bucket")
	ConfigInfo.Minio.PublicURL = viper.GetString("minio.public_url")

	ConfigInfo.Jwt.Secret = viper.GetString("jwt.secret")
	ConfigInfo.Jwt.Issuer = viper.GetString("jwt.issuer")
	ConfigInfo.Jwt.AccessTTL = viper.GetDuration("jwt.access_ttl")

	ConfigInfo.Relation.LockTTL = viper.GetDuration("relation.lock_ttl")
	ConfigInfo.Relation.MaxAttempts = viper.GetInt("relation.max_attempts")

	ConfigInfo.Cache.LikeCountTTL = viper.GetDuration("cache.like_count_ttl")

	ConfigInfo.Limit.Window = viper.GetDuration("ratelimit.window")
	ConfigInfo.Limit.MaxRequests = viper.GetInt64("ratelimit.max_requests")

	logrus.Infof("Config loaded - Mongo: %s/%s, Redis: %v, RabbitMQ: %v, MinIO: %v",
		ConfigInfo.Mongo.URI, ConfigInfo.Mongo.Database,
		ConfigInfo.Redis.Enabled, ConfigInfo.RabbitMq.Enabled, ConfigInfo.Minio.Enabled)
	if ConfigInfo.Jwt.Secret == "" {
		logrus.Warn("jwt.secret is empty, every authenticated request will be rejected")
	}
}
