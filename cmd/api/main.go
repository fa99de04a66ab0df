package main

import (
	"context"
	"fmt"
	"time"

	"VidTube.com/cmd/api/bootstrap"
	"VidTube.com/cmd/api/router"
	interactionservice "VidTube.com/cmd/interaction/service"
	"VidTube.com/config"
	"VidTube.com/config/pprof"
	"VidTube.com/pkg/auth"
	"VidTube.com/pkg/cache"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/lock"
	"VidTube.com/pkg/mq"
	"VidTube.com/pkg/oss"
	"VidTube.com/pkg/ratelimit"
	"VidTube.com/pkg/relation"
	"VidTube.com/pkg/store"
	"VidTube.com/pkg/utils"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/middlewares/server/recovery"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/cors"
)

func newMedia() oss.Media {
	if !config.ConfigInfo.Minio.Enabled {
		hlog.Warn("minio disabled, media is kept in memory")
		return oss.NewMemoryMedia()
	}
	cfg := oss.Config{
		Endpoint:    config.ConfigInfo.Minio.Endpoint,
		AccessKey:   config.ConfigInfo.Minio.AccessKey,
		SecretKey:   config.ConfigInfo.Minio.SecretKey,
		UseSSL:      config.ConfigInfo.Minio.UseSSL,
		VideoBucket: config.ConfigInfo.Minio.VideoBucket,
		ImageBucket: config.ConfigInfo.Minio.ImageBucket,
		PublicURL:   config.ConfigInfo.Minio.PublicURL,
	}
	client, err := oss.NewMinioClient(cfg)
	if err != nil {
		panic(err)
	}
	return oss.NewMinioMedia(client, cfg, utils.ProbeDuration)
}

// Init 连接外部依赖并初始化各服务, 返回 token 解析器、限流器(可能为 nil)与进程退出时的清理函数
func Init(ctx context.Context) (*auth.TokenResolver, ratelimit.Limiter, func(), error) {
	config.Init()

	db, err := store.NewMongoStore(ctx, config.ConfigInfo.Mongo.URI, config.ConfigInfo.Mongo.Database)
	if err != nil {
		return nil, nil, nil, err
	}
	closers := []func(){func() { _ = db.Close(context.Background()) }}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	opts := []relation.Option{relation.WithMaxAttempts(config.ConfigInfo.Relation.MaxAttempts)}
	var counter interactionservice.LikeCounter
	var likeCache *cache.LikeCountCache
	var limiter ratelimit.Limiter
	if config.ConfigInfo.Redis.Enabled {
		rdb := cache.NewClient(ctx, config.ConfigInfo.Redis.Addr, config.ConfigInfo.Redis.Password, config.ConfigInfo.Redis.DB)
		closers = append(closers, func() { _ = rdb.Close() })
		opts = append(opts, relation.WithLocker(lock.NewRedisLocker(rdb, config.ConfigInfo.Relation.LockTTL)))
		likeCache = cache.NewLikeCountCache(rdb, config.ConfigInfo.Cache.LikeCountTTL)
		counter = likeCache
		if config.ConfigInfo.Limit.MaxRequests > 0 {
			limiter = ratelimit.NewSlidingWindow(rdb, config.ConfigInfo.Limit.Window, config.ConfigInfo.Limit.MaxRequests)
		}
	}
	if config.ConfigInfo.RabbitMq.Enabled {
		producer, err := mq.NewProducer(config.ConfigInfo.RabbitMq.URL())
		if err != nil {
			hlog.Errorf("relation events disabled: %v", err)
		} else {
			closers = append(closers, func() { _ = producer.Close() })
			opts = append(opts, relation.WithPublisher(producer))
		}
		if likeCache != nil {
			consumer, err := mq.NewConsumer(config.ConfigInfo.RabbitMq.URL())
			if err != nil {
				hlog.Errorf("relation event consumer disabled: %v", err)
			} else if err := consumer.ConsumeRelationEvents(ctx, likeCache); err != nil {
				hlog.Errorf("relation event consumer disabled: %v", err)
				_ = consumer.Close()
			} else {
				closers = append(closers, func() { _ = consumer.Close() })
			}
		}
	}

	tokens := auth.NewTokenResolver(config.ConfigInfo.Jwt.Secret, config.ConfigInfo.Jwt.Issuer)
	err = bootstrap.Init(ctx, bootstrap.Deps{
		Store:       db,
		Media:       newMedia(),
		Tokens:      tokens,
		AccessTTL:   config.ConfigInfo.Jwt.AccessTTL,
		Toggler:     relation.NewToggler(db, opts...),
		LikeCounter: counter,
	})
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	return tokens, limiter, cleanup, nil
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tokens, limiter, cleanup, err := Init(ctx)
	if err != nil {
		hlog.Fatalf("init failed: %v", err)
	}
	defer cleanup()
	pprof.Load(config.ConfigInfo.Server.PprofAddr)

	r := server.New(
		server.WithHostPorts(config.ConfigInfo.Server.Addr),
		server.WithHandleMethodNotAllowed(true),
		server.WithMaxRequestBodySize(config.ConfigInfo.Server.MaxBodyMB*1024*1024),
		server.WithExitWaitTime(5*time.Second),
	)

	// 配置 CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     config.ConfigInfo.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 错误处理
	r.Use(recovery.Recovery(recovery.WithRecoveryHandler(
		func(ctx context.Context, c *app.RequestContext, err interface{}, stack []byte) {
			hlog.SystemLogger().CtxErrorf(ctx, "[Recovery] err=%v\nstack=%s", err, stack)
			c.JSON(consts.StatusInternalServerError, map[string]interface{}{
				"code":    errno.ServiceErrCode,
				"message": fmt.Sprintf("[Recovery] err=%v", err),
				"data":    nil,
			})
		})))

	router.Register(r, tokens, limiter)
	r.Spin()
}
