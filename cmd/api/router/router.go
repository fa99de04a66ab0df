package router

import (
	"context"

	"VidTube.com/cmd/api/handlers"
	"VidTube.com/cmd/api/mw"
	"VidTube.com/pkg/auth"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/ratelimit"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
)

// Register 注册全部 HTTP 路由; limiter 为 nil 时切换类接口不限流
func Register(h *server.Hertz, resolver *auth.TokenResolver, limiter ratelimit.Limiter) {
	v1 := h.Group("/api/v1", mw.Principal(resolver))
	authed := mw.AuthRequired()
	toggle := []app.HandlerFunc{authed}
	if limiter != nil {
		toggle = append(toggle, mw.RateLimit(limiter))
	}

	v1.GET("/healthcheck", func(ctx context.Context, c *app.RequestContext) {
		handlers.SendResponse(c, errno.Success, utils.H{"status": "ok"})
	})

	users := v1.Group("/users")
	users.POST("/register", handlers.Register)
	users.POST("/login", handlers.Login)
	users.POST("/logout", authed, handlers.Logout)
	users.GET("/current-user", authed, handlers.CurrentUser)
	users.DELETE("/current-user", authed, handlers.DeleteAccount)
	users.GET("/c/:username", handlers.ChannelProfile)
	users.GET("/history", authed, handlers.WatchHistory)

	videos := v1.Group("/videos")
	videos.GET("", handlers.ListVideos)
	videos.POST("", authed, handlers.PublishVideo)
	videos.GET("/:videoId", handlers.GetVideo)
	videos.PATCH("/:videoId", authed, handlers.UpdateVideo)
	videos.DELETE("/:videoId", authed, handlers.DeleteVideo)
	videos.PATCH("/:videoId/file", authed, handlers.ReplaceVideoFile)
	videos.PATCH("/:videoId/thumbnail", authed, handlers.ReplaceThumbnail)
	videos.PATCH("/toggle/publish/:videoId", authed, handlers.TogglePublishStatus)
	videos.POST("/:videoId/view", handlers.RecordView)

	comments := v1.Group("/comments")
	comments.GET("/:videoId", handlers.ListComments)
	comments.POST("/:videoId", authed, handlers.AddComment)
	comments.PATCH("/c/:commentId", authed, handlers.UpdateComment)
	comments.DELETE("/c/:commentId", authed, handlers.DeleteComment)

	likes := v1.Group("/likes")
	likes.POST("/toggle/:kind/:targetId", append(toggle, handlers.ToggleLike)...)
	likes.GET("/count/:targetModel/:targetId", handlers.LikeCount)
	likes.GET("/users/:targetModel/:targetId", handlers.LikedUsers)
	likes.GET("/videos", authed, handlers.LikedVideos)

	tweets := v1.Group("/tweets")
	tweets.POST("", authed, handlers.CreateTweet)
	tweets.GET("/user/:userId", handlers.ListUserTweets)
	tweets.PATCH("/:tweetId", authed, handlers.UpdateTweet)
	tweets.DELETE("/:tweetId", authed, handlers.DeleteTweet)

	subscriptions := v1.Group("/subscriptions")
	subscriptions.POST("/c/:channelId", append(toggle, handlers.ToggleSubscription)...)
	subscriptions.GET("/c/:channelId", handlers.ChannelSubscribers)
	subscriptions.GET("/u/:subscriberId", handlers.SubscribedChannels)

	playlists := v1.Group("/playlist")
	playlists.POST("", authed, handlers.CreatePlaylist)
	playlists.GET("/user/:userId", handlers.UserPlaylists)
	playlists.GET("/:playlistId", handlers.GetPlaylist)
	playlists.PATCH("/:playlistId", authed, handlers.UpdatePlaylist)
	playlists.DELETE("/:playlistId", authed, handlers.DeletePlaylist)
	playlists.PATCH("/add/:videoId/:playlistId", authed, handlers.AddVideoToPlaylist)
	playlists.PATCH("/remove/:videoId/:playlistId", authed, handlers.RemoveVideoFromPlaylist)
}
