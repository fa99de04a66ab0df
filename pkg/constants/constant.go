package constants

import "time"

// collections
const (
	UserCollection         = "users"
	VideoCollection        = "videos"
	CommentCollection      = "comments"
	TweetCollection        = "tweets"
	PlaylistCollection     = "playlists"
	LikeCollection         = "likes"
	SubscriptionCollection = "subscriptions"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100

	SortAsc  = "asc"
	SortDesc = "desc"

	MaxToggleAttempts = 3
	DefaultLockTTL    = 5 * time.Second
	LikeCountCacheTTL = 10 * time.Minute

	MaxCommentLength = 500
	MaxTweetLength   = 280
)

// request context keys
const (
	PrincipalKey   = "principal"
	AccessTokenKey = "accessToken"
)

// media kinds understood by the media service
const (
	MediaVideo = "video"
	MediaImage = "image"
)
