// Package bootstrap wires the DAL and service packages to their dependencies.
package bootstrap

import (
	"context"
	"time"

	interactiondb "VidTube.com/cmd/interaction/dal/db"
	interactionservice "VidTube.com/cmd/interaction/service"
	playlistdb "VidTube.com/cmd/playlist/dal/db"
	relationdb "VidTube.com/cmd/relation/dal/db"
	relationservice "VidTube.com/cmd/relation/service"
	userdb "VidTube.com/cmd/user/dal/db"
	userservice "VidTube.com/cmd/user/service"
	videodb "VidTube.com/cmd/video/dal/db"
	videoservice "VidTube.com/cmd/video/service"
	"VidTube.com/pkg/auth"
	"VidTube.com/pkg/oss"
	"VidTube.com/pkg/relation"
	"VidTube.com/pkg/store"
)

type Deps struct {
	Store     store.Store
	Media     oss.Media
	Tokens    *auth.TokenResolver
	AccessTTL time.Duration
	Toggler   *relation.Toggler
	// LikeCounter is optional; leave nil to count from the store every time.
	LikeCounter interactionservice.LikeCounter
}

// Init binds every DAL to the store, ensures indexes and initialises the services.
func Init(ctx context.Context, d Deps) error {
	inits := []func(context.Context, store.Store) error{
		userdb.Init,
		videodb.Init,
		interactiondb.Init,
		relationdb.Init,
		playlistdb.Init,
	}
	for _, init := range inits {
		if err := init(ctx, d.Store); err != nil {
			return err
		}
	}
	toggler := d.Toggler
	if toggler == nil {
		toggler = relation.NewToggler(d.Store)
	}
	videoservice.Init(d.Media)
	userservice.Init(d.Media, d.Tokens, d.AccessTTL)
	interactionservice.Init(toggler, d.LikeCounter)
	relationservice.Init(toggler)
	return nil
}
