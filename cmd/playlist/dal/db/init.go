package db

import (
	"context"

	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/query"
	"VidTube.com/pkg/store"
)

var (
	DB     store.Store
	Engine *query.Engine
)

func Init(ctx context.Context, s store.Store) error {
	DB = s
	Engine = query.NewEngine(s)
	return DB.EnsureIndexes(ctx, constants.PlaylistCollection,
		store.Index{Name: "owner", Keys: []string{"owner"}},
	)
}
