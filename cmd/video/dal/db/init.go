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
	return DB.EnsureIndexes(ctx, constants.VideoCollection,
		store.Index{Name: "owner_createdAt", Keys: []string{"owner", "createdAt"}},
		store.Index{Name: "isPublished", Keys: []string{"isPublished"}},
	)
}
