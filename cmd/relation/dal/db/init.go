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
	return DB.EnsureIndexes(ctx, constants.SubscriptionCollection,
		store.Index{Name: "subscriber_channel", Keys: []string{"subscriber", "channel"}, Unique: true},
		store.Index{Name: "channel", Keys: []string{"channel"}},
	)
}
