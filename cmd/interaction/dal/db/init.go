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

// Init 绑定存储并建立点赞、评论、动态的索引
func Init(ctx context.Context, s store.Store) error {
	DB = s
	Engine = query.NewEngine(s)
	if err := DB.EnsureIndexes(ctx, constants.LikeCollection,
		store.Index{Name: "likedBy_target_targetModel", Keys: []string{"likedBy", "target", "targetModel"}, Unique: true},
		store.Index{Name: "target_targetModel", Keys: []string{"target", "targetModel"}},
	); err != nil {
		return err
	}
	if err := DB.EnsureIndexes(ctx, constants.CommentCollection,
		store.Index{Name: "video_createdAt", Keys: []string{"video", "createdAt"}},
	); err != nil {
		return err
	}
	return DB.EnsureIndexes(ctx, constants.TweetCollection,
		store.Index{Name: "owner_createdAt", Keys: []string{"owner", "createdAt"}},
	)
}
