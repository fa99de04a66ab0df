package service

import (
	"context"

	"VidTube.com/pkg/cache"
	"VidTube.com/pkg/relation"
)

// LikeCounter caches like counts per target. Satisfied by *cache.LikeCountCache.
type LikeCounter interface {
	Get(ctx context.Context, targetModel, target string) (int64, bool, error)
	Set(ctx context.Context, targetModel, target string, n int64) error
	Invalidate(ctx context.Context, targetModel, target string) error
}

var _ LikeCounter = (*cache.LikeCountCache)(nil)

var (
	toggler    *relation.Toggler
	likeCounts LikeCounter
)

// Init wires the toggle service and the optional like counter cache.
func Init(t *relation.Toggler, counter LikeCounter) {
	toggler = t
	likeCounts = counter
}
