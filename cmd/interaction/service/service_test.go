package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"VidTube.com/cmd/interaction/dal/db"
	"VidTube.com/cmd/model"
	"VidTube.com/pkg/auth"
	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/relation"
	"VidTube.com/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type mapCounter struct {
	mu          sync.Mutex
	counts      map[string]int64
	invalidated int
}

func newMapCounter() *mapCounter {
	return &mapCounter{counts: map[string]int64{}}
}

func (c *mapCounter) Get(_ context.Context, targetModel, target string) (int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.counts[targetModel+":"+target]
	return n, ok, nil
}

func (c *mapCounter) Set(_ context.Context, targetModel, target string, n int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[targetModel+":"+target] = n
	return nil
}

func (c *mapCounter) Invalidate(_ context.Context, targetModel, target string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.counts, targetModel+":"+target)
	c.invalidated++
	return nil
}

type fixture struct {
	ctx     context.Context
	store   *store.MemoryStore
	counter *mapCounter
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	s := store.NewMemoryStore()
	require.NoError(t, db.Init(ctx, s))
	c := newMapCounter()
	Init(relation.NewToggler(s), c)
	return &fixture{ctx: ctx, store: s, counter: c}
}

func (f *fixture) insert(t *testing.T, coll string, doc bson.M) primitive.ObjectID {
	t.Helper()
	id, err := f.store.Insert(f.ctx, coll, doc)
	require.NoError(t, err)
	return id
}

func (f *fixture) user(t *testing.T, username string) *auth.Principal {
	t.Helper()
	return auth.NewPrincipal(f.insert(t, constants.UserCollection, bson.M{
		"username": username, "fullName": strings.ToUpper(username), "avatar": username + ".png", "email": username + "@x.io",
	}))
}

func (f *fixture) video(t *testing.T, owner *auth.Principal, title string) primitive.ObjectID {
	t.Helper()
	return f.insert(t, constants.VideoCollection, bson.M{
		"owner": owner.UserID, "title": title, "description": "d", "videoFile": "v.mp4", "thumbnail": "t.png",
		"isPublished": true, "views": 0, "duration": 1.5, "createdAt": time.Now().UTC(),
	})
}

func (f *fixture) count(t *testing.T, coll string, filter bson.M) int64 {
	t.Helper()
	n, err := f.store.CountDocuments(f.ctx, coll, filter)
	require.NoError(t, err)
	return n
}

func TestLikeCountScenario(t *testing.T) {
	f := setup(t)
	owner, a, b := f.user(t, "owner"), f.user(t, "alice"), f.user(t, "bob")
	vid := f.video(t, owner, "clip")
	svc := NewLikeService(f.ctx)

	liked, err := svc.ToggleLike(a, "Video", vid)
	require.NoError(t, err)
	assert.True(t, liked)
	liked, err = svc.ToggleLike(b, "Video", vid)
	require.NoError(t, err)
	assert.True(t, liked)

	n, err := svc.LikeCount("Video", vid)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	liked, err = svc.ToggleLike(a, "Video", vid)
	require.NoError(t, err)
	assert.False(t, liked)

	n, err = svc.LikeCount("Video", vid)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 3, f.counter.invalidated)
}

func TestLikeCountServedFromCache(t *testing.T) {
	f := setup(t)
	vid := primitive.NewObjectID()
	require.NoError(t, f.counter.Set(f.ctx, "Video", vid.Hex(), 7))

	n, err := NewLikeService(f.ctx).LikeCount("Video", vid)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}

func TestToggleLikeRejections(t *testing.T) {
	f := setup(t)
	a := f.user(t, "alice")
	svc := NewLikeService(f.ctx)

	_, err := svc.ToggleLike(nil, "Video", primitive.NewObjectID())
	assert.ErrorIs(t, err, errno.UnauthenticatedErr)

	_, err = svc.ToggleLike(a, "Playlist", primitive.NewObjectID())
	assert.ErrorIs(t, err, errno.ParamErr)

	_, err = svc.ToggleLike(a, "Tweet", primitive.NewObjectID())
	assert.ErrorIs(t, err, errno.NotFoundErr)
	assert.Zero(t, f.count(t, constants.LikeCollection, bson.M{}))
}

func TestUnlikeSkipsTargetCheck(t *testing.T) {
	f := setup(t)
	a := f.user(t, "alice")
	gone := primitive.NewObjectID()
	f.insert(t, constants.LikeCollection, bson.M{"likedBy": a.UserID, "target": gone, "targetModel": "Comment"})

	liked, err := NewLikeService(f.ctx).ToggleLike(a, "Comment", gone)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Zero(t, f.count(t, constants.LikeCollection, bson.M{}))
}

func TestLikedUsers(t *testing.T) {
	f := setup(t)
	owner, a, b := f.user(t, "owner"), f.user(t, "alice"), f.user(t, "bob")
	vid := f.video(t, owner, "clip")
	svc := NewLikeService(f.ctx)
	_, err := svc.ToggleLike(a, "Video", vid)
	require.NoError(t, err)
	_, err = svc.ToggleLike(b, "Video", vid)
	require.NoError(t, err)

	page, err := svc.LikedUsers("Video", vid, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Docs, 2)
	assert.Equal(t, int64(2), page.TotalDocs)
	names := []string{page.Docs[0].LikedBy.Username, page.Docs[1].LikedBy.Username}
	assert.ElementsMatch(t, []string{"alice", "bob"}, names)
}

func TestLikedVideosCarryOwner(t *testing.T) {
	f := setup(t)
	owner, a := f.user(t, "owner"), f.user(t, "alice")
	v1, v2 := f.video(t, owner, "first"), f.video(t, owner, "second")
	svc := NewLikeService(f.ctx)
	for _, v := range []primitive.ObjectID{v1, v2} {
		_, err := svc.ToggleLike(a, "Video", v)
		require.NoError(t, err)
	}
	tweet := f.insert(t, constants.TweetCollection, bson.M{"owner": owner.UserID, "content": "hi"})
	_, err := svc.ToggleLike(a, "Tweet", tweet)
	require.NoError(t, err)

	page, err := svc.LikedVideos(a, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Docs, 2)
	for _, lv := range page.Docs {
		require.NotNil(t, lv.Video)
		require.NotNil(t, lv.Video.Owner)
		assert.Equal(t, "owner", lv.Video.Owner.Username)
	}

	_, err = f.store.UpdateOne(f.ctx, constants.VideoCollection, bson.M{"_id": v1}, bson.M{"$set": bson.M{"isPublished": false}}, nil)
	require.NoError(t, err)
	page, err = svc.LikedVideos(a, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Docs, 2)
	visible := 0
	for _, lv := range page.Docs {
		if lv.Video != nil {
			visible++
			assert.Equal(t, v2, lv.Video.ID)
		}
	}
	assert.Equal(t, 1, visible)

	_, err = svc.LikedVideos(nil, 1, 10)
	assert.ErrorIs(t, err, errno.UnauthenticatedErr)
}

func TestCommentLifecycle(t *testing.T) {
	f := setup(t)
	owner, a, b := f.user(t, "owner"), f.user(t, "alice"), f.user(t, "bob")
	vid := f.video(t, owner, "clip")
	svc := NewCommentService(f.ctx)

	_, err := svc.AddComment(a, primitive.NewObjectID(), "hello")
	assert.ErrorIs(t, err, errno.NotFoundErr)
	_, err = svc.AddComment(a, vid, "   ")
	assert.ErrorIs(t, err, errno.ParamErr)
	_, err = svc.AddComment(a, vid, strings.Repeat("x", constants.MaxCommentLength+1))
	assert.ErrorIs(t, err, errno.ParamErr)

	c, err := svc.AddComment(a, vid, " hello ")
	require.NoError(t, err)
	assert.Equal(t, "hello", c.Content)

	_, err = svc.UpdateComment(b, c.ID, "hijack")
	assert.ErrorIs(t, err, errno.ForbiddenErr)
	stored, err := db.GetComment(f.ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", stored.Content)

	updated, err := svc.UpdateComment(a, c.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	page, err := svc.ListComments(vid, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Docs, 1)
	require.NotNil(t, page.Docs[0].Owner)
	assert.Equal(t, "alice", page.Docs[0].Owner.Username)

	_, err = NewLikeService(f.ctx).ToggleLike(b, "Comment", c.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, svc.DeleteComment(b, c.ID), errno.ForbiddenErr)
	require.NoError(t, svc.DeleteComment(a, c.ID))
	assert.Zero(t, f.count(t, constants.CommentCollection, bson.M{}))
	assert.Zero(t, f.count(t, constants.LikeCollection, bson.M{}))
	assert.ErrorIs(t, svc.DeleteComment(a, c.ID), errno.NotFoundErr)
}

func TestListCommentsNewestFirst(t *testing.T) {
	f := setup(t)
	owner := f.user(t, "owner")
	vid := f.video(t, owner, "clip")
	svc := NewCommentService(f.ctx)
	for _, text := range []string{"one", "two", "three"} {
		_, err := svc.AddComment(owner, vid, text)
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	page, err := svc.ListComments(vid, 1, 2)
	require.NoError(t, err)
	require.Len(t, page.Docs, 2)
	assert.Equal(t, "three", page.Docs[0].Content)
	assert.Equal(t, "two", page.Docs[1].Content)
	assert.Equal(t, int64(2), page.TotalPages)
	assert.True(t, page.HasNextPage)
}

func TestTweetLifecycle(t *testing.T) {
	f := setup(t)
	a, b := f.user(t, "alice"), f.user(t, "bob")
	svc := NewTweetService(f.ctx)

	page, err := svc.ListUserTweets(a.UserID, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Docs)
	assert.Zero(t, page.TotalDocs)

	_, err = svc.CreateTweet(nil, "hi")
	assert.ErrorIs(t, err, errno.UnauthenticatedErr)
	_, err = svc.CreateTweet(a, strings.Repeat("x", constants.MaxTweetLength+1))
	assert.ErrorIs(t, err, errno.ParamErr)

	tw, err := svc.CreateTweet(a, "first")
	require.NoError(t, err)
	_, err = svc.UpdateTweet(b, tw.ID, "nope")
	assert.ErrorIs(t, err, errno.ForbiddenErr)
	tw, err = svc.UpdateTweet(a, tw.ID, "first!")
	require.NoError(t, err)
	assert.Equal(t, "first!", tw.Content)

	liked, err := NewLikeService(f.ctx).ToggleLike(b, string(model.TargetTweet), tw.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	page, err = svc.ListUserTweets(a.UserID, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Docs, 1)

	assert.ErrorIs(t, svc.DeleteTweet(b, tw.ID), errno.ForbiddenErr)
	require.NoError(t, svc.DeleteTweet(a, tw.ID))
	assert.Zero(t, f.count(t, constants.LikeCollection, bson.M{}))
}
