package service

import (
	"context"
	"testing"

	"VidTube.com/cmd/model"
	"VidTube.com/cmd/playlist/dal/db"
	"VidTube.com/pkg/auth"
	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fixture struct {
	ctx   context.Context
	store *store.MemoryStore
	svc   *PlaylistService
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	s := store.NewMemoryStore()
	require.NoError(t, db.Init(ctx, s))
	return &fixture{ctx: ctx, store: s, svc: NewPlaylistService(ctx)}
}

func (f *fixture) insert(t *testing.T, coll string, doc bson.M) primitive.ObjectID {
	t.Helper()
	id, err := f.store.Insert(f.ctx, coll, doc)
	require.NoError(t, err)
	return id
}

func (f *fixture) user(t *testing.T, username string) *auth.Principal {
	t.Helper()
	return auth.NewPrincipal(f.insert(t, constants.UserCollection, bson.M{"username": username, "fullName": username, "avatar": username + ".png"}))
}

func (f *fixture) video(t *testing.T, owner *auth.Principal, title string) primitive.ObjectID {
	t.Helper()
	return f.insert(t, constants.VideoCollection, bson.M{"owner": owner.UserID, "title": title, "videoFile": title + ".mp4", "thumbnail": title + ".png", "isPublished": true})
}

func (f *fixture) draft(t *testing.T, owner *auth.Principal, title string) primitive.ObjectID {
	t.Helper()
	return f.insert(t, constants.VideoCollection, bson.M{"owner": owner.UserID, "title": title, "videoFile": title + ".mp4", "thumbnail": title + ".png", "isPublished": false})
}

func titles(videos []model.VideoSummary) []string {
	out := make([]string, 0, len(videos))
	for _, v := range videos {
		out = append(out, v.Title)
	}
	return out
}

func TestCreatePlaylistValidation(t *testing.T) {
	f := setup(t)
	a := f.user(t, "alice")

	_, err := f.svc.CreatePlaylist(nil, "n", "d")
	assert.ErrorIs(t, err, errno.UnauthenticatedErr)
	_, err = f.svc.CreatePlaylist(a, " ", "d")
	assert.ErrorIs(t, err, errno.ParamErr)

	pl, err := f.svc.CreatePlaylist(a, "Mix", "songs")
	require.NoError(t, err)
	assert.Equal(t, a.UserID, pl.Owner)
	assert.Empty(t, pl.Videos)
}

func TestAddAndRemoveVideo(t *testing.T) {
	f := setup(t)
	a := f.user(t, "alice")
	v1, v2 := f.video(t, a, "one"), f.video(t, a, "two")
	pl, err := f.svc.CreatePlaylist(a, "Mix", "songs")
	require.NoError(t, err)

	_, err = f.svc.AddVideo(a, pl.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, errno.NotFoundErr)

	got, err := f.svc.AddVideo(a, pl.ID, v1)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{v1}, got.Videos)

	_, err = f.svc.AddVideo(a, pl.ID, v1)
	assert.ErrorIs(t, err, errno.ConflictErr)

	got, err = f.svc.AddVideo(a, pl.ID, v2)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{v1, v2}, got.Videos)

	got, err = f.svc.RemoveVideo(a, pl.ID, v1)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{v2}, got.Videos)

	_, err = f.svc.RemoveVideo(a, pl.ID, v1)
	assert.ErrorIs(t, err, errno.NotFoundErr)
}

func TestPlaylistOwnershipLeavesStateUntouched(t *testing.T) {
	f := setup(t)
	a, b := f.user(t, "alice"), f.user(t, "bob")
	v := f.video(t, b, "clip")
	pl, err := f.svc.CreatePlaylist(a, "Mix", "songs")
	require.NoError(t, err)

	_, err = f.svc.AddVideo(b, pl.ID, v)
	assert.ErrorIs(t, err, errno.ForbiddenErr)
	name := "stolen"
	_, err = f.svc.UpdatePlaylist(b, pl.ID, &UpdatePlaylistRequest{Name: &name})
	assert.ErrorIs(t, err, errno.ForbiddenErr)
	assert.ErrorIs(t, f.svc.DeletePlaylist(b, pl.ID), errno.ForbiddenErr)

	stored, err := db.GetPlaylist(f.ctx, pl.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mix", stored.Name)
	assert.Empty(t, stored.Videos)

	_, err = f.svc.UpdatePlaylist(a, primitive.NewObjectID(), &UpdatePlaylistRequest{Name: &name})
	assert.ErrorIs(t, err, errno.NotFoundErr)
}

func TestUpdateAndDeletePlaylist(t *testing.T) {
	f := setup(t)
	a := f.user(t, "alice")
	pl, err := f.svc.CreatePlaylist(a, "Mix", "songs")
	require.NoError(t, err)

	_, err = f.svc.UpdatePlaylist(a, pl.ID, &UpdatePlaylistRequest{})
	assert.ErrorIs(t, err, errno.ParamErr)

	name, desc := "Road trip", "long drive"
	got, err := f.svc.UpdatePlaylist(a, pl.ID, &UpdatePlaylistRequest{Name: &name, Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "Road trip", got.Name)
	assert.Equal(t, "long drive", got.Description)

	require.NoError(t, f.svc.DeletePlaylist(a, pl.ID))
	_, err = f.svc.GetPlaylist(a, pl.ID)
	assert.ErrorIs(t, err, errno.NotFoundErr)
}

func TestPlaylistJoins(t *testing.T) {
	f := setup(t)
	a := f.user(t, "alice")
	v := f.video(t, a, "clip")
	pl, err := f.svc.CreatePlaylist(a, "Mix", "songs")
	require.NoError(t, err)
	_, err = f.svc.AddVideo(a, pl.ID, v)
	require.NoError(t, err)
	_, err = f.svc.CreatePlaylist(a, "Empty", "nothing yet")
	require.NoError(t, err)

	detail, err := f.svc.GetPlaylist(nil, pl.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Owner)
	assert.Equal(t, "alice", detail.Owner.Username)
	require.Len(t, detail.Videos, 1)
	assert.Equal(t, "clip", detail.Videos[0].Title)
	assert.Equal(t, "clip.mp4", detail.Videos[0].VideoFile)

	lists, err := f.svc.UserPlaylists(nil, a.UserID)
	require.NoError(t, err)
	require.Len(t, lists, 2)
	byName := map[string]int{}
	for _, l := range lists {
		byName[l.Name] = len(l.Videos)
	}
	assert.Equal(t, map[string]int{"Mix": 1, "Empty": 0}, byName)

	none, err := f.svc.UserPlaylists(nil, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPlaylistKeepsInsertionOrder(t *testing.T) {
	f := setup(t)
	a := f.user(t, "alice")
	one, two := f.video(t, a, "one"), f.video(t, a, "two")
	pl, err := f.svc.CreatePlaylist(a, "Mix", "songs")
	require.NoError(t, err)
	_, err = f.svc.AddVideo(a, pl.ID, two)
	require.NoError(t, err)
	_, err = f.svc.AddVideo(a, pl.ID, one)
	require.NoError(t, err)

	detail, err := f.svc.GetPlaylist(nil, pl.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"two", "one"}, titles(detail.Videos))
	assert.Equal(t, []primitive.ObjectID{two, one}, detail.VideoIDs)

	lists, err := f.svc.UserPlaylists(nil, a.UserID)
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.Equal(t, []string{"two", "one"}, titles(lists[0].Videos))
}

func TestPlaylistHidesUnpublishedVideos(t *testing.T) {
	f := setup(t)
	a, b := f.user(t, "alice"), f.user(t, "bob")
	foreign := f.draft(t, b, "bob-draft")
	own := f.draft(t, a, "alice-draft")
	public := f.video(t, a, "public")
	pl, err := f.svc.CreatePlaylist(a, "Mix", "songs")
	require.NoError(t, err)

	_, err = f.svc.AddVideo(a, pl.ID, foreign)
	assert.ErrorIs(t, err, errno.NotFoundErr)
	stored, err := db.GetPlaylist(f.ctx, pl.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Videos)

	_, err = f.svc.AddVideo(a, pl.ID, own)
	require.NoError(t, err)
	_, err = f.svc.AddVideo(a, pl.ID, public)
	require.NoError(t, err)

	mine, err := f.svc.GetPlaylist(a, pl.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice-draft", "public"}, titles(mine.Videos))

	anon, err := f.svc.GetPlaylist(nil, pl.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"public"}, titles(anon.Videos))

	other, err := f.svc.UserPlaylists(b, a.UserID)
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, []string{"public"}, titles(other[0].Videos))
}
