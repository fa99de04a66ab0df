package service

import (
	"context"
	"sync"
	"testing"

	"VidTube.com/cmd/relation/dal/db"
	"VidTube.com/pkg/auth"
	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/mq"
	"VidTube.com/pkg/relation"
	"VidTube.com/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type recorder struct {
	mu     sync.Mutex
	events []mq.RelationEvent
}

func (r *recorder) PublishRelationEvent(_ context.Context, e *mq.RelationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *e)
	return nil
}

type fixture struct {
	ctx    context.Context
	store  *store.MemoryStore
	events *recorder
	svc    *SubscriptionService
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	s := store.NewMemoryStore()
	require.NoError(t, db.Init(ctx, s))
	r := &recorder{}
	Init(relation.NewToggler(s, relation.WithPublisher(r)))
	return &fixture{ctx: ctx, store: s, events: r, svc: NewSubscriptionService(ctx)}
}

func (f *fixture) user(t *testing.T, username string) *auth.Principal {
	t.Helper()
	id, err := f.store.Insert(f.ctx, constants.UserCollection, bson.M{"username": username, "fullName": username, "avatar": username + ".png"})
	require.NoError(t, err)
	return auth.NewPrincipal(id)
}

func TestToggleSubscriptionPairLaw(t *testing.T) {
	f := setup(t)
	x, c := f.user(t, "x"), f.user(t, "chan")

	on, err := f.svc.ToggleSubscription(x, c.UserID)
	require.NoError(t, err)
	assert.True(t, on)
	off, err := f.svc.ToggleSubscription(x, c.UserID)
	require.NoError(t, err)
	assert.False(t, off)

	n, err := f.store.CountDocuments(f.ctx, constants.SubscriptionCollection, bson.M{})
	require.NoError(t, err)
	assert.Zero(t, n)

	require.Len(t, f.events.events, 2)
	assert.Equal(t, mq.RelationKindSubscription, f.events.events[0].Kind)
	assert.True(t, f.events.events[0].Related)
	assert.False(t, f.events.events[1].Related)
	assert.Equal(t, c.UserID.Hex(), f.events.events[1].Target)
}

func TestToggleSubscriptionRejections(t *testing.T) {
	f := setup(t)
	x := f.user(t, "x")

	_, err := f.svc.ToggleSubscription(nil, x.UserID)
	assert.ErrorIs(t, err, errno.UnauthenticatedErr)

	_, err = f.svc.ToggleSubscription(x, x.UserID)
	assert.ErrorIs(t, err, errno.InvalidOpErr)

	_, err = f.svc.ToggleSubscription(x, primitive.NewObjectID())
	assert.ErrorIs(t, err, errno.NotFoundErr)

	n, err := f.store.CountDocuments(f.ctx, constants.SubscriptionCollection, bson.M{})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, f.events.events)
}

func TestConcurrentSubscriptionsStayUnique(t *testing.T) {
	f := setup(t)
	x, c := f.user(t, "x"), f.user(t, "chan")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.svc.ToggleSubscription(x, c.UserID)
		}()
	}
	wg.Wait()

	n, err := f.store.CountDocuments(f.ctx, constants.SubscriptionCollection, bson.M{"subscriber": x.UserID, "channel": c.UserID})
	require.NoError(t, err)
	assert.LessOrEqual(t, n, int64(1))
}

func TestSubscriberAndChannelPages(t *testing.T) {
	f := setup(t)
	a, b, c := f.user(t, "a"), f.user(t, "b"), f.user(t, "chan")
	for _, p := range []*auth.Principal{a, b} {
		_, err := f.svc.ToggleSubscription(p, c.UserID)
		require.NoError(t, err)
	}
	_, err := f.svc.ToggleSubscription(c, a.UserID)
	require.NoError(t, err)

	subs, err := f.svc.Subscribers(c.UserID, 1, 10)
	require.NoError(t, err)
	require.Len(t, subs.Docs, 2)
	got := []string{subs.Docs[0].Subscriber.Username, subs.Docs[1].Subscriber.Username}
	assert.ElementsMatch(t, []string{"a", "b"}, got)

	channels, err := f.svc.SubscribedChannels(c.UserID, 1, 10)
	require.NoError(t, err)
	require.Len(t, channels.Docs, 1)
	assert.Equal(t, "a", channels.Docs[0].Channel.Username)

	empty, err := f.svc.Subscribers(primitive.NewObjectID(), 1, 10)
	require.NoError(t, err)
	assert.Empty(t, empty.Docs)
	assert.Zero(t, empty.TotalPages)

	_, err = f.svc.Subscribers(c.UserID, 0, 500)
	assert.ErrorIs(t, err, errno.ParamErr)
}
