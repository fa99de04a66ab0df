// Package relation flips many-to-many edges (likes, subscriptions) under a
// unique index on the edge key.
package relation

import (
	"context"
	"errors"
	"fmt"

	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/mq"
	"VidTube.com/pkg/store"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	pkgerrors "github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
)

// Locker serialises toggles on one edge key across processes.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// Edge identifies one relation. Key must be exactly the fields of the
// collection's unique index; Doc is inserted when the edge is created.
type Edge struct {
	Collection string
	Key        bson.M
	Doc        interface{}
	// Event is published after a successful toggle with Related filled in.
	Event *mq.RelationEvent
}

func (e Edge) lockKey() string {
	return fmt.Sprintf("%s:%v", e.Collection, e.Key)
}

type Toggler struct {
	store       store.Store
	locker      Locker
	publisher   mq.RelationPublisher
	maxAttempts int
}

type Option func(*Toggler)

func WithLocker(l Locker) Option {
	return func(t *Toggler) { t.locker = l }
}

func WithPublisher(p mq.RelationPublisher) Option {
	return func(t *Toggler) { t.publisher = p }
}

func WithMaxAttempts(n int) Option {
	return func(t *Toggler) {
		if n > 0 {
			t.maxAttempts = n
		}
	}
}

func NewToggler(s store.Store, opts ...Option) *Toggler {
	t := &Toggler{store: s, maxAttempts: constants.MaxToggleAttempts}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Toggle deletes the edge if present and creates it otherwise, reporting the
// resulting state. precheck runs only on the create path. A duplicate key on
// insert means a concurrent toggle created the edge first; the loop restarts
// and deletes it, so the late toggle reads as the reverse of the winner.
func (t *Toggler) Toggle(ctx context.Context, e Edge, precheck func(context.Context) error) (bool, error) {
	if t.locker != nil {
		unlock, err := t.locker.Lock(ctx, e.lockKey())
		if err != nil {
			return false, pkgerrors.WithMessage(err, "acquire relation lock")
		}
		defer unlock()
	}

	checked := false
	for attempt := 0; attempt < t.maxAttempts; attempt++ {
		n, err := t.store.DeleteOne(ctx, e.Collection, e.Key)
		if err != nil {
			return false, pkgerrors.WithMessagef(err, "delete %s edge", e.Collection)
		}
		if n > 0 {
			t.publish(ctx, e, false)
			return false, nil
		}
		if precheck != nil && !checked {
			if err := precheck(ctx); err != nil {
				return false, err
			}
			checked = true
		}
		_, err = t.store.Insert(ctx, e.Collection, e.Doc)
		if errors.Is(err, store.ErrDuplicateKey) {
			hlog.CtxInfof(ctx, "toggle %s %v lost insert race, attempt %d", e.Collection, e.Key, attempt+1)
			continue
		}
		if err != nil {
			return false, pkgerrors.WithMessagef(err, "insert %s edge", e.Collection)
		}
		t.publish(ctx, e, true)
		return true, nil
	}
	return false, errno.ConflictErr.WithMessage("Relation is being modified concurrently, try again")
}

func (t *Toggler) publish(ctx context.Context, e Edge, related bool) {
	if t.publisher == nil || e.Event == nil {
		return
	}
	event := *e.Event
	event.Related = related
	if err := t.publisher.PublishRelationEvent(ctx, &event); err != nil {
		hlog.CtxErrorf(ctx, "publish relation event %s failed: %v", event.EventID, err)
	}
}
