package oss

import (
	"context"
	"path"
	"path/filepath"
	"sync"

	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/errno"
	"github.com/google/uuid"
)

// MemoryMedia keeps asset ids in process. It backs local runs without object
// storage and the service tests; Fail, when set, can reject any call.
type MemoryMedia struct {
	mu     sync.Mutex
	assets map[string]string
	// Fail is consulted before every operation with op ∈ {upload, delete, replace}.
	Fail func(op, target string) error
	// Duration is reported for every uploaded video.
	Duration float64
}

func NewMemoryMedia() *MemoryMedia {
	return &MemoryMedia{assets: make(map[string]string)}
}

var _ Media = (*MemoryMedia)(nil)

func (m *MemoryMedia) check(op, target string) error {
	if m.Fail == nil {
		return nil
	}
	if err := m.Fail(op, target); err != nil {
		return errno.UpstreamErr.WithMessage(err.Error())
	}
	return nil
}

func (m *MemoryMedia) Upload(ctx context.Context, localPath, kind string) (*Asset, error) {
	if err := m.check("upload", localPath); err != nil {
		return nil, err
	}
	id := path.Join(kind, uuid.NewString()+filepath.Ext(localPath))
	m.mu.Lock()
	m.assets[id] = kind
	m.mu.Unlock()
	return m.asset(id, kind), nil
}

func (m *MemoryMedia) Replace(ctx context.Context, localPath, publicID, kind string) (*Asset, error) {
	if err := m.check("replace", publicID); err != nil {
		return nil, err
	}
	if publicID == "" {
		return m.Upload(ctx, localPath, kind)
	}
	m.mu.Lock()
	m.assets[publicID] = kind
	m.mu.Unlock()
	return m.asset(publicID, kind), nil
}

func (m *MemoryMedia) Delete(ctx context.Context, publicID, kind string) error {
	if err := m.check("delete", publicID); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.assets, publicID)
	m.mu.Unlock()
	return nil
}

// Has reports whether publicID is currently stored.
func (m *MemoryMedia) Has(publicID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.assets[publicID]
	return ok
}

// Len is the number of stored assets.
func (m *MemoryMedia) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.assets)
}

func (m *MemoryMedia) asset(id, kind string) *Asset {
	a := &Asset{URL: "memory://" + id, PublicID: id}
	if kind == constants.MediaVideo {
		a.Duration = m.Duration
	}
	return a
}
