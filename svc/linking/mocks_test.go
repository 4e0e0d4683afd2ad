package linking_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/anilink/pkg/anilist"
	"github.com/dmitrymomot/anilink/pkg/kvstore"
	"github.com/dmitrymomot/anilink/pkg/pocketbase"
	"github.com/dmitrymomot/anilink/pkg/toast"
	"github.com/dmitrymomot/anilink/svc/exchange"
)

type MockExchanger struct {
	mock.Mock
}

func (m *MockExchanger) Exchange(ctx context.Context, code, redirectURI string) (*exchange.Response, error) {
	args := m.Called(ctx, code, redirectURI)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*exchange.Response), args.Error(1)
}

type MockProfiles struct {
	mock.Mock
}

func (m *MockProfiles) Viewer(ctx context.Context, accessToken string) (*anilist.Viewer, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anilist.Viewer), args.Error(1)
}

type MockRecords struct {
	mock.Mock
}

func (m *MockRecords) Update(ctx context.Context, id string, body any) (*pocketbase.Record, error) {
	args := m.Called(ctx, id, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pocketbase.Record), args.Error(1)
}

func (m *MockRecords) AuthRefresh(ctx context.Context) (*pocketbase.AuthData, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pocketbase.AuthData), args.Error(1)
}

type staticSession struct {
	record *pocketbase.Record
}

func (s staticSession) Record() *pocketbase.Record { return s.record.Clone() }

type recordedToasts struct {
	mu    sync.Mutex
	items []toast.Toast
}

func (r *recordedToasts) Open(kind toast.Kind, message string) toast.Toast {
	t := toast.Toast{Kind: kind, Message: message}
	r.mu.Lock()
	r.items = append(r.items, t)
	r.mu.Unlock()
	return t
}

// slowStore adds a round trip to every read, like a remote store.
type slowStore struct {
	*kvstore.Memory
	delay time.Duration
}

func (s slowStore) Get(ctx context.Context, key string) (string, error) {
	time.Sleep(s.delay)
	return s.Memory.Get(ctx, key)
}

func (s slowStore) Take(ctx context.Context, key string) (string, error) {
	time.Sleep(s.delay)
	return s.Memory.Take(ctx, key)
}
