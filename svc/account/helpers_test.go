package account_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/anilink/pkg/kvstore"
	"github.com/dmitrymomot/anilink/pkg/pocketbase"
	"github.com/dmitrymomot/anilink/pkg/pocketbase/pbtest"
	"github.com/dmitrymomot/anilink/svc/account"
	"github.com/dmitrymomot/anilink/svc/session"
)

type fixture struct {
	srv     *pbtest.Server
	storage kvstore.Store
	pb      *pocketbase.Client
	bridge  *session.Bridge
	auth    *account.Authenticator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	srv := pbtest.NewServer(t, "user")
	storage := kvstore.Scoped(kvstore.NewMemory(), "browser1")
	pb := pocketbase.New(srv.URL, pocketbase.WithAuthStore(pocketbase.NewAuthStore(pocketbase.WithStorage(storage))))
	records := pb.Collection("user")
	users := account.NewUserStore(records, account.Mapper{Files: pb, Location: time.UTC})

	bridge := session.NewBridge(pb.AuthStore())
	bridge.Initialize()
	t.Cleanup(bridge.Close)

	return &fixture{
		srv:     srv,
		storage: storage,
		pb:      pb,
		bridge:  bridge,
		auth:    account.New(pb, records, users, storage),
	}
}

func (f *fixture) login(t *testing.T) pocketbase.Record {
	t.Helper()
	rec := f.srv.AddUser("a@b.com", "password123")
	_, err := f.auth.Login(context.Background(), "a@b.com", "password123")
	require.NoError(t, err)
	return rec
}
