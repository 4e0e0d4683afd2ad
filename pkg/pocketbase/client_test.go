package pocketbase_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/anilink/pkg/pocketbase"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestRecordService_AuthWithPassword(t *testing.T) {
	t.Parallel()

	token := signToken(t, time.Now().Add(time.Hour))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/collections/user/auth-with-password", r.URL.Path)

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "pw" {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"status":  400,
				"message": "Failed to authenticate.",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"token": token,
			"record": map[string]any{
				"id":             "rec1",
				"collectionId":   "_pb_users",
				"collectionName": "user",
				"email":          body["identity"],
				"created":        "2024-03-05 10:11:12.123Z",
			},
		})
	}))
	defer srv.Close()

	pb := pocketbase.New(srv.URL)
	ctx := context.Background()

	t.Run("success saves into auth store", func(t *testing.T) {
		data, err := pb.Collection("user").AuthWithPassword(ctx, "a@b.com", "pw")
		require.NoError(t, err)
		assert.Equal(t, token, data.Token)
		assert.Equal(t, "a@b.com", data.Record.Email)
		assert.Equal(t, 2024, data.Record.Created.Year())
		assert.Equal(t, time.March, data.Record.Created.Month())

		assert.True(t, pb.AuthStore().IsValid())
		assert.Equal(t, "rec1", pb.AuthStore().Record().ID)
	})

	t.Run("rejection returns upstream error", func(t *testing.T) {
		_, err := pb.Collection("user").AuthWithPassword(ctx, "a@b.com", "wrong")
		require.Error(t, err)
		assert.Equal(t, "Failed to authenticate.", err.Error())
		assert.Equal(t, http.StatusBadRequest, pocketbase.StatusCode(err))
	})
}

func TestRecordService_UpdateAndDeleteAuthRecord(t *testing.T) {
	t.Parallel()

	var authHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		switch r.Method {
		case http.MethodPatch:
			assert.Equal(t, "/api/collections/user/records/rec1", r.URL.Path)
			writeJSON(w, http.StatusOK, map[string]any{
				"id":               "rec1",
				"collectionName":   "user",
				"anilist_user_id":  42,
				"anilist_username": "u",
			})
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	store := pocketbase.NewAuthStore()
	store.Save(ctx, "tok", &pocketbase.Record{ID: "rec1", CollectionName: "user"})
	pb := pocketbase.New(srv.URL, pocketbase.WithAuthStore(store))

	rec, err := pb.Collection("user").Update(ctx, "rec1", map[string]any{"anilist_username": "u"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), rec.AniListUserID)
	assert.Equal(t, "tok", authHeader)
	assert.Equal(t, "u", store.Record().AniListUsername)
	assert.Equal(t, "tok", store.Token())

	require.NoError(t, pb.Collection("user").Delete(ctx, "rec1"))
	assert.Empty(t, store.Token())
	assert.Nil(t, store.Record())
}

func TestRecordService_ListAuthMethods(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/collections/user/auth-methods", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"password": map[string]any{"enabled": true, "identityFields": []string{"email"}},
			"oauth2": map[string]any{
				"enabled": true,
				"providers": []map[string]any{{
					"name":         "github",
					"state":        "pb-state",
					"authURL":      "https://github.com/login/oauth/authorize?client_id=x&redirect_uri=",
					"codeVerifier": "verifier",
				}},
			},
		})
	}))
	defer srv.Close()

	methods, err := pocketbase.New(srv.URL).Collection("user").ListAuthMethods(context.Background())
	require.NoError(t, err)

	p, ok := methods.Provider("github")
	require.True(t, ok)
	assert.Equal(t, "pb-state", p.State)
	assert.Equal(t, "verifier", p.CodeVerifier)

	_, ok = methods.Provider("google")
	assert.False(t, ok)
}

func TestClient_FileURL(t *testing.T) {
	t.Parallel()
	pb := pocketbase.New("https://pb.example.com/")

	rec := &pocketbase.Record{ID: "rec1", CollectionID: "_pb_users"}
	assert.Equal(t,
		"https://pb.example.com/api/files/_pb_users/rec1/avatar_x.png?thumb=100x250",
		pb.FileURL(rec, "avatar_x.png", "100x250"),
	)
	assert.Empty(t, pb.FileURL(rec, "", "100x250"))
	assert.Empty(t, pb.FileURL(nil, "x.png", ""))
}

func TestDateTime(t *testing.T) {
	t.Parallel()

	var rec pocketbase.Record
	require.NoError(t, json.Unmarshal([]byte(`{"id":"r","created":"","updated":"2024-01-02T03:04:05Z"}`), &rec))
	assert.True(t, rec.Created.IsZero())
	assert.Equal(t, 2, rec.Updated.Day())

	out, err := json.Marshal(rec.Updated)
	require.NoError(t, err)
	assert.Equal(t, `"2024-01-02 03:04:05.000Z"`, string(out))
}
