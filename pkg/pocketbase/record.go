package pocketbase

import (
	"bytes"
	"encoding/json"
	"time"
)

// DateTimeLayout is the format PocketBase uses for record timestamps.
const DateTimeLayout = "2006-01-02 15:04:05.000Z"

// DateTime decodes PocketBase timestamps. Empty strings decode to the zero time.
type DateTime struct {
	time.Time
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(d.UTC().Format(DateTimeLayout))
}

func (d *DateTime) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		d.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(DateTimeLayout, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return err
		}
	}
	d.Time = t
	return nil
}

// Record is an auth collection record as returned by PocketBase.
type Record struct {
	ID              string   `json:"id"`
	CollectionID    string   `json:"collectionId,omitempty"`
	CollectionName  string   `json:"collectionName,omitempty"`
	Email           string   `json:"email,omitempty"`
	EmailVisibility bool     `json:"emailVisibility"`
	Verified        bool     `json:"verified"`
	Avatar          string   `json:"avatar,omitempty"`
	Created         DateTime `json:"created"`
	Updated         DateTime `json:"updated"`

	AniListUserID       int64  `json:"anilist_user_id,omitempty"`
	AniListUsername     string `json:"anilist_username,omitempty"`
	AniListAvatarMedium string `json:"anilist_avatar_url_medium,omitempty"`
	AniListAvatarLarge  string `json:"anilist_avatar_url_large,omitempty"`
	AniListToken        string `json:"anilist_token,omitempty"`
}

// Clone returns a copy safe to hand out across goroutines.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	cp := *r
	return &cp
}

// AuthData is the payload of every PocketBase auth endpoint.
type AuthData struct {
	Token  string  `json:"token"`
	Record *Record `json:"record"`
}

// AuthProvider is one OAuth2 provider entry of the auth-methods response.
type AuthProvider struct {
	Name                string `json:"name"`
	DisplayName         string `json:"displayName"`
	State               string `json:"state"`
	AuthURL             string `json:"authURL"`
	CodeVerifier        string `json:"codeVerifier"`
	CodeChallenge       string `json:"codeChallenge"`
	CodeChallengeMethod string `json:"codeChallengeMethod"`
}

// AuthMethods lists the auth methods enabled for a collection.
type AuthMethods struct {
	Password struct {
		Enabled        bool     `json:"enabled"`
		IdentityFields []string `json:"identityFields"`
	} `json:"password"`
	OAuth2 struct {
		Enabled   bool           `json:"enabled"`
		Providers []AuthProvider `json:"providers"`
	} `json:"oauth2"`
}

// Provider looks up an enabled OAuth2 provider by name.
func (m *AuthMethods) Provider(name string) (AuthProvider, bool) {
	if m == nil || !m.OAuth2.Enabled {
		return AuthProvider{}, false
	}
	for _, p := range m.OAuth2.Providers {
		if p.Name == name {
			return p, true
		}
	}
	return AuthProvider{}, false
}
