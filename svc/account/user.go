package account

import (
	"time"

	"github.com/dmitrymomot/anilink/pkg/pocketbase"
)

// CreatedLayout is the DD-MM-YYYY layout of User.Created.
const CreatedLayout = "02-01-2006"

// DefaultAvatarThumb is the PocketBase thumb size used for avatar URLs.
const DefaultAvatarThumb = "100x250"

// User is the display projection of the signed-in account. Password fields
// are form scratch space and never carry remote data.
type User struct {
	ID              string `json:"id"`
	Token           string `json:"token"`
	Email           string `json:"email"`
	Avatar          string `json:"avatar,omitempty"`
	AvatarURL       string `json:"avatarURL"`
	Created         string `json:"created"`
	OldPassword     string `json:"oldPassword"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`

	AniListUserID       int64  `json:"anilist_user_id,omitempty"`
	AniListUsername     string `json:"anilist_username,omitempty"`
	AniListAvatarMedium string `json:"anilist_avatar_url_medium,omitempty"`
	AniListAvatarLarge  string `json:"anilist_avatar_url_large,omitempty"`
}

// NewAccount is the sign-up form.
type NewAccount struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

// FileURLer resolves file field values to URLs.
type FileURLer interface {
	FileURL(record *pocketbase.Record, filename, thumb string) string
}

// Mapper projects PocketBase auth payloads into Users.
type Mapper struct {
	Files    FileURLer
	Thumb    string
	Location *time.Location
}

// Map converts data into a User. A nil record yields a User carrying only
// the token.
func (m Mapper) Map(data pocketbase.AuthData) User {
	u := User{Token: data.Token}
	rec := data.Record
	if rec == nil {
		return u
	}

	u.ID = rec.ID
	u.Email = rec.Email
	u.Avatar = rec.Avatar
	if rec.Avatar != "" && m.Files != nil {
		thumb := m.Thumb
		if thumb == "" {
			thumb = DefaultAvatarThumb
		}
		u.AvatarURL = m.Files.FileURL(rec, rec.Avatar, thumb)
	}
	if !rec.Created.IsZero() {
		loc := m.Location
		if loc == nil {
			loc = time.UTC
		}
		u.Created = rec.Created.In(loc).Format(CreatedLayout)
	}

	u.AniListUserID = rec.AniListUserID
	u.AniListUsername = rec.AniListUsername
	u.AniListAvatarMedium = rec.AniListAvatarMedium
	u.AniListAvatarLarge = rec.AniListAvatarLarge
	return u
}
