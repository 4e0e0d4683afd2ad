package account

import (
	"context"
	"sync"

	"github.com/dmitrymomot/anilink/pkg/pocketbase"
)

// Patch is a partial update of the signed-in account. Empty fields are
// omitted from the request.
type Patch struct {
	EmailVisibility *bool  `json:"emailVisibility,omitempty"`
	OldPassword     string `json:"oldPassword,omitempty"`
	Password        string `json:"password,omitempty"`
	PasswordConfirm string `json:"passwordConfirm,omitempty"`
}

// UserStore holds the LocalUserView of one browser.
type UserStore struct {
	records *pocketbase.RecordService
	mapper  Mapper

	mu   sync.RWMutex
	user *User
}

// NewUserStore returns an empty store that updates through records.
func NewUserStore(records *pocketbase.RecordService, mapper Mapper) *UserStore {
	return &UserStore{records: records, mapper: mapper}
}

// Save replaces the loaded user.
func (s *UserStore) Save(u User) {
	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()
}

// Clear forgets the loaded user.
func (s *UserStore) Clear() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
}

// Load projects data into a User and makes it the loaded user.
func (s *UserStore) Load(data pocketbase.AuthData) User {
	u := s.mapper.Map(data)
	s.Save(u)
	return u
}

// Current returns a copy of the loaded user, or nil.
func (s *UserStore) Current() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// HasEdited reports whether u differs from the loaded user.
func (s *UserStore) HasEdited(u User) bool {
	current := s.Current()
	return current == nil || *current != u
}

// Update saves patch on the loaded user's record and reloads the view from
// the returned record.
func (s *UserStore) Update(ctx context.Context, patch Patch) (*User, error) {
	current := s.Current()
	if current == nil {
		return nil, newAuthError(OpUpdate, ErrNoUser)
	}

	rec, err := s.records.Update(ctx, current.ID, patch)
	if err != nil {
		return nil, newAuthError(OpUpdate, err)
	}

	u := s.mapper.Map(pocketbase.AuthData{Token: current.Token, Record: rec})
	s.Save(u)
	return &u, nil
}
