package pocketbase

import (
	"context"
	"net/http"
	"net/url"
)

// RecordService wraps the record and auth endpoints of one collection.
type RecordService struct {
	client     *Client
	collection string
}

func (s *RecordService) path(suffix string) string {
	return "/api/collections/" + url.PathEscape(s.collection) + suffix
}

// AuthWithPassword authenticates with identity (usually email) and password.
func (s *RecordService) AuthWithPassword(ctx context.Context, identity, password string) (*AuthData, error) {
	body := map[string]string{
		"identity": identity,
		"password": password,
	}
	return s.auth(ctx, s.path("/auth-with-password"), body)
}

// ListAuthMethods returns the enabled auth methods, including a fresh
// state and PKCE verifier for every OAuth2 provider.
func (s *RecordService) ListAuthMethods(ctx context.Context) (*AuthMethods, error) {
	var out AuthMethods
	if err := s.client.send(ctx, http.MethodGet, s.path("/auth-methods"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AuthWithOAuth2Code completes a provider login started from an
// AuthProvider returned by ListAuthMethods.
func (s *RecordService) AuthWithOAuth2Code(ctx context.Context, provider, code, codeVerifier, redirectURL string) (*AuthData, error) {
	body := map[string]string{
		"provider":     provider,
		"code":         code,
		"codeVerifier": codeVerifier,
		"redirectURL":  redirectURL,
	}
	return s.auth(ctx, s.path("/auth-with-oauth2"), body)
}

// AuthRefresh exchanges the current token for a new one.
func (s *RecordService) AuthRefresh(ctx context.Context) (*AuthData, error) {
	return s.auth(ctx, s.path("/auth-refresh"), nil)
}

func (s *RecordService) Create(ctx context.Context, body any) (*Record, error) {
	var out Record
	if err := s.client.send(ctx, http.MethodPost, s.path("/records"), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update patches a record. When it is the authenticated record the auth
// store is refreshed with the result.
func (s *RecordService) Update(ctx context.Context, id string, body any) (*Record, error) {
	var out Record
	if err := s.client.send(ctx, http.MethodPatch, s.path("/records/"+url.PathEscape(id)), body, &out); err != nil {
		return nil, err
	}

	store := s.client.authStore
	if s.isAuthRecord(id) {
		store.Save(ctx, store.Token(), &out)
	}
	return &out, nil
}

// Delete removes a record. Deleting the authenticated record clears the
// auth store.
func (s *RecordService) Delete(ctx context.Context, id string) error {
	if err := s.client.send(ctx, http.MethodDelete, s.path("/records/"+url.PathEscape(id)), nil, nil); err != nil {
		return err
	}
	if s.isAuthRecord(id) {
		s.client.authStore.Clear(ctx)
	}
	return nil
}

// RequestEmailChange sends a confirmation email to newEmail.
func (s *RecordService) RequestEmailChange(ctx context.Context, newEmail string) error {
	body := map[string]string{"newEmail": newEmail}
	return s.client.send(ctx, http.MethodPost, s.path("/request-email-change"), body, nil)
}

func (s *RecordService) auth(ctx context.Context, path string, body any) (*AuthData, error) {
	var out AuthData
	if err := s.client.send(ctx, http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	s.client.authStore.Save(ctx, out.Token, out.Record)
	return &out, nil
}

func (s *RecordService) isAuthRecord(id string) bool {
	current := s.client.authStore.Record()
	if current == nil || current.ID != id {
		return false
	}
	return current.CollectionName == "" || current.CollectionName == s.collection || current.CollectionID == s.collection
}
