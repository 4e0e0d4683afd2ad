package linking

import "errors"

var (
	ErrInvalidState     = errors.New("invalid state parameter")
	ErrTokenExchange    = errors.New("token exchange failed")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotConfigured    = errors.New("missing AniList configuration")
)
