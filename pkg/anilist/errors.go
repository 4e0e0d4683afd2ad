package anilist

import "errors"

var (
	// ErrEmptyToken is returned when Viewer is called without an access token.
	ErrEmptyToken = errors.New("anilist: empty access token")
	// ErrGraphQL wraps errors reported in the GraphQL "errors" array.
	ErrGraphQL = errors.New("anilist: graphql error")
	// ErrNoViewer is returned when the response carries no Viewer object.
	ErrNoViewer = errors.New("anilist: viewer missing from response")
)
