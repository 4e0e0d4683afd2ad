package anilist

import "golang.org/x/oauth2"

const (
	AuthURL    = "https://anilist.co/api/v2/oauth/authorize"
	TokenURL   = "https://anilist.co/api/v2/oauth/token"
	GraphQLURL = "https://graphql.anilist.co"
)

// Endpoint is AniList's OAuth2 endpoint. AniList expects client credentials
// in the request body.
var Endpoint = oauth2.Endpoint{
	AuthURL:   AuthURL,
	TokenURL:  TokenURL,
	AuthStyle: oauth2.AuthStyleInParams,
}

// AuthorizeURL returns
// AuthURL?client_id=…&redirect_uri=…&response_type=code&state=…
// with every value query-encoded.
func AuthorizeURL(clientID, redirectURI, state string) string {
	conf := oauth2.Config{
		ClientID:    clientID,
		RedirectURL: redirectURI,
		Endpoint:    Endpoint,
	}
	return conf.AuthCodeURL(state)
}
