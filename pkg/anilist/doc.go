// Package anilist holds the AniList OAuth2 endpoint and a GraphQL client for
// the authenticated viewer's profile.
//
// AniList implements the plain authorization-code grant: the browser is sent
// to AuthorizeURL, AniList redirects back with ?code=, and the code is
// exchanged (server side, with the client secret) at Endpoint.TokenURL.
// Viewer then reads the profile with the resulting bearer token.
package anilist
