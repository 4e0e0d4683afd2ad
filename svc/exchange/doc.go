// Package exchange is the server-trusted half of the AniList OAuth flow: it
// trades an authorization code for an access token using the confidential
// client secret, which never leaves this process.
//
// Service.Exchange is the operation, Service.Handle exposes it as
// POST {code, redirect_uri} -> {access_token, expires_in}, and Client calls
// that endpoint from the browser side. Missing input is a 400-class error;
// missing credentials and provider failures are 500-class errors.
package exchange
