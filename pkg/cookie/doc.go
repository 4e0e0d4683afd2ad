// Package cookie manages HMAC-signed HTTP cookies.
//
// A Manager is built from one or more secrets of at least 32 characters.
// The first secret signs new cookies; every secret is tried when verifying,
// so secrets can be rotated without invalidating live browsers.
//
//	m, err := cookie.New([]string{secret}, cookie.WithSecure(true))
//	_ = m.SetSigned(w, "anilink_browser", browserID)
//	id, err := m.GetSigned(r, "anilink_browser")
//
// Signed values are encoded as base64url(value) + "|" + base64url(hmac).
// Tampered or malformed values yield ErrInvalidSignature or ErrInvalidFormat.
package cookie
