// Package linking attaches an AniList account to the signed-in PocketBase
// account through the OAuth authorization-code flow.
//
// BeginAuthorization stores a fresh CSRF state in the browser's key-value
// area and returns the AniList authorize URL. On the way back, Link consumes
// that state before anything else: a missing or different state fails with
// ErrInvalidState and no code is ever exchanged. A matching state continues
// with the code exchange, the AniList Viewer query and the update of the
// anilist_* fields on the account record, followed by a session refresh.
//
// CompleteAuthorization wraps Link for page-load callers: it reports the
// outcome as a toast and returns a bool instead of an error.
package linking
