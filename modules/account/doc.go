// Package account is the HTTP surface of the service: sign-in, sign-up and
// sign-out, Google/GitHub login through PocketBase, AniList linking, the
// token exchange endpoint, toasts and the signed-in account.
//
// Every route except the token exchange runs inside the caller's Workspace,
// selected by a signed browser cookie. Routes under /api/me sit behind Guard.
package account
