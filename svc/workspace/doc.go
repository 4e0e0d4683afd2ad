// Package workspace builds and caches the per-browser service graph.
//
// Each browser id gets its own Workspace: a PocketBase client and auth store
// persisted in the browser's slice of the key-value store, the session Bridge,
// the user view, the Authenticator, the AniList Linker and a toast queue.
// A Workspace is built once, on first use, by restoring the persisted
// session, starting the Bridge and refreshing the session. Idle workspaces are
// evicted by Sweep; their persisted state stays in the key-value store so the
// browser picks up where it left off.
package workspace
