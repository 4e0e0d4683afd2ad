// Package session mirrors the auth state of a PocketBase auth store into a
// read-only Session that the rest of the service observes.
//
// The Bridge never calls PocketBase and never mutates the source; it only
// listens to it. Initialize is safe to call any number of times and never
// fails: a panicking source is logged and leaves the previous mirror intact.
package session
