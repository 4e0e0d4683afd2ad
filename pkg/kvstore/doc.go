// Package kvstore is the durable key-value area each browser workspace
// writes to: the persisted PocketBase auth blob, the pending OAuth state and
// similar single-purpose entries.
//
// Store is deliberately small (string keys, string values) so a memory map
// and a Redis database are interchangeable. Scoped namespaces a shared
// backend per browser so fixed key names never collide between browsers.
package kvstore
