// Package core holds the HTTP error classes and JSON helpers shared by every
// HTTP surface of the service.
package core
