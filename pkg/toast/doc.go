// Package toast keeps the short-lived, user-visible notifications of one
// browser. Each toast is removed when dismissed or once its lifetime
// (three seconds unless configured otherwise) has elapsed since it was first
// listed.
package toast
