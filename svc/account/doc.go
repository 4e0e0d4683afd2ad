// Package account signs browsers in and out of PocketBase and keeps the
// LocalUserView (User) derived from the session.
//
// Authenticator covers password login, Google/GitHub login through
// PocketBase's OAuth2 providers, account creation, logout, silent token
// refresh, email change and account deletion. Every successful sign-in is
// projected through MapAuthDataToUser into the UserStore; every failure is
// returned as *AuthError whose message is safe to show to the user.
//
// AuthRefresh and Logout never fail: an expired or rejected session simply
// ends, leaving the browser signed out.
package account
