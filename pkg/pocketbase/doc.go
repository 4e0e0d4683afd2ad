// Package pocketbase is a small client for the PocketBase REST API covering
// what the service needs from an auth collection: password and OAuth2
// authentication, token refresh, record create/update/delete, email change
// requests and file URLs.
//
// Every Client owns an AuthStore holding the current token and auth record.
// Successful auth calls save into it, updating the authenticated record
// refreshes it, deleting that record clears it. Other packages never poll the
// store; they register OnChange listeners, which run synchronously after
// every transition:
//
//	store := pocketbase.NewAuthStore(pocketbase.WithStorage(area))
//	pb := pocketbase.New(cfg.URL, pocketbase.WithAuthStore(store))
//
//	unsubscribe := store.OnChange(func(token string, rec *pocketbase.Record) {
//	    // re-publish
//	}, true)
//	defer unsubscribe()
//
//	data, err := pb.Collection("user").AuthWithPassword(ctx, email, password)
//
// Token validity follows the PocketBase SDK: a token is valid while its
// unverified JWT "exp" claim is in the future.
package pocketbase
