// Package redis connects to Redis and exposes it as a kvstore.Store, so the
// per-browser key-value areas survive restarts and are shared by every
// replica of the service.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	store := redis.NewStorage(client, redis.WithKeyPrefix(cfg.KeyPrefix), redis.WithTTL(cfg.KeyTTL))
//
// Healthcheck adapts the client to httpserver.HealthCheckHandler.
package redis
