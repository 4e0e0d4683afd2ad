package redis

import "time"

// Config describes the Redis connection. An empty ConnectionURL means the
// service runs with in-memory storage.
type Config struct {
	ConnectionURL  string        `env:"REDIS_URL"`                              // redis://:password@localhost:6379/0
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`    // connection attempts before giving up
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`   // pause between attempts
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"` // overall connect deadline
	KeyPrefix      string        `env:"REDIS_KEY_PREFIX" envDefault:"anilink"`  // namespace for every key
	KeyTTL         time.Duration `env:"REDIS_KEY_TTL" envDefault:"720h"`        // expiry refreshed on every write
}
