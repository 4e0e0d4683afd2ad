// Package config loads env-tagged structs.
//
// Each package that needs configuration declares its own struct with
// caarlos0/env tags; the binary loads them through Load, which reads a
// .env file once (if present) and caches the parsed value per type:
//
//	var cfg exchange.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
package config
