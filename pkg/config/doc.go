// Package config loads typed configuration structs from environment variables.
//
// Structs are described with caarlos0/env tags. The first call to Load or
// Parse also reads a .env file from the working directory when one exists;
// variables already present in the process environment win.
//
//	type Config struct {
//		BaseURL string `env:"CHECKOUT_BASE_URL,required"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// Load caches the result per struct type, so repeated calls for the same type
// are cheap and always return the same values. Parse skips the cache.
package config
