// Package config loads application configuration from environment variables
// into annotated structs.
//
// It combines github.com/joho/godotenv for optional .env files with
// github.com/caarlos0/env/v11 for tag-driven parsing. Every package in this
// module that needs configuration declares its own Config struct with `env`
// tags and a DefaultConfig constructor; config.Load fills such a struct from
// the environment:
//
//	var cfg session.Config
//	if err := config.Load(&cfg); err != nil {
//	    log.Fatalf("parsing env: %v", err)
//	}
//
// MustLoad panics instead of returning the error, for configuration the
// process cannot run without. LoadEnv loads named .env files explicitly when
// the default working-directory lookup is not enough.
//
// Errors are sentinel values comparable with errors.Is: ErrParsingConfig,
// ErrLoadingEnv and ErrNilPointer.
package config
