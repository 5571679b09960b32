// Package redis wires the shared Redis connection used by the session store.
//
// Connect parses the connection URL, retries until the server answers PING
// or the configured timeout elapses, and returns a ready client. Config is
// loaded from the environment through pkg/config:
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	store := session.NewRedisStore(client)
//
// Healthcheck produces a readiness probe over an established client.
package redis
