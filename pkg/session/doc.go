// Package session bounds how many devices may hold a live session for one
// account at the same time, enforced through a heartbeat/eviction protocol
// against a durable store shared by all application instances.
//
// Each account may hold at most Config.MaxSessions concurrent sessions
// (default 3). Registering a session for an account already at the bound
// never fails because of the limit: the store atomically evicts the session
// with the oldest heartbeat before inserting the new one, so two devices
// registering in the same instant cannot together exceed the bound.
//
// Clients drive liveness with a fixed-interval heartbeat. A heartbeat for a
// session that another device has already evicted is a silent no-op, and
// Remove is idempotent: logout, navigation-away and unload may all fire for
// the same session. Sessions whose heartbeat goes stale (crash, network
// loss) are reclaimed by the backing store or a Reaper worker, never by a
// connected client.
//
// # Usage
//
//	registry := session.New(session.WithStore(store))
//
//	// At login: registers and starts the heartbeat loop.
//	handle, err := registry.Start(ctx, accountID, tenantID, sessionID)
//	if err != nil { ... }
//
//	// At logout / teardown: stops the loop, best-effort removal.
//	handle.Stop()
//
// Registry.Close stops every live handle and is intended to be wired into
// process shutdown.
//
// Three stores ship with the package: an in-memory store for tests and
// single-instance use, a Redis store (register-or-evict as a Lua script)
// and a PostgreSQL store (advisory-lock transaction).
package session
