// Package pg wires the shared PostgreSQL pool used by the durable session
// and entitlement stores.
//
// Connect builds a pgxpool.Pool from environment-driven Config, retrying
// until the database answers a ping. Migrate applies the module's embedded
// goose migrations on startup:
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	if err := pg.Migrate(ctx, pool, migrations.FS, cfg, log); err != nil {
//	    return err
//	}
//
// The error predicates (IsNotFound, IsDuplicateKey, IsForeignKeyViolation)
// classify driver errors so callers never match on SQLSTATE strings.
package pg
