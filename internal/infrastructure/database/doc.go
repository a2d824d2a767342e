// Package database provides SQLite connectivity for the catalog service.
//
// This package manages:
//   - Database connection with WAL mode for concurrent access
//   - Schema migrations loaded from an fs.FS (see package migrations)
//   - Connection lifecycle and health checks
//
// Security Considerations:
//   - All queries use parameterised statements
//   - Database file permissions are set to 0600 (owner read/write only)
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    log.Fatal(err)
//	}
//
// Migration Strategy:
//
// Migrations are additive-only:
//   - New columns must be NULLABLE or have DEFAULT values
//   - Each migration file has both .up.sql and .down.sql
package database
