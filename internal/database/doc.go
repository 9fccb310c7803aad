// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── presets/         # Preset and knob persistence, unit of work
//	├── users/           # User management
//	└── audit/           # Audit event storage and retention
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	db, err := database.NewDatabase("./synthage.db", database.Options{})
//
//	presetsRepo := presets.NewRepository(db.DB)
//	usersRepo := users.NewRepository(db.DB)
//
//	err = presetsRepo.Transaction(ctx, func(tx presets.Store) error {
//		preset, err := tx.GetPreset(ctx, id)
//		...
//	})
//
// # Interface Implementations
//
//   - presets.Repository: implements the workflow's presets.Store
//   - audit.Repository: implements tasks.AuditEventCleaner via audit.Service
//
// Compile-time checks live in internal/interfaces.
package database
