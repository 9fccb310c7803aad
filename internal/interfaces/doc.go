// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - presets.Store: presets and knobs with transactions (internal/presets/store.go)
//   - auth.UserStore: user accounts and login bookkeeping (internal/auth/service.go)
//   - http.Pinger: database health (internal/http/stores.go)
//
// ## Workflow Interfaces
//
//   - http.PresetWorkflow: the preset editing workflow as used by handlers (internal/http/stores.go)
//   - presets.Exporter: writes the firmware artifact after a save (internal/presets/store.go)
//   - http.ArtifactStore, tasks.ArtifactStore: read and prune generated firmware files
//
// ## Audit Interfaces
//
//   - presets.Auditor, auth.Auditor, tasks.CleanupReporter: non-blocking event recording
//   - http.AuditReader: paginated event listing for the audit API
//   - tasks.AuditEventCleaner: retention based deletion
//
// ## Background Task Interfaces
//
//   - http.TaskQueue, scheduler.Enqueuer: enqueue tasks on the backlite queue
//   - tasks.PresetLister: ids of presets that still exist
//
// # Adding a New Background Task
//
//  1. Define the task type in internal/tasks/:
//
//     type RebuildArtifactsTask struct{}
//
//     func (t RebuildArtifactsTask) Config() backlite.QueueConfig {
//         return backlite.QueueConfig{Name: "rebuild_artifacts", MaxAttempts: 1}
//     }
//
//  2. Write the processor and queue constructor, taking only the interfaces it needs
//
//  3. Add it to tasks.Types and tasks.NewTask so the API can trigger it
//
//  4. Register the queue in entrypoint.go
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
