// Package shutdown handles process termination signals:
//
//   - Signal handling (SIGINT, SIGTERM)
//   - A shutdown timeout carried as the deadline of the context passed to cleanup callbacks
//   - Cleanup callback registration in reverse-registration order
//
// Usage:
//
//	h := shutdown.NewHandler(5 * time.Second)
//	h.OnShutdown(func(ctx context.Context) error { return db.Close() })
//	h.Wait()
package shutdown
