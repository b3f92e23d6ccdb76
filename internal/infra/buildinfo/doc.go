// Package buildinfo exposes build-time version information injected
// via ldflags:
//
//   - Version: semantic version (e.g., "1.0.0")
//   - Commit: git commit hash
//   - BuildTime: build timestamp
//   - GoVersion: Go compiler version
//
// Usage:
//
//	go build -ldflags "-X github.com/hybriddb/hybriddb/internal/infra/buildinfo.Version=1.0.0 -X github.com/hybriddb/hybriddb/internal/infra/buildinfo.Commit=abc123"
package buildinfo
