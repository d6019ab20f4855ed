// Package kv opens codb stores from configuration.
//
// High-level behavior:
//   - LoadOptions layers defaults, a YAML file, CODB_* environment variables
//     and explicit overrides into Options, then validates them.
//   - Open builds the selected backend (memory or disk) behind the store.DB contract.
//     When a logger or a Prometheus registerer is supplied, the backend is wrapped
//     in an InstrumentedDB that counts operations, times them and logs failures.
//   - ClassifyError maps store errors onto stable names used by the CLI and metrics.
package kv
