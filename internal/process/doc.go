// Package process launches external OS processes, streams their output,
// enforces timeouts and buffer limits, and multiplexes many execution
// requests over a bounded number of concurrent processes.
//
// The package offers three levels of abstraction:
//
// Spawn and SpawnCommand start a process and return a Handle:
//   - Captured stdin/stdout/stderr, merged environment, own process group
//   - Timeout timer that kills with the configured signal
//   - Incremental output chunks via an OutputHandler
//   - Wait resolves exactly once, launch failures included
//
// Execute and ExecuteSync run a command to completion:
//   - Default timeout 30s, default output cap 10MiB (truncated, not failed)
//   - Launch failures normalized into the Result, never returned as faults
//
// Pool bounds concurrent launches:
//   - Execute queues FIFO when all slots are busy
//   - Spawn fails fast at capacity instead of queueing
//   - Shutdown discards the queue and abandons running children
//
// Example usage with Pool:
//
//	pool := process.NewPool(&process.PoolOptions{MaxConcurrent: 4})
//	defer pool.Shutdown()
//	res, err := pool.Execute("grep -rn TODO docs", nil)
package process
