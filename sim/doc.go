// Package sim provides the broadcast propagation engine.
//
// # Reading Guide
//
// Start with these files to understand the engine:
//   - transmission.go: the step state machine (pick, test, persist, exhaust)
//   - simulation.go: lazy driver that caches step results and history
//   - rng.go: per-subsystem RNG isolation for reproducible runs
//
// # Architecture
//
// The sim package holds the engine; its collaborators live in sub-packages:
//   - sim/graph/: attributed directed/undirected graph store
//   - sim/selector/: scheduling policies for pending candidate edges (fifo, random, delayed)
//   - sim/rv/: random variables for strengths, lags, batch sizes, persistence
//   - sim/scenario/: YAML scenario files and building simulations from them
//   - sim/ensemble/: running independent replicates in parallel and summarizing them
//
// # Step algorithm
//
// Each Transmission.Step pulls a batch from the selector, tests every edge
// whose target has not been reached, queues the outbound edges of accepted
// targets, and re-queues the outbound edges of nodes still persisting. The
// transmission is exhausted by the first step whose selector was empty and
// which reached no node.
//
// Everything here is single-threaded. Independent simulations share no state,
// so an external runner may step them on separate goroutines.
package sim
