// Package orchestrator drives the reel download flow as an explicit
// finite-state machine.
//
// The flow is: idle -> fetching_info -> preview -> downloading ->
// saving -> success, with error reachable from every network or device
// step. Retry replays the failed step; editing the input from a terminal
// state silently returns to idle so a stale preview is never downloaded.
// A background server health check updates a display-only connectivity
// flag and never blocks the main flow.
//
// The orchestrator owns no I/O of its own. The backend client, media
// fetcher, gallery, and cookie source are injected, which keeps the state
// transitions testable with stubs.
package orchestrator
