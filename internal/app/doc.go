// Package app is the composition root for storefront.
//
// # Overview
//
// LoadConfig and Build turn command-line options into a Runtime: the API
// client, the store, the optimistic ledger and the remote coordinator, all
// wired together. Every command starts from a Runtime; Run additionally
// starts the poller and the TUI.
//
// # Data Flow
//
//	Run()
//	 ├── LoadConfig()        config file + env + flags
//	 ├── OpenLog()           log output goes to a file while the TUI runs
//	 ├── Build()             client, store, ledger, coordinator, tracing
//	 └── errgroup
//	      ├── RunPoller()    Refresh every interval, backoff on failure
//	      └── ui.Run()       blocks until the user quits
//
// When the UI returns, the poller's context is cancelled and Run waits for
// it to exit.
//
// # Polling
//
// RunPoller refreshes categories and products immediately and then every
// poll interval. Each consecutive failure doubles the wait, capped at five
// minutes; a success resets it.
package app
