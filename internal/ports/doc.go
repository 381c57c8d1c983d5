// Package ports defines the driven-side interfaces of the renewal core.
// The watcher state machine depends only on these contracts, so it can be
// exercised against in-memory fakes while production wires the filesystem
// and subprocess adapters.
package ports
