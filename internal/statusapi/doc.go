// Package statusapi serves a read-only HTTP introspection API over an
// mxctl process's open mxnet.Server connections: which servers are
// connected, what they negotiated, and Prometheus metrics for the RPCs
// they've carried. It has no write path into the protocol and is
// disabled by default.
package statusapi
