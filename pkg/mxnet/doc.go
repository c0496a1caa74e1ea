// Package mxnet implements a client for the MX network protocol: a
// length-prefixed, message-typed, versioned RPC and pub-sub transport for
// reading and writing named fields on a remote record database, with
// option/attribute negotiation and server-initiated value-change
// callbacks.
package mxnet
