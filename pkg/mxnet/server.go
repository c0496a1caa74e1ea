package mxnet

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// ConnectionStatus reports where a Server sits in its connection
// lifecycle.
type ConnectionStatus int

const (
	StatusDisconnected ConnectionStatus = iota
	StatusConnected
	StatusConnectionLost
	StatusReconnected
)

func (s ConnectionStatus) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnected:
		return "connected"
	case StatusConnectionLost:
		return "connection_lost"
	case StatusReconnected:
		return "reconnected"
	default:
		return "unknown"
	}
}

// ServerOptions configures how a Server dials and negotiates with its
// peer.
type ServerOptions struct {
	// RequestedFormat is the data format the client asks the server to
	// use; FormatUnknown negotiates one, choosing RAW when the peer's
	// native format and word size match ours and XDR otherwise.
	RequestedFormat DataFormat
	// Use64BitLongs requests the server negotiate 8-byte LONG/ULONG/HEX
	// elements instead of the default 4-byte native width.
	Use64BitLongs bool
	// Timeout bounds every blocking RPC (dial, send, waitFor).
	Timeout time.Duration
	// Username and ProgramName are reported to the server via
	// SET_CLIENT_INFO during bring-up.
	Username    string
	ProgramName string
	// DefaultPort is used when an Address gives no explicit port.
	DefaultPort int
	// ReconnectPollInterval is the wait between reconnect attempts when a
	// connection is lost mid-session.
	ReconnectPollInterval time.Duration
	// MaxReconnectAttempts caps reconnect attempts; zero means retry
	// forever.
	MaxReconnectAttempts int
	// Metrics and Tracer, when non-nil, receive observability events for
	// every RPC this Server performs.
	Metrics Metrics
	Tracer  Tracer
}

// DefaultServerOptions returns conservative defaults: ASCII format,
// 32-bit longs, a five second timeout.
func DefaultServerOptions() ServerOptions {
	return ServerOptions{
		RequestedFormat:       FormatASCII,
		Timeout:               5 * time.Second,
		ProgramName:           "mxnet",
		DefaultPort:           9727,
		ReconnectPollInterval: time.Second,
	}
}

// remoteVersion is the MX client-library version a connected peer
// reports, used to decide protocol-compatibility shims.
type remoteVersion struct {
	Version int // e.g. 2001000 for "2.1.0"
	Time    int64
}

// Server is the C6 connection manager plus the state every other
// component (C1, C5, C7, C8, C9) needs to share about one TCP or
// Unix-domain connection to a remote MX server process.
type Server struct {
	address *Address
	opts    ServerOptions

	connMu sync.Mutex
	conn   net.Conn
	status atomic.Int32 // ConnectionStatus

	buffer *messageBuffer

	headerLength    int
	shortHeaderPeer bool // peer uses the legacy 20-byte header (no DATA_TYPE/MESSAGE_ID)
	dataFormat      DataFormat
	use64BitLongs   bool
	remote          remoteVersion

	rpcLock sync.Mutex // serializes one in-flight request per connection

	lastMessageID atomic.Uint32

	generation             atomic.Uint64 // bumped on every successful (re)connect
	supportsNetworkHandles atomic.Bool

	fieldsMu sync.Mutex
	fields   map[string]*NetworkField

	callbacks *callbackRegistry

	callbackInProgress atomic.Bool

	connectionUUID string

	metrics Metrics
	tracer  Tracer
}

// newServer allocates a Server for addr with no connection yet open.
func newServer(addr *Address, opts ServerOptions) *Server {
	s := &Server{
		address:        addr,
		opts:           opts,
		buffer:         newMessageBuffer(),
		headerLength:   HeaderLengthCurrent,
		dataFormat:     opts.RequestedFormat,
		use64BitLongs:  opts.Use64BitLongs,
		fields:         make(map[string]*NetworkField),
		callbacks:      newCallbackRegistry(),
		connectionUUID: uuid.NewString(),
		metrics:        opts.Metrics,
		tracer:         opts.Tracer,
	}
	s.supportsNetworkHandles.Store(true)
	s.status.Store(int32(StatusDisconnected))
	return s
}

// Status reports the Server's current connection lifecycle state.
func (s *Server) Status() ConnectionStatus { return ConnectionStatus(s.status.Load()) }

// Address returns the parsed address this Server was opened with.
func (s *Server) Address() *Address { return s.address }

// ConnectionID returns a stable identifier for this Server's connection,
// for use as a correlation tag in logs, metrics and traces. It does not
// change across a reconnect.
func (s *Server) ConnectionID() string { return s.connectionUUID }

// DataFormat returns the data format currently negotiated on this
// connection.
func (s *Server) DataFormat() DataFormat { return s.dataFormat }

// Use64BitLongs reports whether this connection negotiated 8-byte
// LONG/ULONG/HEX elements.
func (s *Server) Use64BitLongs() bool { return s.use64BitLongs }

// Generation returns the number of times this Server has successfully
// (re)connected. It starts at zero before the first connect.
func (s *Server) Generation() uint64 { return s.generation.Load() }

// RemoteVersion returns the MX client-library version the peer reported
// during bring-up, as an integer of the form 2001000 for "2.1.0". It is
// zero until a connection has been established at least once.
func (s *Server) RemoteVersion() int { return s.remote.Version }

// CallbackCount returns the number of callbacks currently registered on
// this Server.
func (s *Server) CallbackCount() int { return s.callbacks.count() }

// SupportsNetworkHandles reports whether the peer has been observed to
// implement GET_NETWORK_HANDLE. It starts optimistic (true) and flips to
// false the first time the peer replies NOT_YET_IMPLEMENTED to a handle
// resolution, so the result is only meaningful after at least one field
// access has been attempted.
func (s *Server) SupportsNetworkHandles() bool { return s.supportsNetworkHandles.Load() }

// Open resolves addr through dir, reusing an existing connection to the
// same endpoint if one is registered, or dialing and bringing up a new
// one otherwise. An identifier with no host names localhost.
func Open(ctx context.Context, dir *Directory, id string, opts ServerOptions) (*Server, error) {
	addr, err := ParseIdentifier(id)
	if err != nil {
		return nil, err
	}
	if opts.DefaultPort == 0 {
		opts.DefaultPort = DefaultServerOptions().DefaultPort
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultServerOptions().Timeout
	}
	if addr.Host == "" {
		addr.Host = "localhost"
	}

	if s, ok := dir.lookup(addr, opts.DefaultPort); ok {
		return s, nil
	}

	s := newServer(addr, opts)
	if err := s.bringUp(ctx); err != nil {
		return nil, err
	}
	dir.register(addr, opts.DefaultPort, s)
	return s, nil
}

// Close tears down the connection and releases the Server's buffer.
func (s *Server) Close() error {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	s.status.Store(int32(StatusDisconnected))
	s.buffer.free()
	if s.conn != nil {
		err := s.conn.Close()
		s.conn = nil
		return err
	}
	return nil
}

// Field returns the cached NetworkField handle for name, creating the
// entry on first use. The handle itself is resolved lazily on first
// access.
func (s *Server) Field(name string) *NetworkField {
	s.fieldsMu.Lock()
	defer s.fieldsMu.Unlock()
	f, ok := s.fields[name]
	if !ok {
		f = &NetworkField{server: s, name: name}
		s.fields[name] = f
	}
	return f
}
