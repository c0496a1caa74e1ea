// Package mxnettest provides an in-process, loopback MX server for
// exercising pkg/mxnet's Server against real socket I/O without a
// dependency on an actual MX-protocol peer. It builds and parses message
// headers itself rather than using pkg/mxnet's header code, so a bug in
// the client's header framing shows up as a test failure here; value
// bodies and envelopes go through pkg/mxnet/wire, the same codecs the
// client uses.
package mxnettest

import (
	"encoding/binary"
	"io"
	"net"
	"sync"

	"github.com/openmx/mxnet/pkg/mxnet"
	"github.com/openmx/mxnet/pkg/mxnet/wire"
)

const mxMagic uint32 = 0x4d582020
const headerLength = 28

// Field is one named record.field the fake server exposes.
type Field struct {
	RecordHandle uint32
	FieldHandle  uint32
	Datatype     wire.Datatype
	Dims         []int
	Value        *wire.Value
}

// Server is a minimal, single-connection-at-a-time fake MX server. It
// answers the bring-up option exchange, GET/PUT_ARRAY_BY_NAME,
// GET_NETWORK_HANDLE and GET_FIELD_TYPE against a small in-memory field
// table, and can push unsolicited CALLBACK messages via SendCallback.
type Server struct {
	ln net.Listener

	mu          sync.Mutex
	fields      map[string]*Field
	format      wire.Format
	nextHandle  uint32
	nextCBID    uint32
	conn        net.Conn
	connWriteMu sync.Mutex
	closed      bool
}

// Listen starts a fake server on network/address ("tcp", "127.0.0.1:0" or
// "unix", a socket path).
func Listen(network, address string) (*Server, error) {
	ln, err := net.Listen(network, address)
	if err != nil {
		return nil, err
	}
	return &Server{
		ln:         ln,
		fields:     make(map[string]*Field),
		format:     wire.FormatASCII,
		nextHandle: 1,
		nextCBID:   0x80000001,
	}, nil
}

// Addr returns the listener's address string.
func (s *Server) Addr() string { return s.ln.Addr().String() }

// SetField installs or replaces a field's current value and shape.
func (s *Server) SetField(name string, dt wire.Datatype, dims []int, v *wire.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.fields[name]
	if !ok {
		f = &Field{RecordHandle: s.nextHandle, FieldHandle: s.nextHandle + 1}
		s.nextHandle += 2
		s.fields[name] = f
	}
	f.Datatype, f.Dims, f.Value = dt, dims, v
}

// Close stops accepting connections and closes the current one, if any.
func (s *Server) Close() error {
	s.mu.Lock()
	s.closed = true
	conn := s.conn
	s.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
	return s.ln.Close()
}

// Serve accepts connections until Close is called, handling each
// sequentially (the fake models one client at a time).
func (s *Server) Serve() error {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return nil
			}
			return err
		}
		s.mu.Lock()
		s.conn = conn
		s.mu.Unlock()
		s.handleConn(conn)
	}
}

// SendCallback pushes an unsolicited CALLBACK message for name with the
// given id (must have its top bit set) and new value, using this
// server's currently negotiated format.
func (s *Server) SendCallback(name string, callbackID uint32, v *wire.Value) error {
	s.mu.Lock()
	f := s.fields[name]
	format := s.format
	conn := s.conn
	s.mu.Unlock()
	if f == nil || conn == nil {
		return nil
	}
	codec, err := wire.CodecFor(format)
	if err != nil {
		return err
	}
	buf := make([]byte, 4096)
	n, err := codec.Encode(v, buf, false)
	if err != nil {
		return err
	}
	return s.writeMessage(conn, mxnet.OpCallback, 0, uint32(f.Datatype), callbackID, buf[:n])
}

// DropConnection closes the current client connection, if any, without
// stopping the listener. The client's next RPC observes a lost
// connection and reconnects against a fresh Accept.
func (s *Server) DropConnection() error {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	for {
		opcode, statusCode, dataType, msgID, body, err := s.readMessage(conn)
		if err != nil {
			return
		}
		s.dispatch(conn, opcode, statusCode, dataType, msgID, body)
	}
}

func (s *Server) readMessage(conn net.Conn) (opcode, statusCode, dataType, msgID uint32, body []byte, err error) {
	lead := make([]byte, 12)
	if _, err = io.ReadFull(conn, lead); err != nil {
		return
	}
	if binary.BigEndian.Uint32(lead[0:4]) != mxMagic {
		err = io.ErrUnexpectedEOF
		return
	}
	hlen := binary.BigEndian.Uint32(lead[4:8])
	mlen := binary.BigEndian.Uint32(lead[8:12])
	rest := make([]byte, int(hlen)-12+int(mlen))
	if _, err = io.ReadFull(conn, rest); err != nil {
		return
	}
	opcode = binary.BigEndian.Uint32(rest[0:4])
	statusCode = binary.BigEndian.Uint32(rest[4:8])
	if hlen >= 28 {
		dataType = binary.BigEndian.Uint32(rest[8:12])
		msgID = binary.BigEndian.Uint32(rest[12:16])
		body = rest[int(hlen)-12:]
	} else {
		body = rest[int(hlen)-12:]
	}
	return
}

func (s *Server) writeMessage(conn net.Conn, opcode, statusCode, dataType, msgID uint32, body []byte) error {
	s.connWriteMu.Lock()
	defer s.connWriteMu.Unlock()

	buf := make([]byte, headerLength+len(body))
	binary.BigEndian.PutUint32(buf[0:4], mxMagic)
	binary.BigEndian.PutUint32(buf[4:8], headerLength)
	binary.BigEndian.PutUint32(buf[8:12], uint32(len(body)))
	binary.BigEndian.PutUint32(buf[12:16], opcode)
	binary.BigEndian.PutUint32(buf[16:20], statusCode)
	binary.BigEndian.PutUint32(buf[20:24], dataType)
	binary.BigEndian.PutUint32(buf[24:28], msgID)
	copy(buf[28:], body)
	_, err := conn.Write(buf)
	return err
}

func (s *Server) errorReply(conn net.Conn, opcode uint32, msgID uint32, kind mxnet.ErrorKind, message string) {
	_ = s.writeMessage(conn, opcode|mxnet.ResponseFlag, uint32(kind), 0, msgID, []byte(message))
}
