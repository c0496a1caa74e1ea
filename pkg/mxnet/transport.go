package mxnet

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"time"
)

// dial opens the transport-level connection for addr: TCP for a
// host[@port], Unix-domain for "unix" or an absolute path.
func dial(ctx context.Context, addr *Address, defaultPort int, timeout time.Duration) (net.Conn, error) {
	network, target := addr.endpoint(defaultPort)
	if network == "" {
		return nil, NewError(ErrorKindIllegalArgument, "address %q has no host", addr.Raw)
	}
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, network, target)
	if err != nil {
		if isRefused(err) {
			return nil, WrapError(ErrorKindNetworkConnectionRefused, err, "connecting to %s", target)
		}
		return nil, WrapError(ErrorKindNetworkIO, err, "connecting to %s", target)
	}
	return conn, nil
}

func isRefused(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == "dial"
	}
	return false
}

func classifyIOError(err error) *Error {
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return WrapError(ErrorKindNetworkConnectionLost, err, "connection closed by peer")
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return WrapError(ErrorKindTimedOut, err, "network i/o timed out")
	}
	return WrapError(ErrorKindNetworkIO, err, "network i/o")
}

// sendMessage writes a full MX message (header + body) to conn, applying
// the per-call deadline.
func (s *Server) sendMessage(ctx context.Context, opcode uint32, statusCode uint32, dataType uint32, messageID uint32, body []byte) error {
	s.connMu.Lock()
	conn := s.conn
	s.connMu.Unlock()
	if conn == nil {
		return WrapError(ErrorKindNetworkConnectionLost, nil, "not connected")
	}

	total := s.headerLength + len(body)
	buf := s.buffer.ensure(total)

	h := &header{
		MessageLength: uint32(len(body)),
		MessageType:   opcode,
		StatusCode:    statusCode,
		DataType:      dataType,
		MessageID:     messageID,
	}
	n, err := encodeHeader(buf, h, s.headerLength)
	if err != nil {
		return err
	}
	copy(buf[n:total], body)

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
	} else if s.opts.Timeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(s.opts.Timeout))
	}
	if _, err := conn.Write(buf[:total]); err != nil {
		return classifyIOError(err)
	}
	return nil
}

// receiveMessage reads one full MX message from conn: it reads the three
// leading words (magic, header_length, message_length) first, grows the
// buffer to hold the declared header and body, then reads the remainder.
func (s *Server) receiveMessage(ctx context.Context, timeout time.Duration) (*header, []byte, error) {
	s.connMu.Lock()
	conn := s.conn
	s.connMu.Unlock()
	if conn == nil {
		return nil, nil, WrapError(ErrorKindNetworkConnectionLost, nil, "not connected")
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
	} else if timeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(timeout))
	}

	lead := s.buffer.ensure(12)[:12]
	if _, err := io.ReadFull(conn, lead); err != nil {
		return nil, nil, classifyIOError(err)
	}
	magic := binary.BigEndian.Uint32(lead[0:4])
	if magic != MXMagic {
		return nil, nil, WrapError(ErrorKindCorruptDataStructure, nil, "bad magic %#x", magic)
	}
	hlen := binary.BigEndian.Uint32(lead[4:8])
	if hlen != HeaderLengthCurrent && hlen != HeaderLengthLegacy {
		return nil, nil, WrapError(ErrorKindCorruptDataStructure, nil, "unsupported header length %d", hlen)
	}
	mlen := binary.BigEndian.Uint32(lead[8:12])

	total := int(hlen) + int(mlen)
	buf := s.buffer.ensure(total)
	copy(buf, lead)
	if _, err := io.ReadFull(conn, buf[12:total]); err != nil {
		return nil, nil, classifyIOError(err)
	}

	h, err := decodeHeader(buf[:hlen])
	if err != nil {
		return nil, nil, err
	}
	body := make([]byte, mlen)
	copy(body, buf[hlen:total])
	return h, body, nil
}
