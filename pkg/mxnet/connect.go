package mxnet

import (
	"context"
	"fmt"
	"math/bits"
	"os"
	"strings"
	"time"
	"unicode"
)

// legacyVersionRemap is the remapped client_version value MX reports for
// any peer whose real version falls in the range [legacyVersionRangeLow,
// legacyVersionRangeHigh) = [1006000, 2000000) - a
// numbering gap left by a mid-series renumbering of the client library
// that pre-2.0 peers never got a chance to round-trip correctly.
const (
	legacyVersionRangeLow  = 1006000
	legacyVersionRangeHigh = 2000000
	legacyVersionRemap     = 1005004
)

// wellKnownHeaderLengthField is an array guaranteed to exist on every MX
// database server, queried purely so its reply header tells us whether the
// peer speaks the legacy 20-byte short header (no DATA_TYPE/MESSAGE_ID
// words) or the current 28-byte header.
const wellKnownHeaderLengthField = "mx_database.list_is_active"

// floatEndianBit marks OPTION_NATIVE_DATA_FORMAT values from servers older
// than 2.1.9, which packed "this host's float byte order differs from its
// integer byte order" into a high bit of the format word instead of
// reporting it separately. RAW can only be negotiated once that bit is
// masked off and compared on its own.
const floatEndianBit = 0x100

// localNativeFormat and localWordSize are what this client would report if
// asked the same OPTION_NATIVE_DATA_FORMAT/OPTION_WORD_SIZE questions: we
// always run integers and floats in the same (host) byte order, so our
// native format is the generic RAW tag, and our word size is the platform's
// native int width.
const localNativeFormat = uint32(FormatRaw)

var localWordSize = uint32(bits.UintSize / 8)

// use64BitLongsMinRemoteVersion is the lowest remote client_version that
// understands OPTION_USE_64BIT_LONGS; negotiating it against an older peer
// would silently do nothing, since the peer has no 64-bit LONG/ULONG/HEX
// encoding to switch to.
const use64BitLongsMinRemoteVersion = 1002000

// bringUp performs the six-step connection handshake: dial, discover the
// peer's header length, negotiate the data format, fetch the peer's
// client-library version, report our own client info, and (if requested)
// negotiate 64-bit long width. On success it bumps the generation counter,
// invalidating every cached field handle, and marks network handles as
// supported again (a prior downgrade decision does not survive a fresh
// connection).
func (s *Server) bringUp(ctx context.Context) error {
	conn, err := dial(ctx, s.address, s.opts.DefaultPort, s.opts.Timeout)
	if err != nil {
		return err
	}

	s.connMu.Lock()
	s.conn = conn
	s.connMu.Unlock()
	s.headerLength = HeaderLengthCurrent

	if err := s.discoverHeaderLength(ctx); err != nil {
		s.closeConnLocked()
		return err
	}
	if err := s.negotiateDataFormat(ctx); err != nil {
		s.closeConnLocked()
		return err
	}
	if err := s.fetchRemoteVersion(ctx); err != nil {
		s.closeConnLocked()
		return err
	}
	if err := s.reportClientInfo(ctx); err != nil {
		s.closeConnLocked()
		return err
	}
	if s.opts.Use64BitLongs {
		if err := s.negotiate64BitLongs(ctx); err != nil {
			s.closeConnLocked()
			return err
		}
	}

	s.generation.Add(1)
	s.supportsNetworkHandles.Store(true)
	if s.status.Load() == int32(StatusDisconnected) {
		s.status.Store(int32(StatusConnected))
	} else {
		s.status.Store(int32(StatusReconnected))
	}
	return nil
}

// discoverHeaderLength fetches a field every MX server exposes, purely to
// observe the header the peer sends it back in: a 20-byte short header
// carries no DATA_TYPE or MESSAGE_ID words, so every reply's MessageID
// decodes as zero. waitFor has to know that before it can match that zero
// against a real pending request id instead of rejecting it as corrupt.
func (s *Server) discoverHeaderLength(ctx context.Context) error {
	h, _, err := s.call(ctx, OpGetArrayByName, uint32(DatatypeULong), []byte(wellKnownHeaderLengthField))
	if h == nil {
		return err
	}
	s.shortHeaderPeer = h.HeaderLength <= HeaderLengthLegacy
	return nil
}

// negotiateDataFormat resolves the data format this connection will use
// for array bodies. FormatUnknown (no format requested)
// runs the full NEGOTIATE algorithm: compare the peer's native format and
// word size against ours. Any other requested format is asked for
// directly, falling back to ASCII if the peer doesn't understand
// SET_OPTION(DATA_FORMAT).
func (s *Server) negotiateDataFormat(ctx context.Context) error {
	requested := s.opts.RequestedFormat
	if requested == FormatUnknown {
		chosen, err := s.chooseNegotiatedFormat(ctx)
		if err != nil {
			return err
		}
		return s.applyDataFormat(ctx, chosen)
	}
	return s.applyDataFormat(ctx, requested)
}

// chooseNegotiatedFormat implements the NEGOTIATE algorithm: RAW is only
// safe when the peer's native integer format and word size exactly match
// ours, since RAW carries no self-describing width or byte order. Anything
// else falls back to XDR, which is portable by construction.
func (s *Server) chooseNegotiatedFormat(ctx context.Context) (DataFormat, error) {
	native, err := s.getOptionRaw(ctx, OptionNativeDataFormat)
	if err != nil {
		return 0, err
	}
	peerFormat := native &^ floatEndianBit

	wordSize, err := s.getOptionRaw(ctx, OptionWordSize)
	if isNotYetImplemented(err) {
		return FormatXDR, nil
	}
	if err != nil {
		return 0, err
	}

	if peerFormat == localNativeFormat && wordSize == localWordSize {
		return FormatRaw, nil
	}
	return FormatXDR, nil
}

// applyDataFormat tells the peer which format to use via SET_OPTION and
// records it locally. A peer that predates SET_OPTION(DATA_FORMAT) answers
// NOT_YET_IMPLEMENTED; ASCII is the one format every MX server has always
// understood, so that's the fallback.
func (s *Server) applyDataFormat(ctx context.Context, format DataFormat) error {
	err := s.setOptionRaw(ctx, OptionDataFormat, uint32(format))
	if isNotYetImplemented(err) {
		s.dataFormat = FormatASCII
		return nil
	}
	if err != nil {
		return err
	}
	s.dataFormat = format
	return nil
}

func (s *Server) closeConnLocked() {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
}

func (s *Server) fetchRemoteVersion(ctx context.Context) error {
	v, err := s.getOptionRaw(ctx, OptionClientVersion)
	if err != nil {
		return err
	}
	version := int(v)
	if version >= legacyVersionRangeLow && version < legacyVersionRangeHigh {
		version = legacyVersionRemap
	}
	t, err := s.getOptionRaw(ctx, OptionClientVersionTime)
	if err != nil {
		return err
	}
	s.remote = remoteVersion{Version: version, Time: int64(t)}
	return nil
}

// reportClientInfo tells the peer who's connected: three whitespace-
// separated tokens (username, program name, process id), each sanitized so
// a space in any of them can't be mistaken for a field separator.
func (s *Server) reportClientInfo(ctx context.Context) error {
	info := strings.Join([]string{
		sanitizeClientInfoToken(s.opts.Username),
		sanitizeClientInfoToken(s.opts.ProgramName),
		fmt.Sprintf("%d", os.Getpid()),
	}, " ")
	_, _, err := s.call(ctx, OpSetClientInfo, 0, []byte(info))
	return err
}

// sanitizeClientInfoToken replaces any whitespace in tok with underscores
// so it can't break the space-delimited CLIENT_INFO wire format.
func sanitizeClientInfoToken(tok string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, tok)
}

// negotiate64BitLongs asks the peer to widen LONG/ULONG/HEX elements to 8
// bytes. This is only meaningful over RAW (XDR and ASCII already carry
// numbers in a self-describing or fixed-64-bit form) and only to a peer
// new enough to have 64-bit long support at all; against anything else the
// request would either be misunderstood or silently ignored, so it's
// skipped rather than sent.
func (s *Server) negotiate64BitLongs(ctx context.Context) error {
	if s.dataFormat != FormatRaw || s.remote.Version < use64BitLongsMinRemoteVersion {
		return nil
	}
	if err := s.setOptionRaw(ctx, OptionUse64BitLongs, 1); err != nil {
		return err
	}
	s.use64BitLongs = true
	return nil
}

// reconnect closes the current connection (if any) and repeats bring-up,
// retrying every ReconnectPollInterval until success or
// MaxReconnectAttempts is exhausted (0 means retry forever). On success,
// every live callback is reissued against the new connection.
func (s *Server) reconnect(ctx context.Context) error {
	s.status.Store(int32(StatusConnectionLost))
	s.closeConnLocked()

	interval := s.opts.ReconnectPollInterval
	if interval <= 0 {
		interval = time.Second
	}

	attempt := 0
	for {
		attempt++
		err := s.bringUp(ctx)
		if err == nil {
			s.metricsOr().Reconnected()
			return s.callbacks.reRegisterAll(ctx, s)
		}
		if s.opts.MaxReconnectAttempts > 0 && attempt >= s.opts.MaxReconnectAttempts {
			return err
		}
		select {
		case <-ctx.Done():
			return WrapError(ErrorKindTimedOut, ctx.Err(), "reconnect canceled")
		case <-time.After(interval):
		}
	}
}

func (s *Server) ensureConnected(ctx context.Context) error {
	if s.Status() == StatusConnected || s.Status() == StatusReconnected {
		return nil
	}
	return s.reconnect(ctx)
}
