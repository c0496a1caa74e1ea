package mxnet

import "fmt"

// ErrorKind classifies the failure modes a Server operation can return,
// mirroring the MX_* status codes carried in a reply header's STATUS_CODE
// word.
type ErrorKind int

const (
	ErrorKindNullArgument ErrorKind = iota + 1
	ErrorKindIllegalArgument
	ErrorKindCorruptDataStructure
	ErrorKindOutOfMemory
	ErrorKindNetworkIO
	ErrorKindNetworkConnectionLost
	ErrorKindNetworkConnectionRefused
	ErrorKindTimedOut
	ErrorKindWouldExceedLimit
	ErrorKindBadHandle
	ErrorKindNotYetImplemented
	ErrorKindUnsupported
	ErrorKindRecordDisabledByUser
	ErrorKindCallbackInProgress
	ErrorKindTypeMismatch
	ErrorKindUnparseableString
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindNullArgument:
		return "null_argument"
	case ErrorKindIllegalArgument:
		return "illegal_argument"
	case ErrorKindCorruptDataStructure:
		return "corrupt_data_structure"
	case ErrorKindOutOfMemory:
		return "out_of_memory"
	case ErrorKindNetworkIO:
		return "network_io"
	case ErrorKindNetworkConnectionLost:
		return "network_connection_lost"
	case ErrorKindNetworkConnectionRefused:
		return "network_connection_refused"
	case ErrorKindTimedOut:
		return "timed_out"
	case ErrorKindWouldExceedLimit:
		return "would_exceed_limit"
	case ErrorKindBadHandle:
		return "bad_handle"
	case ErrorKindNotYetImplemented:
		return "not_yet_implemented"
	case ErrorKindUnsupported:
		return "unsupported"
	case ErrorKindRecordDisabledByUser:
		return "record_disabled_by_user"
	case ErrorKindCallbackInProgress:
		return "callback_in_progress"
	case ErrorKindTypeMismatch:
		return "type_mismatch"
	case ErrorKindUnparseableString:
		return "unparseable_string"
	default:
		return fmt.Sprintf("error_kind(%d)", int(k))
	}
}

// Error is the concrete error type returned by every Server operation.
// It wraps an ErrorKind plus an optional underlying cause (a transport
// error, a decode error, or a prior *Error received from the peer).
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("mxnet: %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("mxnet: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports equality by Kind so callers can test with errors.Is(err,
// mxnet.ErrTimedOut) without caring about the message or wrapped cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NewError constructs an *Error with no wrapped cause.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError constructs an *Error wrapping an underlying cause.
func WrapError(kind ErrorKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// Sentinel errors for use with errors.Is. Each carries only its Kind;
// compare against these rather than constructing new *Error values.
var (
	ErrTimedOut             = &Error{Kind: ErrorKindTimedOut, Message: "operation timed out"}
	ErrConnectionLost       = &Error{Kind: ErrorKindNetworkConnectionLost, Message: "connection lost"}
	ErrConnectionRefused    = &Error{Kind: ErrorKindNetworkConnectionRefused, Message: "connection refused"}
	ErrBadHandle            = &Error{Kind: ErrorKindBadHandle, Message: "stale field handle"}
	ErrNotYetImplemented    = &Error{Kind: ErrorKindNotYetImplemented, Message: "operation not implemented by peer"}
	ErrCallbackInProgress   = &Error{Kind: ErrorKindCallbackInProgress, Message: "call not permitted from within a callback"}
	ErrRecordDisabledByUser = &Error{Kind: ErrorKindRecordDisabledByUser, Message: "record disabled by user"}
)
