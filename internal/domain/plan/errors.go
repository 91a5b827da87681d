// internal/domain/plan/errors.go

package plan

import (
	"errors"
)

// Kind classifies a planning failure
type Kind int

const (
	KindUnknown Kind = iota
	KindResolutionFailure
	KindInsufficientInput
	KindServiceUnavailable
	KindOutOfRange
	KindIncompletePlan
	KindNotFound
	KindInvalidInput
)

var kindText = map[Kind]string{
	KindUnknown:            "unexpected error",
	KindResolutionFailure:  "location could not be resolved",
	KindInsufficientInput:  "not enough input",
	KindServiceUnavailable: "service unavailable",
	KindOutOfRange:         "unsupported date range",
	KindIncompletePlan:     "incomplete plan",
	KindNotFound:           "not found",
	KindInvalidInput:       "invalid input",
}

func (k Kind) String() string {
	if s, ok := kindText[k]; ok {
		return s
	}
	return kindText[KindUnknown]
}

// Sentinels for errors.Is. Any *Error of the same Kind matches.
var (
	ErrResolutionFailure  = &Error{Kind: KindResolutionFailure}
	ErrInsufficientInput  = &Error{Kind: KindInsufficientInput}
	ErrServiceUnavailable = &Error{Kind: KindServiceUnavailable}
	ErrOutOfRange         = &Error{Kind: KindOutOfRange}
	ErrIncompletePlan     = &Error{Kind: KindIncompletePlan}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrInvalidInput       = &Error{Kind: KindInvalidInput}
)

// Error is a classified failure. Op names the operation, Msg is a plain
// description for the user, Err is the underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

// E builds an *Error
func E(kind Kind, op, msg string, err error) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinels by Kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

// KindOf returns the Kind of the first *Error in err's chain
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Describe returns the plain user-facing text for err
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	return KindOf(err).String()
}
