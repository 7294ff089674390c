package translate

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCredential = errors.New("missing credential")
	ErrUnknownEngine     = errors.New("unknown engine")
	ErrEngineConfig      = errors.New("engine configuration failed")
)

// Kind classifies a failed call.
type Kind int

const (
	// KindConfig means the call was rejected before any network I/O.
	KindConfig Kind = iota + 1
	KindTransport
	// KindProtocol covers non-2xx answers and provider errors inside a 2xx envelope.
	KindProtocol
	KindParse
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindTransport:
		return "transport"
	case KindProtocol:
		return "protocol"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// Error is the failure returned by engines and the dispatcher.
type Error struct {
	Kind   Kind
	Engine string

	// Protocol details. StatusCode is zero for envelope errors.
	StatusCode int
	Code       string
	Message    string
	Body       string

	Err error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindConfig:
		if e.Message != "" {
			return fmt.Sprintf("%s: %v: %s", e.Engine, e.Err, e.Message)
		}
		return fmt.Sprintf("%s: %v", e.Engine, e.Err)
	case KindTransport:
		return fmt.Sprintf("%s: request failed: %v", e.Engine, e.Err)
	case KindProtocol:
		if e.Code != "" {
			return fmt.Sprintf("%s API error (%s): %s", e.Engine, e.Code, e.Message)
		}
		return fmt.Sprintf("%s API error: status=%d, body=%s", e.Engine, e.StatusCode, e.Body)
	case KindParse:
		return fmt.Sprintf("%s: unexpected response: %v", e.Engine, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Engine, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// MissingCredential reports which field of the engine's settings is empty.
func MissingCredential(engine, field string) *Error {
	return &Error{Kind: KindConfig, Engine: engine, Err: ErrMissingCredential, Message: field}
}

func UnknownEngine(name string) *Error {
	return &Error{Kind: KindConfig, Engine: name, Err: ErrUnknownEngine}
}

// EngineConfigError reports a client setup failure that happened before any request.
func EngineConfigError(engine string, cause error) *Error {
	return &Error{Kind: KindConfig, Engine: engine, Err: ErrEngineConfig, Message: cause.Error()}
}

func TransportError(engine string, err error) *Error {
	return &Error{Kind: KindTransport, Engine: engine, Err: err}
}

// StatusError is a non-2xx answer. body should already be size-limited.
func StatusError(engine string, status int, body string) *Error {
	return &Error{Kind: KindProtocol, Engine: engine, StatusCode: status, Body: body}
}

// ProviderError is an application error reported by the provider.
func ProviderError(engine, code, message string) *Error {
	return &Error{Kind: KindProtocol, Engine: engine, Code: code, Message: message}
}

func ParseError(engine string, err error) *Error {
	return &Error{Kind: KindParse, Engine: engine, Err: err}
}

// KindOf returns the Kind of err, or zero when err is not an *Error.
func KindOf(err error) Kind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return 0
}
