package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// Error carries an HTTP-facing code alongside the message and the wrapped cause.
type Error struct {
	Code    int        `json:"code"`
	Message string     `json:"message"`
	Err     error      `json:"-"`
	Stack   string     `json:"stack,omitempty"`
	Context []KeyValue `json:"context,omitempty"`
}

type KeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Sentinel errors shared by the domain packages. Handlers map them to HTTP
// statuses through GetCode.
var (
	ErrUnauthorized       = WithCode(http.StatusUnauthorized, "login required")
	ErrInvalidCredentials = WithCode(http.StatusUnauthorized, "invalid username or password")
	ErrUsernameTaken      = WithCode(http.StatusConflict, "username already exists")
	ErrInvalidUsername    = WithCode(http.StatusBadRequest, "username must be 3-32 letters, digits, '.', '_' or '-'")
	ErrWeakPassword       = WithCode(http.StatusBadRequest, "password must be at least 6 characters")
	ErrPasswordTooLong    = WithCode(http.StatusBadRequest, "password must be at most 72 bytes")
	ErrInvalidRole        = WithCode(http.StatusBadRequest, "unknown role")
	ErrEmptyMessage       = WithCode(http.StatusBadRequest, "message is empty")
	ErrEmptyDescription   = WithCode(http.StatusBadRequest, "alert description is empty")
	ErrInvalidCoordinates = WithCode(http.StatusBadRequest, "latitude must be in [-90,90] and longitude in [-180,180]")
	ErrInvalidStatus      = WithCode(http.StatusBadRequest, "status must be active or resolved")
	ErrUnknownContact     = WithCode(http.StatusBadRequest, "unknown emergency contact")
	ErrNoPendingEmergency = WithCode(http.StatusConflict, "no emergency contact selected")
)

func (e *Error) Error() string {
	if e.Message != "" {
		if e.Err != nil {
			return e.Message + ": " + e.Err.Error()
		}
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches coded errors by code and message so wrapped sentinels still compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

func WithCode(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

func WithCodef(code int, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(),
	}
}

// Wrap keeps the code of err when it already is an *Error.
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    GetCode(err),
		Message: message,
		Err:     err,
		Stack:   captureStack(),
	}
}

func Wrapf(err error, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

func New(message string) *Error {
	return &Error{Message: message, Stack: captureStack()}
}

func Errorf(format string, args ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, args...), Stack: captureStack()}
}

// WithContext returns a copy of e with an extra key/value attached.
func (e *Error) WithContext(key, value string) *Error {
	if e == nil {
		return nil
	}
	newErr := *e
	newErr.Context = append(append([]KeyValue(nil), e.Context...), KeyValue{Key: key, Value: value})
	return &newErr
}

func captureStack() string {
	buf := make([]byte, 1024)
	n := runtime.Stack(buf, false)
	lines := strings.Split(string(buf[:n]), "\n")
	// drop the goroutine header and the captureStack/constructor frames
	if len(lines) > 5 {
		lines = lines[5:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// GetCode returns the first code found along the chain, or 500.
func GetCode(err error) int {
	var e *Error
	for err != nil {
		if stderrors.As(err, &e) {
			if e.Code != 0 {
				return e.Code
			}
			err = e.Err
			continue
		}
		break
	}
	return http.StatusInternalServerError
}

// GetMessage returns the outermost message.
func GetMessage(err error) string {
	var e *Error
	if stderrors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func Cause(err error) error {
	for err != nil {
		e, ok := err.(*Error)
		if !ok || e.Err == nil {
			return err
		}
		err = e.Err
	}
	return err
}

func (e *Error) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			fmt.Fprintf(s, "%s", e.Error())
			if e.Stack != "" {
				fmt.Fprintf(s, "\n%s", e.Stack)
			}
			return
		}
		fallthrough
	case 's':
		fmt.Fprintf(s, "%s", e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}
