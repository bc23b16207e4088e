package domain

import "errors"

// Kind 错误分类，传输层据此映射 HTTP 状态码
type Kind uint8

const (
	KindUnhandled Kind = iota
	KindUnauthenticated
	KindForbidden
	KindValidation
	KindConstraint
	KindAlreadyEnrolled
	KindNotFound
	KindInvalidCredentials
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "Unauthenticated"
	case KindForbidden:
		return "Forbidden"
	case KindValidation:
		return "ValidationFailed"
	case KindConstraint:
		return "ConstraintViolation"
	case KindAlreadyEnrolled:
		return "AlreadyEnrolled"
	case KindNotFound:
		return "NotFound"
	case KindInvalidCredentials:
		return "InvalidCredentials"
	}
	return "Unhandled"
}

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is 按 Kind 比较，errors.Is(NotFound("x"), ErrNotFound) == true
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrUnauthenticated    = &Error{Kind: KindUnauthenticated, Msg: "unauthenticated"}
	ErrForbidden          = &Error{Kind: KindForbidden, Msg: "forbidden"}
	ErrValidation         = &Error{Kind: KindValidation, Msg: "validation failed"}
	ErrConstraint         = &Error{Kind: KindConstraint, Msg: "constraint violation"}
	ErrAlreadyEnrolled    = &Error{Kind: KindAlreadyEnrolled, Msg: "Already enrolled in this course"}
	ErrNotFound           = &Error{Kind: KindNotFound, Msg: "not found"}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials, Msg: "Invalid email or password"}

	// ErrEmailTaken 属于 ConstraintViolation
	ErrEmailTaken = &Error{Kind: KindConstraint, Msg: "Email already exists"}
)

func Unauthenticated(msg string) error { return &Error{Kind: KindUnauthenticated, Msg: msg} }
func Forbidden(msg string) error       { return &Error{Kind: KindForbidden, Msg: msg} }
func Validation(msg string) error      { return &Error{Kind: KindValidation, Msg: msg} }
func NotFound(msg string) error        { return &Error{Kind: KindNotFound, Msg: msg} }

func Constraint(msg string, err error) error {
	return &Error{Kind: KindConstraint, Msg: msg, Err: err}
}

// KindOf 非 *Error 的一律视为 Unhandled
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnhandled
}
