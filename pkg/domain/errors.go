package domain

import (
	"errors"
	"fmt"
)

// ErrorKind は GenerationError の分類です。
type ErrorKind int

const (
	KindTransport ErrorKind = iota + 1
	KindProvider
	KindParse
	KindAbsentPayload
	KindAuth
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindProvider:
		return "provider"
	case KindParse:
		return "parse"
	case KindAbsentPayload:
		return "absent_payload"
	case KindAuth:
		return "auth"
	default:
		return "unknown"
	}
}

var (
	ErrTransport     = errors.New("transport error")
	ErrProvider      = errors.New("provider error")
	ErrParse         = errors.New("parse error")
	ErrAbsentPayload = errors.New("absent payload")
	ErrAuth          = errors.New("credential error")
	ErrInvalidInput  = errors.New("invalid input")
)

// NotFoundEntityMarker はプロバイダが資格情報の無効を示すときのエラー文言です。
const NotFoundEntityMarker = "Requested entity was not found"

// ReselectCredentialMessage は AuthError としてユーザーに見せる文言です。
const ReselectCredentialMessage = "APIキーが無効か見つかりません。正しいキーを選択し直してください。"

// GenerationError はゲートウェイとポーラーが返すエラーです。
type GenerationError struct {
	Kind    ErrorKind
	Op      string
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op == "" {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Is により errors.Is(err, ErrParse) のような種別判定ができるのだ。
func (e *GenerationError) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrProvider:
		return e.Kind == KindProvider
	case ErrParse:
		return e.Kind == KindParse
	case ErrAbsentPayload:
		return e.Kind == KindAbsentPayload
	case ErrAuth:
		return e.Kind == KindAuth
	}
	return false
}

// NewError は GenerationError を組み立てます。
func NewError(kind ErrorKind, op, message string, err error) *GenerationError {
	return &GenerationError{Kind: kind, Op: op, Message: message, Err: err}
}

// KindOf は err に含まれる GenerationError の種別を返します。見つからなければ 0 です。
func KindOf(err error) ErrorKind {
	var gerr *GenerationError
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	return 0
}
