package account

import (
	"errors"

	"github.com/dmitrymomot/anilink/pkg/pocketbase"
)

var (
	ErrNoUser          = errors.New("account: no user loaded")
	ErrUnknownProvider = errors.New("account: unsupported login provider")
	ErrProviderState   = errors.New("account: provider login state mismatch")
)

// Op names the operation an AuthError came from.
type Op string

const (
	OpLogin        Op = "login"
	OpLoginGoogle  Op = "login_google"
	OpLoginGithub  Op = "login_github"
	OpCreate       Op = "create_account"
	OpUpdate       Op = "update_user"
	OpEmailChange  Op = "email_change"
	OpDelete       Op = "delete_account"
	opLoginUnknown Op = "login_provider"
)

var defaultMessages = map[Op]string{
	OpLogin:        "Login failed. Please check your credentials.",
	OpLoginGoogle:  "Google login failed. Please try again.",
	OpLoginGithub:  "GitHub login failed. Please try again.",
	OpCreate:       "Account creation failed. Please try again.",
	OpUpdate:       "Failed to update user data.",
	OpEmailChange:  "Email change failed. Please try again.",
	OpDelete:       "Account deletion failed. Please try again.",
	opLoginUnknown: "Login failed. Please try again.",
}

// AuthError is a failed account operation. Message is the PocketBase message
// when there is one, otherwise a fixed default for Op.
type AuthError struct {
	Op      Op
	Message string
	Err     error
}

func (e *AuthError) Error() string { return e.Message }
func (e *AuthError) Unwrap() error { return e.Err }

func newAuthError(op Op, err error) *AuthError {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae
	}

	msg := defaultMessages[op]
	var pbErr *pocketbase.Error
	if errors.As(err, &pbErr) && pbErr.Message != "" {
		msg = pbErr.Message
	}
	return &AuthError{Op: op, Message: msg, Err: err}
}

func providerOp(provider string) Op {
	switch provider {
	case ProviderGoogle:
		return OpLoginGoogle
	case ProviderGithub:
		return OpLoginGithub
	default:
		return opLoginUnknown
	}
}
