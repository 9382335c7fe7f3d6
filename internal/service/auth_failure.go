package service

import "fmt"

// FailureKind classifies why an authentication attempt was rejected.
type FailureKind int

const (
	// InvalidCredential means the presented secret did not match the stored verifier
	// or no account exists for the presented identifier.
	InvalidCredential FailureKind = iota + 1
	// InvalidToken means the token is malformed, expired, or its signature does not verify.
	InvalidToken
	// UnknownSubject means the token verified but its subject no longer resolves to an account.
	UnknownSubject
)

func (k FailureKind) String() string {
	switch k {
	case InvalidCredential:
		return "invalid credential"
	case InvalidToken:
		return "invalid token"
	case UnknownSubject:
		return "unknown subject"
	default:
		return fmt.Sprintf("FailureKind(%d)", int(k))
	}
}

// PublicAuthFailureMessage is the only text clients see for any AuthFailure.
const PublicAuthFailureMessage = "authentication failed"

// AuthFailure is an expected, recoverable authentication rejection.
// Detail is for logs only and must never be sent to clients.
type AuthFailure struct {
	Kind   FailureKind
	Detail string
}

var (
	ErrInvalidCredential = &AuthFailure{Kind: InvalidCredential}
	ErrInvalidToken      = &AuthFailure{Kind: InvalidToken}
	ErrUnknownSubject    = &AuthFailure{Kind: UnknownSubject}
)

func newAuthFailure(kind FailureKind, format string, args ...any) *AuthFailure {
	return &AuthFailure{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

func (e *AuthFailure) Error() string {
	if e.Detail == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Detail
}

// Is matches any AuthFailure of the same kind, so errors.Is(err, ErrInvalidToken)
// holds regardless of Detail.
func (e *AuthFailure) Is(target error) bool {
	t, ok := target.(*AuthFailure)
	return ok && t.Kind == e.Kind
}

// Public returns the generic message shown to clients.
func (e *AuthFailure) Public() string {
	return PublicAuthFailureMessage
}
