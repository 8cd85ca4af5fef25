package auth

import "errors"

// Error taxonomy for the session core. Every failure here is recoverable:
// login errors surface as inline modal text, malformed persisted state is
// silently discarded, and nothing escalates past the session manager.
var (
	// ErrInvalidCredentials means the gateway rejected the email/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNetworkFailure means the gateway was unreachable or timed out.
	ErrNetworkFailure = errors.New("network failure")

	// ErrProviderDenied means the user aborted or the IdP refused federated sign-in.
	ErrProviderDenied = errors.New("identity provider denied sign-in")

	// ErrProviderUnavailable means the IdP could not be reached.
	ErrProviderUnavailable = errors.New("identity provider unavailable")

	// ErrBusy means a login attempt is already in flight; the new attempt
	// is rejected and the existing one proceeds.
	ErrBusy = errors.New("login already in progress")

	// ErrRoleMismatch means a token or credential was presented for a role
	// it was not issued for.
	ErrRoleMismatch = errors.New("token role mismatch")

	// ErrNoSession is returned by session stores when no entry exists.
	ErrNoSession = errors.New("no stored session")

	// ErrMalformedSession is returned by session stores when the persisted
	// entry fails the schema. It is recovered by discarding the entry and
	// is never surfaced to the user.
	ErrMalformedSession = errors.New("malformed stored session")
)

// LoginError carries a user-facing message alongside one of the sentinel
// kinds above. The gateway uses it to surface the backend's error body
// verbatim as the modal's inline text.
type LoginError struct {
	Kind    error
	Message string
}

func (e *LoginError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.Error()
}

func (e *LoginError) Unwrap() error { return e.Kind }

// UserMessage translates a login failure into the text shown inline in
// the login modal. Backend-provided messages win; otherwise each error
// kind degrades to a generic phrase.
func UserMessage(err error) string {
	var le *LoginError
	if errors.As(err, &le) && le.Message != "" {
		return le.Message
	}
	switch {
	case errors.Is(err, ErrBusy):
		return "Sign-in already in progress"
	case errors.Is(err, ErrNetworkFailure):
		return "Unable to reach the server. Please try again."
	case errors.Is(err, ErrProviderDenied), errors.Is(err, ErrProviderUnavailable):
		return "Failed to sign in with Google."
	default:
		return "Login failed"
	}
}
