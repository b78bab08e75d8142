package auth

import "errors"

// Resolution and token-exchange failures collapse into this taxonomy;
// no transport-level error escapes past the resolver.
var (
	// ErrNoToken means the request carried no phantom token. Callers
	// treat it as anonymous, not denied, so public routes pass through.
	ErrNoToken = errors.New("auth: no phantom token")

	// ErrSessionNotFound means the phantom token has no record in the
	// store: unknown, expired out, or revoked.
	ErrSessionNotFound = errors.New("auth: session not found")

	// ErrSessionExpired means the access token expired and the refresh
	// grant was rejected terminally; the session record has been deleted.
	ErrSessionExpired = errors.New("auth: session expired")

	// ErrUpstream is a transient identity-provider or store failure.
	// Session state must not be mutated on this path.
	ErrUpstream = errors.New("auth: upstream unavailable")

	// ErrInvalidCredentials is a rejected password grant.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrRefreshInvalid is a refresh grant the provider rejected: the
	// refresh token is expired, revoked, or already used.
	ErrRefreshInvalid = errors.New("auth: refresh token invalid")

	// ErrClaimDecode is a malformed access token. Resolution treats it
	// like an expired token and attempts a refresh.
	ErrClaimDecode = errors.New("auth: claim decode failed")
)
