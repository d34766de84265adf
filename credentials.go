package pilot

// Credentials is the immutable token pair attached to every authenticated request.
// The refresh token is optional: compute-gateway sessions only carry an access token.
type Credentials struct {
	accessToken  string
	refreshToken string
}

// NewCredentials returns Credentials for the given tokens. An empty access token is rejected.
func NewCredentials(accessToken, refreshToken string) (Credentials, error) {
	if accessToken == "" {
		return Credentials{}, ErrAccessTokenRequired
	}
	return Credentials{accessToken: accessToken, refreshToken: refreshToken}, nil
}

// AccessToken returns the bearer token.
func (c Credentials) AccessToken() string { return c.accessToken }

// RefreshToken returns the refresh token, which may be empty.
func (c Credentials) RefreshToken() string { return c.refreshToken }

// IsZero reports whether c was never populated.
func (c Credentials) IsZero() bool { return c.accessToken == "" }
