package client

import (
	"context"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/c2fo/pilot"
	"github.com/c2fo/pilot/utils"
)

type loginResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Login exchanges a username and password for platform credentials by posting them to
// authPath under baseURL. Any transport status other than 200 fails with
// *pilot.AuthenticationError carrying the response body.
func Login(ctx context.Context, doer Doer, baseURL, authPath, username, password string) (pilot.Credentials, error) {
	payload := map[string]string{
		"username": username,
		"password": password,
	}

	result, err := login[loginResult](ctx, doer, baseURL, authPath, payload)
	if err != nil {
		return pilot.Credentials{}, err
	}
	return pilot.NewCredentials(result.AccessToken, result.RefreshToken)
}

// LoginHPC authenticates against the compute gateway. The gateway answers with a single
// bearer token and no refresh token.
func LoginHPC(ctx context.Context, doer Doer, endpoint, authPath, username, password, tokenIssuer string) (pilot.Credentials, error) {
	payload := map[string]string{
		"username":     username,
		"password":     password,
		"token_issuer": tokenIssuer,
	}

	token, err := login[string](ctx, doer, endpoint, authPath, payload)
	if err != nil {
		return pilot.Credentials{}, err
	}
	return pilot.NewCredentials(token, "")
}

func login[T any](ctx context.Context, doer Doer, baseURL, authPath string, payload map[string]string) (T, error) {
	var zero T

	// an unauthenticated requester: no credentials, no tracing
	r := NewRequester(baseURL, pilot.Credentials{}, doer, zerolog.Nop())
	resp, err := r.Do(ctx, &Request{Method: http.MethodPost, Path: authPath, JSON: payload, Stream: true})
	if err != nil {
		return zero, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, utils.WrapRequestError(err, http.MethodPost, authPath)
	}
	if resp.StatusCode != http.StatusOK {
		return zero, &pilot.AuthenticationError{StatusCode: resp.StatusCode, Body: body}
	}

	resp.Raw = body
	if err := resp.decode(); err != nil {
		return zero, err
	}
	return Decode[T](resp)
}
