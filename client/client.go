// Package client holds the authenticated request sender and the session client built on it.
package client

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/c2fo/pilot"
	"github.com/c2fo/pilot/config"
	"github.com/c2fo/pilot/logging"
	"github.com/c2fo/pilot/options"
	"github.com/c2fo/pilot/utils"
)

// Client is a logged-in session against the platform or the compute gateway.
// Capability modules in package api take a *Client and issue requests through its Requester.
type Client struct {
	cfg         config.Config
	username    string
	password    string
	creds       pilot.Credentials
	tokenIssuer string
	hpc         bool
	doer        Doer
	logger      zerolog.Logger
	trace       bool
	requester   *Requester
}

// New returns a Client. When credentials were supplied with WithCredentials no login is
// performed; otherwise the username and password from WithPassword are exchanged for tokens.
// Supplying neither fails with pilot.ErrMissingCredentials before any request is sent.
func New(ctx context.Context, opts ...options.ClientOption[Client]) (*Client, error) {
	c := &Client{
		cfg:    config.Default(),
		logger: zerolog.Nop(),
	}
	options.ApplyOptions(c, opts...)

	if c.creds.IsZero() && (c.username == "" || c.password == "") {
		return nil, pilot.ErrMissingCredentials
	}

	cfg, err := c.cfg.WithGateway(c.cfg.APIGateway)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg

	c.logger = logging.Component(c.logger, "client")

	if c.creds.IsZero() {
		if c.hpc {
			c.creds, err = LoginHPC(ctx, c.doer, c.BaseURL(), c.cfg.Endpoints.HPCAuth, c.username, c.password, c.tokenIssuer)
		} else {
			c.creds, err = Login(ctx, c.doer, c.BaseURL(), c.cfg.Endpoints.Auth, c.username, c.password)
		}
		if err != nil {
			c.logger.Error().Err(err).Str("username", c.username).Msg("login failed")
			return nil, err
		}
		c.logger.Debug().Str("username", c.username).Bool("hpc", c.hpc).Msg("logged in")
	}
	c.password = ""

	c.requester = NewRequester(c.BaseURL(), c.creds, c.doer, c.logger)
	if c.trace || c.cfg.Trace {
		c.requester.TraceOn()
	}

	return c, nil
}

// Username returns the operator name sent with mutations.
func (c *Client) Username() string { return c.username }

// BaseURL returns the platform gateway, or the compute gateway for HPC clients.
func (c *Client) BaseURL() string {
	if c.hpc {
		return c.cfg.HPCEndpoint
	}
	return c.cfg.APIGateway
}

// Config returns the configuration the client was built with.
func (c *Client) Config() config.Config { return c.cfg }

// Endpoints is shorthand for Config().Endpoints.
func (c *Client) Endpoints() config.Endpoints { return c.cfg.Endpoints }

// Requester returns the authenticated request sender.
func (c *Client) Requester() *Requester { return c.requester }

// Credentials returns the session tokens.
func (c *Client) Credentials() pilot.Credentials { return c.creds }

// Logger returns the client logger so capability modules can derive component loggers from it.
func (c *Client) Logger() zerolog.Logger { return c.logger }

// HPC reports whether the client is a compute gateway session.
func (c *Client) HPC() bool { return c.hpc }

// NewSessionID returns a fresh correlation id for a mutation issued by this client.
func (c *Client) NewSessionID() string { return utils.NewSessionID(c.username) }

// TraceOn enables request and response logging for this client.
func (c *Client) TraceOn() { c.requester.TraceOn() }

// TraceOff disables request and response logging for this client.
func (c *Client) TraceOff() { c.requester.TraceOff() }
