package client

import (
	"github.com/rs/zerolog"

	"github.com/c2fo/pilot"
	"github.com/c2fo/pilot/config"
	"github.com/c2fo/pilot/options"
)

const (
	optionNameConfig      = "config"
	optionNamePassword    = "password"
	optionNameCredentials = "credentials"
	optionNameHTTPClient  = "httpClient"
	optionNameLogger      = "logger"
	optionNameTrace       = "trace"
	optionNameHPC         = "hpc"
)

// WithConfig sets the configuration. The gateway must be set; every other field falls
// back to config.Default when zero.
func WithConfig(cfg config.Config) options.ClientOption[Client] {
	return &configOpt{cfg: cfg}
}

type configOpt struct {
	cfg config.Config
}

func (o *configOpt) Apply(c *Client) {
	c.cfg = o.cfg
}

func (o *configOpt) ClientOptionName() string {
	return optionNameConfig
}

// WithPassword logs in with a username and password.
func WithPassword(username, password string) options.ClientOption[Client] {
	return &passwordOpt{username: username, password: password}
}

type passwordOpt struct {
	username string
	password string
}

func (o *passwordOpt) Apply(c *Client) {
	c.username = o.username
	c.password = o.password
}

func (o *passwordOpt) ClientOptionName() string {
	return optionNamePassword
}

// WithCredentials reuses existing tokens instead of logging in. The username is still
// needed as the operator of mutations.
func WithCredentials(username string, creds pilot.Credentials) options.ClientOption[Client] {
	return &credentialsOpt{username: username, creds: creds}
}

type credentialsOpt struct {
	username string
	creds    pilot.Credentials
}

func (o *credentialsOpt) Apply(c *Client) {
	c.username = o.username
	c.creds = o.creds
}

func (o *credentialsOpt) ClientOptionName() string {
	return optionNameCredentials
}

// WithHTTPClient sets the transport. Useful for testing or for custom TLS and proxies.
func WithHTTPClient(doer Doer) options.ClientOption[Client] {
	return &httpClientOpt{doer: doer}
}

type httpClientOpt struct {
	doer Doer
}

func (o *httpClientOpt) Apply(c *Client) {
	c.doer = o.doer
}

func (o *httpClientOpt) ClientOptionName() string {
	return optionNameHTTPClient
}

// WithLogger sets the parent logger. Default is zerolog.Nop().
func WithLogger(logger zerolog.Logger) options.ClientOption[Client] {
	return &loggerOpt{logger: logger}
}

type loggerOpt struct {
	logger zerolog.Logger
}

func (o *loggerOpt) Apply(c *Client) {
	c.logger = o.logger
}

func (o *loggerOpt) ClientOptionName() string {
	return optionNameLogger
}

// WithTrace turns request and response logging on from the start.
func WithTrace(on bool) options.ClientOption[Client] {
	return &traceOpt{on: on}
}

type traceOpt struct {
	on bool
}

func (o *traceOpt) Apply(c *Client) {
	c.trace = o.on
}

func (o *traceOpt) ClientOptionName() string {
	return optionNameTrace
}

// WithHPC makes the client a compute gateway session. Logins send tokenIssuer and
// requests go to the configured HPC endpoint.
func WithHPC(tokenIssuer string) options.ClientOption[Client] {
	return &hpcOpt{tokenIssuer: tokenIssuer}
}

type hpcOpt struct {
	tokenIssuer string
}

func (o *hpcOpt) Apply(c *Client) {
	c.hpc = true
	c.tokenIssuer = o.tokenIssuer
}

func (o *hpcOpt) ClientOptionName() string {
	return optionNameHPC
}
