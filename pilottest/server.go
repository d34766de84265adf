// Package pilottest runs a fake platform for tests: a gin HTTP server speaking the
// response envelope and a Redis notification bus backed by miniredis.
package pilottest

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/c2fo/pilot"
	"github.com/c2fo/pilot/client"
	"github.com/c2fo/pilot/config"
	"github.com/c2fo/pilot/options"
)

const (
	Username     = "alice"
	Password     = "secret"
	AccessToken  = "access-token"
	RefreshToken = "refresh-token"
)

// Recorded is a request received by the Server.
type Recorded struct {
	Method  string
	Path    string
	Query   url.Values
	Header  http.Header
	Cookies []*http.Cookie
	Body    []byte
}

// Cookie returns the value of the named cookie, or "".
func (r Recorded) Cookie(name string) string {
	for _, c := range r.Cookies {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// Server is a fake platform gateway. Handlers are registered per test; the login
// endpoint is served by default and accepts Username and Password.
type Server struct {
	*httptest.Server

	engine *gin.Engine

	mu       sync.Mutex
	requests []Recorded
}

// NewServer starts a Server that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{engine: gin.New()}
	s.engine.Use(s.record)
	s.engine.POST(config.DefaultEndpoints().Auth, Login(Username, Password))

	s.Server = httptest.NewServer(s.engine)
	t.Cleanup(s.Close)
	return s
}

// Handle registers h for method and path. The path is matched literally.
func (s *Server) Handle(method, path string, h ...gin.HandlerFunc) {
	s.engine.Handle(method, path, h...)
}

// Requests returns every request received so far, in arrival order.
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Recorded(nil), s.requests...)
}

// Received returns the requests received for method and path.
func (s *Server) Received(method, path string) []Recorded {
	var out []Recorded
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// Config returns a configuration pointing at the server.
func (s *Server) Config() config.Config {
	cfg, err := config.Default().WithGateway(s.URL)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Client returns a session for Username holding AccessToken and RefreshToken. No login
// request is sent, so handlers may still be registered afterwards.
func (s *Server) Client(t testing.TB, opts ...options.ClientOption[client.Client]) *client.Client {
	t.Helper()
	creds, err := pilot.NewCredentials(AccessToken, RefreshToken)
	if err != nil {
		t.Fatalf("credentials: %v", err)
	}
	all := append([]options.ClientOption[client.Client]{
		client.WithConfig(s.Config()),
		client.WithCredentials(Username, creds),
	}, opts...)
	c, err := client.New(context.Background(), all...)
	if err != nil {
		t.Fatalf("client for fake platform: %v", err)
	}
	return c
}

func (s *Server) record(c *gin.Context) {
	body, _ := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	s.mu.Lock()
	s.requests = append(s.requests, Recorded{
		Method:  c.Request.Method,
		Path:    c.Request.URL.Path,
		Query:   c.Request.URL.Query(),
		Header:  c.Request.Header.Clone(),
		Cookies: c.Request.Cookies(),
		Body:    body,
	})
	s.mu.Unlock()

	c.Next()
}

// OK answers with a success envelope carrying result.
func OK(result any) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "error_msg": "", "result": result})
	}
}

// Fail answers with transport status 200 and an envelope carrying code, the way the
// platform reports application errors.
func Fail(code int, msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"code": code, "error_msg": msg, "result": nil})
	}
}

// Sequence answers successive requests with successive handlers, repeating the last one.
func Sequence(handlers ...gin.HandlerFunc) gin.HandlerFunc {
	var mu sync.Mutex
	calls := 0
	return func(c *gin.Context) {
		mu.Lock()
		i := calls
		if i >= len(handlers) {
			i = len(handlers) - 1
		}
		calls++
		mu.Unlock()
		handlers[i](c)
	}
}

// Login serves the login endpoint for one user.
func Login(username, password string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || body.Username != username || body.Password != password {
			c.JSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "error_msg": "invalid credentials"})
			return
		}
		OK(gin.H{"access_token": AccessToken, "refresh_token": RefreshToken})(c)
	}
}
