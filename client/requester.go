package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync/atomic"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"

	"github.com/c2fo/pilot"
	"github.com/c2fo/pilot/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Doer is the subset of *http.Client used by the Requester. Keeping it small makes
// transport behavior easy to replace in tests.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// FormFile is a file part of a multipart request.
type FormFile struct {
	Field    string
	Filename string
	Content  io.Reader
}

// Request describes a single call relative to the Requester's base URL.
type Request struct {
	Method string
	// Path is appended to the base URL unless it is already absolute.
	Path    string
	JSON    any
	Params  url.Values
	Headers http.Header
	Cookies []*http.Cookie

	// Form and Files turn the request into multipart/form-data. JSON is ignored when set.
	Form  map[string]string
	Files []FormFile

	// Stream skips envelope decoding and error mapping. The caller must close Response.Body.
	Stream bool
}

// Response is a completed exchange. For non-streaming requests Body is nil and the
// decoded envelope fields are populated.
type Response struct {
	StatusCode int
	Header     http.Header

	Code       int
	ErrorMsg   string
	Result     jsoniter.RawMessage
	Page       int
	Total      int
	NumOfPages int
	Raw        []byte

	Body io.ReadCloser
}

// envelope is the response wrapper every platform endpoint returns.
type envelope struct {
	Code       *int                `json:"code"`
	ErrorMsg   string              `json:"error_msg"`
	Result     jsoniter.RawMessage `json:"result"`
	Page       int                 `json:"page"`
	Total      int                 `json:"total"`
	NumOfPages int                 `json:"num_of_pages"`
}

// Requester sends authenticated requests and maps embedded response codes to typed errors.
// It is safe for concurrent use.
type Requester struct {
	baseURL string
	creds   pilot.Credentials
	doer    Doer
	logger  zerolog.Logger
	trace   atomic.Bool
}

// NewRequester returns a Requester for baseURL. A nil doer uses http.DefaultClient.
func NewRequester(baseURL string, creds pilot.Credentials, doer Doer, logger zerolog.Logger) *Requester {
	if doer == nil {
		doer = http.DefaultClient
	}
	return &Requester{
		baseURL: utils.RemoveTrailingSlash(baseURL),
		creds:   creds,
		doer:    doer,
		logger:  logger,
	}
}

// BaseURL returns the URL every relative path is resolved against.
func (r *Requester) BaseURL() string { return r.baseURL }

// Credentials returns the tokens attached to each request.
func (r *Requester) Credentials() pilot.Credentials { return r.creds }

// TraceOn enables request and response logging.
func (r *Requester) TraceOn() { r.trace.Store(true) }

// TraceOff disables request and response logging.
func (r *Requester) TraceOff() { r.trace.Store(false) }

// Tracing reports whether request and response logging is enabled.
func (r *Requester) Tracing() bool { return r.trace.Load() }

// Do sends req and returns the completed exchange. Envelope codes >= 300 are returned as
// *pilot.ResponseError alongside the decoded response.
func (r *Requester) Do(ctx context.Context, req *Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := r.build(ctx, method, req)
	if err != nil {
		return nil, utils.WrapRequestError(err, method, req.Path)
	}

	if r.Tracing() {
		r.logger.Info().
			Str("method", method).
			Str("url", httpReq.URL.String()).
			Interface("payload", req.JSON).
			Interface("form", req.Form).
			Interface("headers", redact(httpReq.Header)).
			Msg("request")
	}

	httpResp, err := r.doer.Do(httpReq)
	if err != nil {
		r.logger.Error().Err(err).Str("method", method).Str("url", httpReq.URL.String()).Msg("request failed")
		return nil, utils.WrapRequestError(err, method, req.Path)
	}

	resp := &Response{StatusCode: httpResp.StatusCode, Header: httpResp.Header}
	if req.Stream {
		resp.Body = httpResp.Body
		return resp, nil
	}
	defer func() { _ = httpResp.Body.Close() }()

	resp.Raw, err = io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, utils.WrapRequestError(err, method, req.Path)
	}

	if r.Tracing() {
		r.logger.Info().
			Str("method", method).
			Str("url", httpReq.URL.String()).
			Int("status", httpResp.StatusCode).
			RawJSON("response", jsonOrString(resp.Raw)).
			Msg("response")
	}

	if err := resp.decode(); err != nil {
		r.logger.Error().Err(err).Str("method", method).Str("url", httpReq.URL.String()).Msg("request failed")
		return resp, utils.WrapRequestError(err, method, req.Path)
	}
	return resp, nil
}

// decode fills the envelope fields and returns a *pilot.ResponseError for codes >= 300.
// A missing code falls back to the transport status.
func (resp *Response) decode() error {
	var env envelope
	if err := json.Unmarshal(resp.Raw, &env); err != nil {
		if resp.StatusCode >= http.StatusMultipleChoices {
			return pilot.NewResponseError(resp.StatusCode, resp.Raw)
		}
		return utils.WrapDecodeError(err)
	}

	resp.Code = resp.StatusCode
	if env.Code != nil {
		resp.Code = *env.Code
	}
	resp.ErrorMsg = env.ErrorMsg
	resp.Result = env.Result
	resp.Page = env.Page
	resp.Total = env.Total
	resp.NumOfPages = env.NumOfPages

	if resp.Code >= http.StatusMultipleChoices {
		return pilot.NewResponseError(resp.Code, resp.Raw)
	}
	return nil
}

func (r *Requester) build(ctx context.Context, method string, req *Request) (*http.Request, error) {
	target := req.Path
	if u, err := url.Parse(target); err != nil || !u.IsAbs() {
		target = utils.JoinURL(r.baseURL, req.Path)
	}
	if len(req.Params) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + req.Params.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case len(req.Form) > 0 || len(req.Files) > 0:
		buf, ct, err := multipartBody(req.Form, req.Files)
		if err != nil {
			return nil, err
		}
		body, contentType = buf, ct
	case req.JSON != nil:
		b, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, err
		}
		body, contentType = bytes.NewReader(b), "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}

	for k, vals := range req.Headers {
		for _, v := range vals {
			httpReq.Header.Add(k, v)
		}
	}
	if contentType != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if httpReq.Header.Get("Authorization") == "" && !r.creds.IsZero() {
		httpReq.Header.Set("Authorization", "Bearer "+r.creds.AccessToken())
		if rt := r.creds.RefreshToken(); rt != "" {
			httpReq.Header.Set("Refresh-token", rt)
		}
	}
	for _, c := range req.Cookies {
		httpReq.AddCookie(c)
	}

	return httpReq, nil
}

func multipartBody(form map[string]string, files []FormFile) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, form[k]); err != nil {
			return nil, "", err
		}
	}

	for _, f := range files {
		part, err := w.CreateFormFile(f.Field, f.Filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, "", fmt.Errorf("copy form file %s: %w", f.Filename, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

func redact(h http.Header) http.Header {
	out := h.Clone()
	for _, k := range []string{"Authorization", "Refresh-Token", "Cookie"} {
		if out.Get(k) != "" {
			out.Set(k, "REDACTED")
		}
	}
	return out
}

func jsonOrString(b []byte) []byte {
	if json.Valid(b) {
		return b
	}
	quoted, _ := json.Marshal(string(b))
	return quoted
}

// Decode unmarshals the envelope result of resp into T.
func Decode[T any](resp *Response) (T, error) {
	var out T
	if len(resp.Result) == 0 || string(resp.Result) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(resp.Result, &out); err != nil {
		return out, utils.WrapDecodeError(err)
	}
	return out, nil
}

// Send performs req and decodes its result into T in one step.
func Send[T any](ctx context.Context, r *Requester, req *Request) (T, error) {
	resp, err := r.Do(ctx, req)
	if err != nil {
		var zero T
		return zero, err
	}
	return Decode[T](resp)
}
