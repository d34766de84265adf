package client_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/c2fo/pilot"
	"github.com/c2fo/pilot/client"
	"github.com/c2fo/pilot/mocks"
)

func response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

type RequesterTestSuite struct {
	suite.Suite
	doer      *mocks.Doer
	logs      *bytes.Buffer
	requester *client.Requester
}

func (s *RequesterTestSuite) SetupTest() {
	s.doer = mocks.NewDoer(s.T())
	s.logs = &bytes.Buffer{}
	creds, err := pilot.NewCredentials("AT", "RT")
	s.Require().NoError(err)
	s.requester = client.NewRequester("https://pilot.example.org/pilot/", creds, s.doer, zerolog.New(s.logs))
}

func (s *RequesterTestSuite) TestInjectsTokens() {
	s.doer.EXPECT().Do(mock.MatchedBy(func(r *http.Request) bool {
		return r.URL.String() == "https://pilot.example.org/pilot/portal/v1/dataset?page=1" &&
			r.Header.Get("Authorization") == "Bearer AT" &&
			r.Header.Get("Refresh-token") == "RT"
	})).Return(response(http.StatusOK, `{"code": 200, "result": {"title": "t"}, "page": 1, "total": 3}`), nil).Once()

	resp, err := s.requester.Do(context.Background(), &client.Request{
		Path:   "/portal/v1/dataset",
		Params: map[string][]string{"page": {"1"}},
	})

	s.Require().NoError(err)
	s.Equal(200, resp.Code)
	s.Equal(1, resp.Page)
	s.Equal(3, resp.Total)

	out, err := client.Decode[struct {
		Title string `json:"title"`
	}](resp)
	s.Require().NoError(err)
	s.Equal("t", out.Title)
}

func (s *RequesterTestSuite) TestCallerAuthorizationWins() {
	s.doer.EXPECT().Do(mock.MatchedBy(func(r *http.Request) bool {
		return r.Header.Get("Authorization") == "raw-token" && r.Header.Get("Refresh-token") == ""
	})).Return(response(http.StatusOK, `{"code": 200}`), nil).Once()

	_, err := s.requester.Do(context.Background(), &client.Request{
		Path:    "/v1/hpc/nodes",
		Headers: http.Header{"Authorization": []string{"raw-token"}},
	})

	s.NoError(err)
}

func (s *RequesterTestSuite) TestErrorMapping() {
	tests := []struct {
		name      string
		status    int
		body      string
		expected  error
		errorCode int
	}{
		{name: "400", status: 200, body: `{"code": 400, "error_msg": "bad"}`, expected: pilot.ErrBadRequest, errorCode: 400},
		{name: "401", status: 200, body: `{"code": 401}`, expected: pilot.ErrUnauthorized, errorCode: 401},
		{name: "403", status: 200, body: `{"code": 403}`, expected: pilot.ErrForbidden, errorCode: 403},
		{name: "404", status: 200, body: `{"code": 404}`, expected: pilot.ErrNotFound, errorCode: 404},
		{name: "409", status: 200, body: `{"code": 409}`, expected: pilot.ErrConflict, errorCode: 409},
		{name: "unmapped 418", status: 200, body: `{"code": 418}`, expected: pilot.ErrInternalServerError, errorCode: 418},
		{name: "500", status: 200, body: `{"code": 500}`, expected: pilot.ErrInternalServerError, errorCode: 500},
		{name: "300", status: 200, body: `{"code": 300}`, expected: pilot.ErrInternalServerError, errorCode: 300},
		{name: "embedded code wins over transport", status: 500, body: `{"code": 404}`, expected: pilot.ErrNotFound, errorCode: 404},
		{name: "missing code uses transport status", status: 409, body: `{"result": null}`, expected: pilot.ErrConflict, errorCode: 409},
		{name: "non-json error page", status: 502, body: `<html>bad gateway</html>`, expected: pilot.ErrInternalServerError, errorCode: 502},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.doer.EXPECT().Do(mock.Anything).Return(response(tt.status, tt.body), nil).Once()

			resp, err := s.requester.Do(context.Background(), &client.Request{Method: http.MethodPost, Path: "/x"})

			s.ErrorIs(err, tt.expected)
			var respErr *pilot.ResponseError
			s.Require().ErrorAs(err, &respErr)
			s.Equal(tt.errorCode, respErr.Code)
			s.Equal(tt.body, string(respErr.Body), "error carries the full body")
			if tt.status == 200 {
				s.Require().NotNil(resp)
				s.Equal(tt.errorCode, resp.Code)
			}
		})
	}
}

func (s *RequesterTestSuite) TestCodesBelow300Succeed() {
	for _, code := range []string{"200", "201", "299"} {
		s.doer.EXPECT().Do(mock.Anything).Return(response(http.StatusOK, `{"code": `+code+`}`), nil).Once()

		_, err := s.requester.Do(context.Background(), &client.Request{Path: "/x"})

		s.NoError(err, code)
	}
}

func (s *RequesterTestSuite) TestNonJSONSuccessIsDecodeError() {
	s.doer.EXPECT().Do(mock.Anything).Return(response(http.StatusOK, `not json`), nil).Once()

	_, err := s.requester.Do(context.Background(), &client.Request{Path: "/x"})

	s.Require().Error(err)
	var respErr *pilot.ResponseError
	s.False(errors.As(err, &respErr))
}

func (s *RequesterTestSuite) TestStreamBypassesMapping() {
	s.doer.EXPECT().Do(mock.Anything).Return(response(http.StatusOK, `{"code": 500}`), nil).Once()

	resp, err := s.requester.Do(context.Background(), &client.Request{Path: "/download", Stream: true})

	s.Require().NoError(err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.Equal(`{"code": 500}`, string(b))
	s.Zero(resp.Code)
}

func (s *RequesterTestSuite) TestTransportError() {
	boom := errors.New("connection refused")
	s.doer.EXPECT().Do(mock.Anything).Return(nil, boom).Once()

	_, err := s.requester.Do(context.Background(), &client.Request{Method: http.MethodDelete, Path: "/x"})

	s.ErrorIs(err, boom)
	s.Contains(err.Error(), "DELETE /x")
	s.Contains(s.logs.String(), `"level":"error"`, "failures are logged without tracing")
}

func (s *RequesterTestSuite) TestJSONBodyAndCookies() {
	s.doer.EXPECT().Do(mock.Anything).RunAndReturn(func(r *http.Request) (*http.Response, error) {
		s.Equal("application/json", r.Header.Get("Content-Type"))
		c, err := r.Cookie("sessionId")
		s.Require().NoError(err)
		s.Equal("alice-1", c.Value)
		b, err := io.ReadAll(r.Body)
		s.Require().NoError(err)
		s.JSONEq(`{"source_list": ["A"]}`, string(b))
		return response(http.StatusOK, `{"code": 200}`), nil
	}).Once()

	_, err := s.requester.Do(context.Background(), &client.Request{
		Method:  http.MethodPut,
		Path:    "/portal/v1/dataset/D/files",
		JSON:    map[string]any{"source_list": []string{"A"}},
		Cookies: []*http.Cookie{{Name: "sessionId", Value: "alice-1"}},
	})

	s.NoError(err)
}

func (s *RequesterTestSuite) TestMultipart() {
	s.doer.EXPECT().Do(mock.Anything).RunAndReturn(func(r *http.Request) (*http.Response, error) {
		s.Require().NoError(r.ParseMultipartForm(1 << 20))
		s.Equal("RID", r.FormValue("resumable_identifier"))
		s.Equal("1", r.FormValue("resumable_chunk_number"))
		f, fh, err := r.FormFile("chunk_data")
		s.Require().NoError(err)
		defer f.Close()
		s.Equal("data.bin", fh.Filename)
		b, err := io.ReadAll(f)
		s.Require().NoError(err)
		s.Equal("0123", string(b))
		return response(http.StatusOK, `{"code": 200}`), nil
	}).Once()

	_, err := s.requester.Do(context.Background(), &client.Request{
		Method: http.MethodPost,
		Path:   "/upload/gr/v1/files/chunks",
		Form:   map[string]string{"resumable_identifier": "RID", "resumable_chunk_number": "1"},
		Files:  []client.FormFile{{Field: "chunk_data", Filename: "data.bin", Content: strings.NewReader("0123")}},
		JSON:   map[string]string{"ignored": "when form is set"},
	})

	s.NoError(err)
}

func (s *RequesterTestSuite) TestTraceToggle() {
	s.doer.EXPECT().Do(mock.Anything).RunAndReturn(func(*http.Request) (*http.Response, error) {
		return response(http.StatusOK, `{"code": 200, "result": "ok"}`), nil
	}).Twice()

	s.False(s.requester.Tracing())
	_, err := s.requester.Do(context.Background(), &client.Request{Path: "/quiet"})
	s.Require().NoError(err)
	s.Empty(s.logs.String())

	s.requester.TraceOn()
	_, err = s.requester.Do(context.Background(), &client.Request{Path: "/loud"})
	s.Require().NoError(err)
	out := s.logs.String()
	s.Contains(out, `"message":"request"`)
	s.Contains(out, `"message":"response"`)
	s.Contains(out, "/loud")
	s.Contains(out, "REDACTED")
	s.NotContains(out, "Bearer AT")

	s.requester.TraceOff()
	s.False(s.requester.Tracing())
}

func (s *RequesterTestSuite) TestAbsolutePathIsNotJoined() {
	s.doer.EXPECT().Do(mock.MatchedBy(func(r *http.Request) bool {
		return r.URL.String() == "https://other.example.org/status"
	})).Return(response(http.StatusOK, `{"code": 200}`), nil).Once()

	_, err := s.requester.Do(context.Background(), &client.Request{Path: "https://other.example.org/status"})

	s.NoError(err)
}

func TestRequester(t *testing.T) {
	suite.Run(t, new(RequesterTestSuite))
}
