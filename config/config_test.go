package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type configTestSuite struct {
	suite.Suite
	dir string
}

func (s *configTestSuite) SetupTest() {
	s.dir = s.T().TempDir()
}

func (s *configTestSuite) writeFile(name, body string) string {
	path := filepath.Join(s.dir, name)
	s.Require().NoError(os.WriteFile(path, []byte(body), 0o600))
	return path
}

func (s *configTestSuite) TestLoadYAML() {
	path := s.writeFile("pilot.yaml", `
api_gateway: https://pilot.example.org/pilot/
poll_interval: 500ms
notify:
  addr: redis:6379
  prefix: pilot
endpoints:
  auth: /custom/auth
`)

	cfg, err := Load(path)
	s.Require().NoError(err)
	s.Equal("https://pilot.example.org/pilot", cfg.APIGateway)
	s.Equal(cfg.APIGateway, cfg.HPCEndpoint)
	s.Equal(500*time.Millisecond, cfg.PollInterval)
	s.Equal(20*time.Second, cfg.NotifyTimeout, "defaults survive partial files")
	s.Equal("redis:6379", cfg.Notify.Addr)
	s.Equal("pilot", cfg.Notify.Prefix)
	s.Equal("DATASET_FILE_NOTIFICATION", cfg.Notify.Event)
	s.Equal("/custom/auth", cfg.Endpoints.Auth)
	s.Equal("/portal/v1/dataset", cfg.Endpoints.Dataset)
	s.EqualValues(2*1024*1024, cfg.ChunkSize)
}

func (s *configTestSuite) TestEnvOverridesFile() {
	path := s.writeFile("pilot.json", `{"api_gateway": "http://file", "notify": {"db": 1}}`)
	s.T().Setenv("PILOT_API_GATEWAY", "http://env")
	s.T().Setenv("PILOT_NOTIFY_DB", "3")
	s.T().Setenv("PILOT_ENDPOINTS_DATASET", "/v2/dataset")
	s.T().Setenv("PILOT_CHUNK_SIZE", "1024")

	cfg, err := Load(path)
	s.Require().NoError(err)
	s.Equal("http://env", cfg.APIGateway)
	s.Equal(3, cfg.Notify.DB)
	s.Equal("/v2/dataset", cfg.Endpoints.Dataset)
	s.EqualValues(1024, cfg.ChunkSize)
}

func (s *configTestSuite) TestLoadEnvOnly() {
	s.T().Setenv("PILOT_API_GATEWAY", "http://env-only")
	s.T().Setenv("PILOT_HPC_ENDPOINT", "http://hpc/")

	cfg, err := Load("")
	s.Require().NoError(err)
	s.Equal("http://env-only", cfg.APIGateway)
	s.Equal("http://hpc", cfg.HPCEndpoint)
}

func (s *configTestSuite) TestLoadErrors() {
	tests := []struct {
		name string
		path string
	}{
		{name: "missing gateway", path: s.writeFile("empty.yaml", "log_level: debug\n")},
		{name: "missing file", path: filepath.Join(s.dir, "nope.yaml")},
		{name: "bad chunk size", path: s.writeFile("chunk.yaml", "api_gateway: http://x\nchunk_size: -1\n")},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := Load(tt.path)
			s.Error(err)
		})
	}
}

func (s *configTestSuite) TestWithGateway() {
	cfg, err := Default().WithGateway("http://localhost:8080/")
	s.Require().NoError(err)
	s.Equal("http://localhost:8080", cfg.APIGateway)
	s.Equal("http://localhost:8080", cfg.HPCEndpoint)

	sparse, err := Config{Notify: Notify{Prefix: "pilot"}}.WithGateway("http://localhost")
	s.Require().NoError(err)
	s.Equal("pilot", sparse.Notify.Prefix)
	s.Equal("localhost:6379", sparse.Notify.Addr)
	s.Equal(2*time.Second, sparse.PollInterval)
	s.Equal("/portal/users/auth", sparse.Endpoints.Auth)

	_, err = Default().WithGateway("")
	s.ErrorIs(err, ErrMissingGateway)
}

func TestConfig(t *testing.T) {
	suite.Run(t, new(configTestSuite))
}
