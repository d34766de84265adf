package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/c2fo/pilot/client"
	"github.com/c2fo/pilot/utils"
)

// ErrNotHPCClient is returned by NewHPC for a client that did not log in to the compute gateway.
var ErrNotHPCClient = errors.New("client is not logged in to the compute gateway")

// HPC manages the nodes, partitions and jobs of a Slurm cluster through the compute gateway.
// Scheduler documents are returned undecoded.
type HPC struct {
	client    *client.Client
	slurmHost string
	protocol  string
}

// HPCOption is a functional option for configuring HPC.
type HPCOption func(*HPC)

// WithProtocol sets the protocol used to reach the Slurm host. Default is http.
func WithProtocol(protocol string) HPCOption {
	return func(h *HPC) {
		h.protocol = protocol
	}
}

// NewHPC returns the compute module of c, a client built with client.WithHPC, for the
// Slurm REST host slurmHost.
func NewHPC(c *client.Client, slurmHost string, opts ...HPCOption) (*HPC, error) {
	if !c.HPC() {
		return nil, ErrNotHPCClient
	}
	h := &HPC{client: c, slurmHost: slurmHost, protocol: "http"}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// the compute gateway expects the bare token, without the Bearer scheme.
func (h *HPC) headers() http.Header {
	hd := http.Header{}
	hd.Set("Authorization", h.client.Credentials().AccessToken())
	return hd
}

func (h *HPC) params() url.Values {
	v := url.Values{}
	v.Set("username", h.client.Username())
	v.Set("slurm_host", h.slurmHost)
	v.Set("protocol", h.protocol)
	return v
}

func (h *HPC) get(ctx context.Context, path string) (RawResult, error) {
	return client.Send[RawResult](ctx, h.client.Requester(), &client.Request{
		Method:  http.MethodGet,
		Path:    path,
		Params:  h.params(),
		Headers: h.headers(),
	})
}

// ListNodes returns the nodes of the cluster.
func (h *HPC) ListNodes(ctx context.Context) (RawResult, error) {
	return h.get(ctx, h.client.Endpoints().HPCNodes)
}

// GetNode returns the description of one node.
func (h *HPC) GetNode(ctx context.Context, name string) (RawResult, error) {
	return h.get(ctx, utils.Endpoint(h.client.Endpoints().HPCNode, name))
}

// ListPartitions returns the partitions of the cluster.
func (h *HPC) ListPartitions(ctx context.Context) (RawResult, error) {
	return h.get(ctx, h.client.Endpoints().HPCPartitions)
}

// GetPartition returns the description of one partition.
func (h *HPC) GetPartition(ctx context.Context, name string) (RawResult, error) {
	return h.get(ctx, utils.Endpoint(h.client.Endpoints().HPCPartition, name))
}

type submitJobBody struct {
	Username  string         `json:"username"`
	SlurmHost string         `json:"slurm_host"`
	Protocol  string         `json:"protocol"`
	JobInfo   map[string]any `json:"job_info"`
}

// SubmitJob submits a batch job described by jobInfo, in the Slurm REST job submission format.
func (h *HPC) SubmitJob(ctx context.Context, jobInfo map[string]any) (RawResult, error) {
	return client.Send[RawResult](ctx, h.client.Requester(), &client.Request{
		Method:  http.MethodPost,
		Path:    h.client.Endpoints().HPCSubmitJob,
		Headers: h.headers(),
		JSON: submitJobBody{
			Username:  h.client.Username(),
			SlurmHost: h.slurmHost,
			Protocol:  h.protocol,
			JobInfo:   jobInfo,
		},
	})
}

// GetJob returns the whole response document for a job, envelope included.
func (h *HPC) GetJob(ctx context.Context, jobID string) (RawResult, error) {
	resp, err := h.client.Requester().Do(ctx, &client.Request{
		Method:  http.MethodGet,
		Path:    utils.Endpoint(h.client.Endpoints().HPCJob, jobID),
		Params:  h.params(),
		Headers: h.headers(),
	})
	if err != nil {
		return nil, err
	}
	return RawResult(resp.Raw), nil
}
