package api

import (
	"context"
	"net/http"

	"github.com/c2fo/vfs/v7"
	"github.com/rs/zerolog"

	"github.com/c2fo/pilot"
	"github.com/c2fo/pilot/client"
	"github.com/c2fo/pilot/logging"
	"github.com/c2fo/pilot/tracker"
	"github.com/c2fo/pilot/tracker/poller"
	"github.com/c2fo/pilot/transfer"
)

const (
	ZoneGreenroom = "Greenroom"
	ZoneCore      = "Core"
)

// ListChildrenParams pages the entities under a project or one of its folders.
type ListChildrenParams struct {
	Paging

	// FolderGeid lists a folder instead of the project root.
	FolderGeid string

	// Zone is Greenroom (default) or Core.
	Zone string

	// SourceType is one of Project, Folder (default), TrashFile or Collection.
	SourceType string

	// Query is sent as a JSON document. Archived entities are always excluded.
	Query map[string]any

	Partial []string
}

type fileTarget struct {
	Geid string `json:"geid"`
}

type fileActionPayload struct {
	Targets     []fileTarget `json:"targets"`
	Destination string       `json:"destination,omitempty"`
}

type fileActionBody struct {
	Payload     fileActionPayload `json:"payload"`
	Operator    string            `json:"operator"`
	Operation   string            `json:"operation"`
	ProjectGeid string            `json:"project_geid"`
	SessionID   string            `json:"session_id,omitempty"`
}

// ProjectFiles lists, copies, deletes, uploads and downloads project files. Copies and
// deletes wait on the project's job status records.
type ProjectFiles struct {
	client   *client.Client
	projects *Projects
	tracker  tracker.Tracker[pilot.JobRecord]
	transfer *transfer.Transfer
	logger   zerolog.Logger
}

// ProjectFilesOption is a functional option for configuring ProjectFiles.
type ProjectFilesOption func(*ProjectFiles)

// WithJobTracker replaces the job status poller built from the client configuration.
func WithJobTracker(tr tracker.Tracker[pilot.JobRecord]) ProjectFilesOption {
	return func(p *ProjectFiles) {
		p.tracker = tr
	}
}

// WithTransfer replaces the transfer built from the client configuration.
func WithTransfer(t *transfer.Transfer) ProjectFilesOption {
	return func(p *ProjectFiles) {
		p.transfer = t
	}
}

// NewProjectFiles returns the project file module of c.
func NewProjectFiles(c *client.Client, opts ...ProjectFilesOption) *ProjectFiles {
	p := &ProjectFiles{
		client:   c,
		projects: NewProjects(c),
		logger:   logging.Component(c.Logger(), "project_files"),
	}
	for _, opt := range opts {
		opt(p)
	}

	cfg := c.Config()
	if p.tracker == nil {
		p.tracker = poller.New(c.Requester(),
			poller.WithInterval(cfg.PollInterval),
			poller.WithTimeout(cfg.PollTimeout),
			poller.WithTaskPath(cfg.Endpoints.ProjectFileTask),
			poller.WithLogger(c.Logger()),
		)
	}
	if p.transfer == nil {
		p.transfer = transfer.New(c)
	}
	return p
}

// ListChildren returns a page of the entities under a project or one of its folders.
func (p *ProjectFiles) ListChildren(ctx context.Context, projectGeid string, params ListChildrenParams) ([]Entity, error) {
	query := map[string]any{}
	for k, v := range params.Query {
		query[k] = v
	}
	query["archived"] = false

	q, err := jsonParam(query)
	if err != nil {
		return nil, err
	}
	partial, err := jsonParam(orEmpty(params.Partial))
	if err != nil {
		return nil, err
	}

	v := params.Paging.withDefaults(10, "time_created").values()
	v.Set("project_geid", projectGeid)
	v.Set("zone", orDefault(params.Zone, ZoneGreenroom))
	v.Set("source_type", orDefault(params.SourceType, "Folder"))
	v.Set("partial", partial)
	v.Set("query", q)

	page, err := client.Send[entityPage](ctx, p.client.Requester(), &client.Request{
		Method: http.MethodGet,
		Path:   p.client.Endpoints().FileMeta + params.FolderGeid,
		Params: v,
	})
	if err != nil {
		return nil, err
	}
	return page.Data, nil
}

// CopyToCore copies entities from the Greenroom zone into destinationGeid in the Core
// zone and returns the settled job record. A TERMINATED record is returned without error;
// callers inspect its status.
func (p *ProjectFiles) CopyToCore(ctx context.Context, projectGeid string, sourceGeids []string, destinationGeid string) (pilot.JobRecord, error) {
	return p.track(ctx, projectGeid, pilot.JobTypeTransfer, func(sessionID string) fileActionBody {
		return fileActionBody{
			Payload:     fileActionPayload{Targets: targets(sourceGeids), Destination: destinationGeid},
			Operator:    p.client.Username(),
			Operation:   "copy",
			ProjectGeid: projectGeid,
		}
	})
}

// Delete moves entities of a project to the trash and returns the settled job record.
func (p *ProjectFiles) Delete(ctx context.Context, projectGeid string, geids []string) (pilot.JobRecord, error) {
	return p.track(ctx, projectGeid, pilot.JobTypeDelete, func(sessionID string) fileActionBody {
		return fileActionBody{
			Payload:     fileActionPayload{Targets: targets(geids)},
			Operator:    p.client.Username(),
			Operation:   "delete",
			ProjectGeid: projectGeid,
			SessionID:   sessionID,
		}
	})
}

// Upload sends src in chunks into the caller's folder of a project, under targetPath
// when set, and waits for the upload job to succeed.
func (p *ProjectFiles) Upload(ctx context.Context, projectCode string, src vfs.File, targetPath string) (pilot.JobRecord, error) {
	return p.transfer.Upload(ctx, projectCode, src, targetPath)
}

// Download prepares geids for download, waits until they are packed and streams the
// result into dst.
func (p *ProjectFiles) Download(ctx context.Context, projectCode string, geids []string, dst vfs.Location) (transfer.Downloaded, error) {
	return p.transfer.Download(ctx, projectCode, geids, dst)
}

// track resolves the project code, which scopes the job status records, then dispatches
// the file action and polls until its job settles.
func (p *ProjectFiles) track(ctx context.Context, projectGeid string, jobType pilot.JobType, body func(sessionID string) fileActionBody) (pilot.JobRecord, error) {
	project, err := p.projects.Get(ctx, projectGeid)
	if err != nil {
		return pilot.JobRecord{}, err
	}

	return tracker.Await[pilot.JobRecord](ctx, p.tracker, project.Code, func(ctx context.Context) (tracker.Ticket, error) {
		sessionID := p.client.NewSessionID()
		records, err := client.Send[[]pilot.JobRecord](ctx, p.client.Requester(), &client.Request{
			Method:  http.MethodPost,
			Path:    p.client.Endpoints().FileActions,
			JSON:    body(sessionID),
			Headers: sessionHeader(sessionID),
		})
		if err != nil {
			return tracker.Ticket{}, err
		}

		// The server may assign its own session id to the job.
		if len(records) > 0 && records[0].SessionID != "" {
			sessionID = records[0].SessionID
		}
		p.logger.Debug().
			Str("job_type", string(jobType)).
			Str("project_code", project.Code).
			Str("session_id", sessionID).
			Msg("dispatched")
		return tracker.Ticket{SessionID: sessionID, Action: string(jobType)}, nil
	})
}

func targets(geids []string) []fileTarget {
	out := make([]fileTarget, len(geids))
	for i, g := range geids {
		out[i] = fileTarget{Geid: g}
	}
	return out
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
