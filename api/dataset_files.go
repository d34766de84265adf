package api

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/c2fo/pilot"
	"github.com/c2fo/pilot/client"
	"github.com/c2fo/pilot/logging"
	"github.com/c2fo/pilot/notify/redischannel"
	"github.com/c2fo/pilot/tracker"
	"github.com/c2fo/pilot/tracker/listener"
	"github.com/c2fo/pilot/utils"
)

// ListFilesParams pages the entities of a dataset folder.
type ListFilesParams struct {
	Paging

	// FolderGeid lists a folder instead of the dataset root.
	FolderGeid string

	// Query is sent as a JSON document.
	Query map[string]any
}

// DatasetFilesResult is the outcome of a tracked dataset file operation.
type DatasetFilesResult struct {
	FileOpResult

	// Notifications holds one FINISH notification per processing entity, in arrival order.
	Notifications []pilot.Notification
}

type importBody struct {
	SourceList  []string `json:"source_list"`
	Operator    string   `json:"operator"`
	ProjectGeid string   `json:"project_geid"`
}

type deleteBody struct {
	SourceList []string `json:"source_list"`
	Operator   string   `json:"operator"`
}

type moveBody struct {
	SourceList []string `json:"source_list"`
	Operator   string   `json:"operator"`
	TargetGeid string   `json:"target_geid"`
}

type renameBody struct {
	NewName  string `json:"new_name"`
	Operator string `json:"operator"`
}

// DatasetFiles lists and mutates the files of datasets. Mutations wait for one
// notification per processing entity on the dataset's namespace.
type DatasetFiles struct {
	client  *client.Client
	tracker tracker.Tracker[[]pilot.Notification]
	channel *redischannel.Channel
	logger  zerolog.Logger
}

// DatasetFilesOption is a functional option for configuring DatasetFiles.
type DatasetFilesOption func(*DatasetFiles)

// WithNotificationTracker replaces the listener built from the client configuration.
func WithNotificationTracker(tr tracker.Tracker[[]pilot.Notification]) DatasetFilesOption {
	return func(d *DatasetFiles) {
		d.tracker = tr
	}
}

// NewDatasetFiles returns the dataset file module of c. Unless a tracker is supplied, it
// listens on the Redis channel described by the client's notify configuration; Close
// releases that connection.
func NewDatasetFiles(c *client.Client, opts ...DatasetFilesOption) *DatasetFiles {
	d := &DatasetFiles{
		client: c,
		logger: logging.Component(c.Logger(), "dataset_files"),
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.tracker == nil {
		cfg := c.Config()
		d.channel = redischannel.NewFromConfig(cfg.Notify, redischannel.WithLogger(c.Logger()))
		d.tracker = listener.NewFromConfig(d.channel, cfg, listener.WithLogger(c.Logger()))
	}
	return d
}

// Close releases the notification connection opened by NewDatasetFiles, if any.
func (d *DatasetFiles) Close() error {
	if d.channel == nil {
		return nil
	}
	return d.channel.Close()
}

// List returns a page of the entities under a dataset or one of its folders.
func (d *DatasetFiles) List(ctx context.Context, datasetGeid string, params ListFilesParams) ([]Entity, error) {
	query := params.Query
	if query == nil {
		query = map[string]any{}
	}
	q, err := jsonParam(query)
	if err != nil {
		return nil, err
	}

	v := params.Paging.withDefaults(25, "create_time").values()
	v.Set("query", q)
	if params.FolderGeid != "" {
		v.Set("folder_geid", params.FolderGeid)
	}

	page, err := client.Send[entityPage](ctx, d.client.Requester(), &client.Request{
		Method: http.MethodGet,
		Path:   utils.Endpoint(d.client.Endpoints().DatasetFiles, datasetGeid),
		Params: v,
	})
	if err != nil {
		return nil, err
	}
	return page.Data, nil
}

// Import copies entities of a project into a dataset. Entities the server ignores, such
// as ones already imported, are reported in the result and not waited for.
func (d *DatasetFiles) Import(ctx context.Context, datasetGeid, projectGeid string, sourceList []string) (DatasetFilesResult, error) {
	return d.track(ctx, datasetGeid, pilot.ActionImport, &client.Request{
		Method: http.MethodPut,
		Path:   utils.Endpoint(d.client.Endpoints().DatasetFiles, datasetGeid),
		JSON:   importBody{SourceList: sourceList, Operator: d.client.Username(), ProjectGeid: projectGeid},
	})
}

// Delete removes entities from a dataset.
func (d *DatasetFiles) Delete(ctx context.Context, datasetGeid string, sourceList []string) (DatasetFilesResult, error) {
	return d.track(ctx, datasetGeid, pilot.ActionDelete, &client.Request{
		Method: http.MethodDelete,
		Path:   utils.Endpoint(d.client.Endpoints().DatasetFiles, datasetGeid),
		JSON:   deleteBody{SourceList: sourceList, Operator: d.client.Username()},
	})
}

// Move moves entities into targetGeid, a folder of the dataset or the dataset itself.
func (d *DatasetFiles) Move(ctx context.Context, datasetGeid string, sourceList []string, targetGeid string) (DatasetFilesResult, error) {
	return d.track(ctx, datasetGeid, pilot.ActionMove, &client.Request{
		Method: http.MethodPost,
		Path:   utils.Endpoint(d.client.Endpoints().DatasetFiles, datasetGeid),
		JSON:   moveBody{SourceList: sourceList, Operator: d.client.Username(), TargetGeid: targetGeid},
	})
}

// Rename renames a file. The new name must differ from the current one.
func (d *DatasetFiles) Rename(ctx context.Context, datasetGeid, fileGeid, newName string) (DatasetFilesResult, error) {
	return d.track(ctx, datasetGeid, pilot.ActionRename, &client.Request{
		Method: http.MethodPost,
		Path:   utils.Endpoint(d.client.Endpoints().DatasetFileOps, datasetGeid, fileGeid),
		JSON:   renameBody{NewName: newName, Operator: d.client.Username()},
	})
}

// track dispatches req under a fresh session id and waits for the processing subset of
// the answer to report on the dataset namespace.
func (d *DatasetFiles) track(ctx context.Context, datasetGeid string, action pilot.Action, req *client.Request) (DatasetFilesResult, error) {
	sessionID := d.client.NewSessionID()
	req.Cookies = sessionCookie(sessionID)

	var res DatasetFilesResult
	log, err := tracker.Await[[]pilot.Notification](ctx, d.tracker, datasetGeid, func(ctx context.Context) (tracker.Ticket, error) {
		op, err := client.Send[FileOpResult](ctx, d.client.Requester(), req)
		if err != nil {
			return tracker.Ticket{}, err
		}
		res.FileOpResult = op
		targets := op.Geids()
		d.logger.Debug().
			Str("action", string(action)).
			Str("session_id", sessionID).
			Int("processing", len(targets)).
			Int("ignored", len(op.Ignored)).
			Msg("dispatched")
		return tracker.Ticket{SessionID: sessionID, Action: string(action), Targets: targets}, nil
	})
	if err != nil {
		return res, err
	}
	res.Notifications = log
	return res, nil
}
