/*
Package pilot is a Go client for the PILOT data-management platform.

It issues authenticated requests for project, dataset and file management and
waits for the asynchronous jobs those requests start. Two completion strategies
are provided:

  - tracker/poller polls the project file task endpoint until the job for a
    session id leaves the RUNNING state.
  - tracker/listener subscribes to a dataset namespace on the notification
    channel and collects one FINISH notification per dispatched id.

Both satisfy tracker.Tracker and are driven by tracker.Await, which opens the
watch, dispatches the mutation and blocks until the job settles.

# Usage

	cfg, err := config.Load("pilot.yaml")
	if err != nil {
		return err
	}
	c, err := client.New(ctx, client.WithConfig(cfg), client.WithPassword("alice", os.Getenv("PILOT_PASSWORD")))
	if err != nil {
		return err
	}

	// listens on the Redis channel configured under notify
	files := api.NewDatasetFiles(c)
	defer files.Close()

	res, err := files.Move(ctx, datasetGeid, []string{fileGeid}, targetFolderGeid)
	if err != nil {
		return err
	}
	for _, n := range res.Notifications {
		fmt.Println(n.SourceID(), n.Payload.Status)
	}

# File transfer

Uploads and downloads read from and write to any vfs location, so a project file
can be streamed straight from s3://, gs:// or a local path:

	src, err := vfssimple.NewFile("s3://bucket/scans/brain.nii")
	...
	rec, err := api.NewProjectFiles(c).Upload(ctx, "indoctestproject", src, "scans")

The pilotcp command wraps the same calls for the shell.

# Errors

Responses whose embedded code is 300 or higher are returned as *ResponseError,
which unwraps to ErrBadRequest, ErrUnauthorized, ErrForbidden, ErrNotFound,
ErrConflict or ErrInternalServerError:

	if errors.Is(err, pilot.ErrNotFound) {
		...
	}

Rejected logins return *AuthenticationError, invalid list payloads return
*PayloadTypeError and trackers that exhaust their budget return *TimeoutError.
*/
package pilot
