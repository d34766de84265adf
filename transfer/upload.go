package transfer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/c2fo/vfs/v7"

	"github.com/c2fo/pilot"
	"github.com/c2fo/pilot/client"
	"github.com/c2fo/pilot/tracker/poller"
	"github.com/c2fo/pilot/utils"
)

const (
	jobTypeAsFile  = "AS_FILE"
	singleFileData = "SINGLE_FILE_DATA"
	chunkField     = "chunk_data"
)

type uploadItem struct {
	Filename     string `json:"resumable_filename"`
	RelativePath string `json:"resumable_relative_path"`
}

type preUploadBody struct {
	ProjectCode       string       `json:"project_code"`
	Operator          string       `json:"operator"`
	JobType           string       `json:"job_type"`
	Data              []uploadItem `json:"data"`
	UploadMessage     string       `json:"upload_message"`
	CurrentFolderNode string       `json:"current_folder_node"`
}

type preUploadJob struct {
	JobID   string `json:"job_id"`
	Payload struct {
		ResumableIdentifier string `json:"resumable_identifier"`
	} `json:"payload"`
}

type combineBody struct {
	ProjectCode  string `json:"project_code"`
	Operator     string `json:"operator"`
	Identifier   string `json:"resumable_identifier"`
	Filename     string `json:"resumable_filename"`
	RelativePath string `json:"resumable_relative_path"`
	TotalChunks  int64  `json:"resumable_total_chunks"`
	TotalSize    int64  `json:"resumable_total_size"`
}

type combineResult struct {
	JobID string `json:"job_id"`
}

// upload carries the state shared by the phases of one upload.
type upload struct {
	projectCode  string
	operator     string
	filename     string
	relativePath string
	identifier   string
	size         int64
	totalChunks  int64
	header       http.Header
}

// Upload sends src into the caller's folder of a project, under targetPath when set, and
// waits until the upload job succeeds. The file is registered, sent in chunks of the
// configured size, combined on the server, then the job status is polled.
func (t *Transfer) Upload(ctx context.Context, projectCode string, src vfs.File, targetPath string) (pilot.JobRecord, error) {
	size, err := src.Size()
	if err != nil {
		return pilot.JobRecord{}, utils.WrapUploadError(err)
	}
	if t.chunkSize <= 0 {
		return pilot.JobRecord{}, utils.WrapUploadError(fmt.Errorf("invalid chunk size %d", t.chunkSize))
	}

	username := t.client.Username()
	u := &upload{
		projectCode:  projectCode,
		operator:     username,
		filename:     src.Name(),
		relativePath: username,
		size:         int64(size),
		header:       sessionHeader(t.client.NewSessionID()),
	}
	if targetPath != "" {
		u.relativePath = username + "/" + utils.RemoveLeadingSlash(targetPath)
	}
	u.totalChunks = (u.size + t.chunkSize - 1) / t.chunkSize

	log := t.logger.With().Str("project_code", projectCode).Str("file", src.URI()).Logger()

	if err := t.preUpload(ctx, u, targetPath); err != nil {
		return pilot.JobRecord{}, utils.WrapUploadError(err)
	}
	log.Debug().Str("identifier", u.identifier).Int64("chunks", u.totalChunks).Msg("registered upload")

	if err := t.sendChunks(ctx, u, src); err != nil {
		return pilot.JobRecord{}, utils.WrapUploadError(err)
	}

	jobID, err := t.combine(ctx, u)
	if err != nil {
		return pilot.JobRecord{}, utils.WrapUploadError(err)
	}
	log.Debug().Str("job_id", jobID).Msg("combining chunks")

	rec, err := t.waitUpload(ctx, u, jobID)
	if err != nil {
		return rec, utils.WrapUploadError(err)
	}
	log.Info().Str("job_id", jobID).Int64("size", u.size).Msg("uploaded")
	return rec, nil
}

func (t *Transfer) preUpload(ctx context.Context, u *upload, targetPath string) error {
	jobs, err := client.Send[[]preUploadJob](ctx, t.client.Requester(), &client.Request{
		Method: http.MethodPost,
		Path:   t.client.Endpoints().PreUpload,
		JSON: preUploadBody{
			ProjectCode:       u.projectCode,
			Operator:          u.operator,
			JobType:           jobTypeAsFile,
			Data:              []uploadItem{{Filename: u.filename, RelativePath: u.relativePath}},
			CurrentFolderNode: targetPath,
		},
		Headers: u.header,
	})
	if err != nil {
		return err
	}
	if len(jobs) == 0 || jobs[0].Payload.ResumableIdentifier == "" {
		return ErrNoUploadJob
	}
	u.identifier = jobs[0].Payload.ResumableIdentifier
	return nil
}

func (t *Transfer) sendChunks(ctx context.Context, u *upload, src vfs.File) error {
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return err
	}

	buf := make([]byte, t.chunkSize)
	for number := int64(1); ; number++ {
		n, err := io.ReadFull(src, buf)
		if n > 0 {
			if sendErr := t.sendChunk(ctx, u, number, buf[:n]); sendErr != nil {
				return fmt.Errorf("chunk %d of %d: %w", number, u.totalChunks, sendErr)
			}
		}
		switch {
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			return nil
		case err != nil:
			return err
		}
	}
}

func (t *Transfer) sendChunk(ctx context.Context, u *upload, number int64, chunk []byte) error {
	form := map[string]string{
		"project_code":            u.projectCode,
		"operator":                u.operator,
		"resumable_identifier":    u.identifier,
		"resumable_filename":      u.filename,
		"resumable_relative_path": u.relativePath,
		"resumable_dataType":      singleFileData,
		"resumable_chunk_number":  strconv.FormatInt(number, 10),
		"resumable_chunk_size":    strconv.FormatInt(t.chunkSize, 10),
		"resumable_total_chunks":  strconv.FormatInt(u.totalChunks, 10),
		"resumable_total_size":    strconv.FormatInt(u.size, 10),
	}
	_, err := t.client.Requester().Do(ctx, &client.Request{
		Method:  http.MethodPost,
		Path:    t.client.Endpoints().ChunkUpload,
		Form:    form,
		Files:   []client.FormFile{{Field: chunkField, Filename: u.filename, Content: bytes.NewReader(chunk)}},
		Headers: u.header,
	})
	return err
}

func (t *Transfer) combine(ctx context.Context, u *upload) (string, error) {
	res, err := client.Send[combineResult](ctx, t.client.Requester(), &client.Request{
		Method: http.MethodPost,
		Path:   t.client.Endpoints().CombineChunks,
		JSON: combineBody{
			ProjectCode:  u.projectCode,
			Operator:     u.operator,
			Identifier:   u.identifier,
			Filename:     u.filename,
			RelativePath: u.relativePath,
			TotalChunks:  u.totalChunks,
			TotalSize:    u.size,
		},
		Headers: u.header,
	})
	return res.JobID, err
}

// waitUpload polls the upload jobs of the caller until jobID succeeds.
func (t *Transfer) waitUpload(ctx context.Context, u *upload, jobID string) (pilot.JobRecord, error) {
	params := url.Values{}
	params.Set("project_code", u.projectCode)
	params.Set("operator", u.operator)

	op := "upload " + u.filename
	return poller.Until(ctx, op, t.policy(), t.timeout, func(ctx context.Context) (pilot.JobRecord, bool, error) {
		records, err := client.Send[[]pilot.JobRecord](ctx, t.client.Requester(), &client.Request{
			Method:  http.MethodGet,
			Path:    t.client.Endpoints().UploadStatus,
			Params:  params,
			Headers: u.header,
		})
		if err != nil {
			return pilot.JobRecord{}, false, err
		}
		rec, ok := selectJob(records, jobID)
		if !ok {
			return pilot.JobRecord{}, false, nil
		}
		if failed(rec.Status) {
			return rec, false, fmt.Errorf("%s: job %s %s: %w", op, rec.JobID, rec.Status, pilot.ErrJobFailed)
		}
		return rec, rec.Status == pilot.StatusSucceed, nil
	})
}

// selectJob picks the record of jobID, or the first record when none carries that id.
func selectJob(records []pilot.JobRecord, jobID string) (pilot.JobRecord, bool) {
	if len(records) == 0 {
		return pilot.JobRecord{}, false
	}
	for _, r := range records {
		if r.JobID == jobID {
			return r, true
		}
	}
	return records[0], true
}
