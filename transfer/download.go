package transfer

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/c2fo/vfs/v7"
	"github.com/golang-jwt/jwt/v5"

	"github.com/c2fo/pilot"
	"github.com/c2fo/pilot/client"
	"github.com/c2fo/pilot/tracker/poller"
	"github.com/c2fo/pilot/utils"
)

// maxErrorBody caps how much of a failed download response is kept on the error.
const maxErrorBody = 64 << 10

type downloadTarget struct {
	Geid string `json:"geid"`
}

type preDownloadBody struct {
	Files       []downloadTarget `json:"files"`
	ProjectCode string           `json:"project_code"`
	Operator    string           `json:"operator"`
	SessionID   string           `json:"session_id"`
}

type preDownloadResult struct {
	Status  pilot.Status `json:"status"`
	Payload struct {
		HashCode string `json:"hash_code"`
		Zone     string `json:"zone"`
	} `json:"payload"`
}

// Downloaded is the outcome of a download.
type Downloaded struct {
	// File is the written file in the destination location.
	File vfs.File

	// Job is the settled download preparation record.
	Job pilot.JobRecord

	Size int64
}

// Download asks the platform to pack geids, waits while it is ZIPPING and streams the
// result into dst. The file name is taken from the full_path claim of the hash code.
func (t *Transfer) Download(ctx context.Context, projectCode string, geids []string, dst vfs.Location) (Downloaded, error) {
	sessionID := t.client.NewSessionID()
	header := sessionHeader(sessionID)

	files := make([]downloadTarget, len(geids))
	for i, g := range geids {
		files[i] = downloadTarget{Geid: g}
	}
	pre, err := client.Send[preDownloadResult](ctx, t.client.Requester(), &client.Request{
		Method: http.MethodPost,
		Path:   t.client.Endpoints().PreDownload,
		JSON: preDownloadBody{
			Files:       files,
			ProjectCode: projectCode,
			Operator:    t.client.Username(),
			SessionID:   sessionID,
		},
		Headers: header,
	})
	if err != nil {
		return Downloaded{}, utils.WrapDownloadError(err)
	}
	hash := pre.Payload.HashCode
	if hash == "" {
		return Downloaded{}, utils.WrapDownloadError(ErrNoHashCode)
	}

	name, err := FileName(hash)
	if err != nil {
		return Downloaded{}, utils.WrapDownloadError(err)
	}
	log := t.logger.With().Str("project_code", projectCode).Str("file", name).Logger()

	rec, err := t.waitPacked(ctx, hash, header)
	if err != nil {
		return Downloaded{Job: rec}, utils.WrapDownloadError(err)
	}
	log.Debug().Str("status", string(rec.Status)).Msg("download ready")

	f, size, err := t.stream(ctx, hash, name, dst)
	if err != nil {
		return Downloaded{Job: rec}, utils.WrapDownloadError(err)
	}
	log.Info().Str("dst", f.URI()).Int64("size", size).Msg("downloaded")
	return Downloaded{File: f, Job: rec, Size: size}, nil
}

// FileName returns the base name of the full_path claim of a download hash code. The
// token signature is not verified; the name only selects the local file name.
func FileName(hashCode string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(hashCode, claims); err != nil {
		return "", err
	}
	fullPath, _ := claims["full_path"].(string)
	name := utils.BaseName(fullPath)
	if name == "" || name == "." || name == "/" {
		return "", ErrNoFullPath
	}
	return name, nil
}

func (t *Transfer) waitPacked(ctx context.Context, hash string, header http.Header) (pilot.JobRecord, error) {
	path := utils.Endpoint(t.client.Endpoints().DownloadStatus, hash)
	op := "download " + hash
	return poller.Until(ctx, op, t.policy(), t.timeout, func(ctx context.Context) (pilot.JobRecord, bool, error) {
		rec, err := client.Send[pilot.JobRecord](ctx, t.client.Requester(), &client.Request{
			Method:  http.MethodGet,
			Path:    path,
			Headers: header,
		})
		if err != nil {
			return rec, false, err
		}
		if failed(rec.Status) {
			return rec, false, fmt.Errorf("download job %s: %w", rec.Status, pilot.ErrJobFailed)
		}
		return rec, rec.Status != pilot.StatusZipping, nil
	})
}

func (t *Transfer) stream(ctx context.Context, hash, name string, dst vfs.Location) (vfs.File, int64, error) {
	resp, err := t.client.Requester().Do(ctx, &client.Request{
		Method: http.MethodGet,
		Path:   utils.Endpoint(t.client.Endpoints().Download, hash),
		Stream: true,
	})
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, 0, pilot.NewResponseError(resp.StatusCode, body)
	}

	f, err := dst.NewFile(name)
	if err != nil {
		return nil, 0, err
	}
	size, err := utils.TouchCopyBuffered(f, resp.Body, utils.CopyBufferSize)
	if err != nil {
		_ = f.Close()
		return nil, 0, err
	}
	if err := f.Close(); err != nil {
		return nil, 0, err
	}
	return f, size, nil
}
