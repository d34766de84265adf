// Package utils holds small helpers shared by the client, trackers and transfers.
package utils

import (
	"fmt"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/google/uuid"
)

// CopyBufferSize is the buffer used when streaming downloads.
const CopyBufferSize = 8192

// RemoveTrailingSlash removes trailing slash, if any
func RemoveTrailingSlash(p string) string {
	return strings.TrimRight(p, "/")
}

// RemoveLeadingSlash removes leading slash, if any
func RemoveLeadingSlash(p string) string {
	return strings.TrimLeft(p, "/")
}

// EnsureTrailingSlash only ever uses / since it is used for URLs, never a Windows OS path.
func EnsureTrailingSlash(dir string) string {
	if strings.HasSuffix(dir, "/") {
		return dir
	}
	return dir + "/"
}

// EnsureLeadingSlash is like EnsureTrailingSlash except that it adds the leading slash if needed.
func EnsureLeadingSlash(dir string) string {
	if strings.HasPrefix(dir, "/") {
		return dir
	}
	return "/" + dir
}

// JoinURL appends a relative endpoint to base, keeping exactly one slash between them
// and preserving a trailing slash on endpoint.
func JoinURL(base, endpoint string) string {
	if endpoint == "" {
		return base
	}
	return RemoveTrailingSlash(base) + EnsureLeadingSlash(endpoint)
}

// Endpoint formats a path template with url-escaped path segments.
func Endpoint(template string, segments ...string) string {
	args := make([]any, len(segments))
	for i, s := range segments {
		args[i] = url.PathEscape(s)
	}
	return fmt.Sprintf(template, args...)
}

// NewSessionID returns a client-generated correlation id of the form <username>-<uuid4>.
func NewSessionID(username string) string {
	return username + "-" + uuid.NewString()
}

// Namespace returns the notification namespace of a dataset.
func Namespace(datasetGeid string) string {
	return EnsureLeadingSlash(datasetGeid)
}

// BaseName returns the last element of a slash separated path, or "" for an empty path.
func BaseName(p string) string {
	if p == "" {
		return ""
	}
	return path.Base(strings.ReplaceAll(p, "\\", "/"))
}

// PathToURI takes a relative or absolute path and returns an OS URI.
// We assume non-scheme path is an OS File or Location.
// We assume relative paths are relative to the pwd (program's working directory)
//
// /absolute/path/to/file.txt : file:///absolute/path/to/file.txt
// /some/absolute/path/       : file:///some/absolute/path/
// relative/path/to/file.txt  : file:///absolute/path/with/relative/path/to/file.txt
// s3://bucket/key.txt        : s3://bucket/key.txt
func PathToURI(p string) (string, error) {
	if p == "" {
		p = "/"
	}

	u, err := url.Parse(p)
	if err != nil {
		return "", err
	}

	// if scheme is found, it's already a URI
	if u.Scheme != "" {
		return p, nil
	}

	absPath := p
	if p[0] != '/' {
		absPath, err = filepath.Abs(p)
		if err != nil {
			return "", err
		}
		if runtime.GOOS == "windows" {
			absPath = "/" + absPath
		}
	}

	absPath = filepath.ToSlash(absPath)

	// Abs() strips trailing slashes so add back if original path had slash
	if strings.HasSuffix(p, "/") {
		absPath = EnsureTrailingSlash(absPath)
	}

	return "file://" + absPath, nil
}

// TouchCopyBuffered is a wrapper around io.CopyBuffer which ensures that even an empty reader
// results in a Write() call on the writer, so empty downloads still create their target file.
func TouchCopyBuffered(writer io.Writer, reader io.Reader, bufferSize int) (int64, error) {
	if bufferSize <= 0 {
		bufferSize = CopyBufferSize
	}
	size, err := io.CopyBuffer(writer, reader, make([]byte, bufferSize))
	if err != nil {
		return size, err
	}
	if size == 0 {
		if _, err := writer.Write([]byte{}); err != nil {
			return 0, err
		}
	}
	return size, nil
}

// Ptr returns a pointer to value.
func Ptr[T any](value T) *T {
	return &value
}
