// Package api holds the capability modules of the platform: projects, project users,
// project files, datasets, dataset files and compute nodes.
//
// Modules are thin payload builders over a *client.Client. They keep no state besides
// the trackers mutating operations wait on, and never retry.
package api

import (
	"net/http"
	"net/url"
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// Paging holds the paging and ordering parameters shared by list operations. Zero fields
// take the default of the operation.
type Paging struct {
	Page      int
	PageSize  int
	OrderBy   string
	OrderType string
}

func (p Paging) withDefaults(pageSize int, orderBy string) Paging {
	if p.PageSize <= 0 {
		p.PageSize = pageSize
	}
	if p.OrderBy == "" {
		p.OrderBy = orderBy
	}
	if p.OrderType == "" {
		p.OrderType = OrderDesc
	}
	return p
}

func (p Paging) values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(p.Page))
	v.Set("page_size", strconv.Itoa(p.PageSize))
	v.Set("order_by", p.OrderBy)
	v.Set("order_type", p.OrderType)
	return v
}

// jsonParam encodes v for query parameters that carry JSON documents.
func jsonParam(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func sessionHeader(sessionID string) http.Header {
	h := http.Header{}
	h.Set("Session-ID", sessionID)
	return h
}

func sessionCookie(sessionID string) []*http.Cookie {
	return []*http.Cookie{{Name: "sessionId", Value: sessionID}}
}
