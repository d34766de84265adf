package api

import (
	"context"
	"net/http"

	"github.com/c2fo/pilot/client"
	"github.com/c2fo/pilot/utils"
)

// DatasetTypeGeneral is the default dataset type. The other accepted type is BIDS.
const DatasetTypeGeneral = "GENERAL"

// ListDatasetsParams pages the caller's datasets. Filter is sent as is.
type ListDatasetsParams struct {
	Paging
	Filter map[string]any
}

type listDatasetsBody struct {
	OrderBy   string         `json:"order_by"`
	OrderType string         `json:"order_type"`
	PageSize  int            `json:"page_size"`
	Page      int            `json:"page"`
	Filter    map[string]any `json:"filter"`
}

// CreateDatasetRequest describes a new dataset.
type CreateDatasetRequest struct {
	Title            string
	Code             string
	Description      string
	Type             string
	Modality         []string
	Authors          []string
	CollectionMethod []string
	License          string
	Tags             []string
}

// NewCreateDatasetRequest builds a request from loosely typed input such as a decoded
// YAML or JSON document. authors, collection_method, modality and tags must be lists
// of strings.
func NewCreateDatasetRequest(raw map[string]any) (CreateDatasetRequest, error) {
	var req CreateDatasetRequest

	lists, err := stringListFields(raw, "authors", "collection_method", "tags", "modality")
	if err != nil {
		return req, err
	}
	req.Authors = lists["authors"]
	req.CollectionMethod = lists["collection_method"]
	req.Tags = lists["tags"]
	req.Modality = lists["modality"]

	for key, dst := range map[string]*string{
		"title":       &req.Title,
		"code":        &req.Code,
		"description": &req.Description,
		"type":        &req.Type,
		"license":     &req.License,
	} {
		if *dst, err = stringField(raw, key); err != nil {
			return req, err
		}
	}
	return req, nil
}

type createDatasetBody struct {
	Username         string   `json:"username"`
	Title            string   `json:"title"`
	Code             string   `json:"code"`
	Authors          []string `json:"authors"`
	Type             string   `json:"type"`
	Modality         []string `json:"modality"`
	CollectionMethod []string `json:"collection_method"`
	License          string   `json:"license"`
	Tags             []string `json:"tags"`
	Description      string   `json:"description"`
}

// Datasets lists and creates the caller's datasets.
type Datasets struct {
	client *client.Client
}

// NewDatasets returns the dataset module of c.
func NewDatasets(c *client.Client) *Datasets {
	return &Datasets{client: c}
}

// List returns a page of the caller's datasets.
func (d *Datasets) List(ctx context.Context, params ListDatasetsParams) ([]Dataset, error) {
	pg := params.Paging.withDefaults(10, "time_created")
	filter := params.Filter
	if filter == nil {
		filter = map[string]any{}
	}
	return client.Send[[]Dataset](ctx, d.client.Requester(), &client.Request{
		Method: http.MethodPost,
		Path:   utils.Endpoint(d.client.Endpoints().UserDatasets, d.client.Username()),
		JSON: listDatasetsBody{
			OrderBy:   pg.OrderBy,
			OrderType: pg.OrderType,
			PageSize:  pg.PageSize,
			Page:      pg.Page,
			Filter:    filter,
		},
	})
}

// Create creates a dataset owned by the caller. An empty Type is sent as GENERAL.
func (d *Datasets) Create(ctx context.Context, r CreateDatasetRequest) (Dataset, error) {
	if r.Type == "" {
		r.Type = DatasetTypeGeneral
	}
	return client.Send[Dataset](ctx, d.client.Requester(), &client.Request{
		Method: http.MethodPost,
		Path:   d.client.Endpoints().Dataset,
		JSON: createDatasetBody{
			Username:         d.client.Username(),
			Title:            r.Title,
			Code:             r.Code,
			Authors:          orEmpty(r.Authors),
			Type:             r.Type,
			Modality:         orEmpty(r.Modality),
			CollectionMethod: orEmpty(r.CollectionMethod),
			License:          r.License,
			Tags:             orEmpty(r.Tags),
			Description:      r.Description,
		},
	})
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
