package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/c2fo/pilot/client"
	"github.com/c2fo/pilot/utils"
)

// ListProjectsParams filters a project listing. Empty filters are not sent.
type ListProjectsParams struct {
	Paging

	Name            string
	Code            string
	Tags            []string
	Description     string
	CreateTimeStart int64
	CreateTimeEnd   int64

	// All lists every project on the platform instead of the caller's own.
	All bool
}

type listProjectsBody struct {
	OrderBy         string   `json:"order_by"`
	OrderType       string   `json:"order_type"`
	PageSize        int      `json:"page_size"`
	Page            int      `json:"page"`
	Name            string   `json:"name,omitempty"`
	Code            string   `json:"code,omitempty"`
	Tags            []string `json:"tags"`
	Description     string   `json:"description,omitempty"`
	CreateTimeStart int64    `json:"create_time_start,omitempty"`
	CreateTimeEnd   int64    `json:"create_time_end,omitempty"`
}

func (p ListProjectsParams) body() listProjectsBody {
	pg := p.Paging.withDefaults(10, "time_created")
	return listProjectsBody{
		OrderBy:         pg.OrderBy,
		OrderType:       pg.OrderType,
		PageSize:        pg.PageSize,
		Page:            pg.Page,
		Name:            p.Name,
		Code:            p.Code,
		Tags:            orEmpty(p.Tags),
		Description:     p.Description,
		CreateTimeStart: p.CreateTimeStart,
		CreateTimeEnd:   p.CreateTimeEnd,
	}
}

func (p ListProjectsParams) values() url.Values {
	v := p.Paging.withDefaults(10, "time_created").values()
	setIf := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	setIf("name", p.Name)
	setIf("code", p.Code)
	setIf("description", p.Description)
	for _, t := range p.Tags {
		v.Add("tags", t)
	}
	if p.CreateTimeStart != 0 {
		v.Set("create_time_start", strconv.FormatInt(p.CreateTimeStart, 10))
	}
	if p.CreateTimeEnd != 0 {
		v.Set("create_time_end", strconv.FormatInt(p.CreateTimeEnd, 10))
	}
	return v
}

// CreateProjectRequest describes a new project.
type CreateProjectRequest struct {
	Name        string
	Code        string
	Description string
	Tags        []string

	// Private hides the project from users who are not members.
	Private bool
}

// NewCreateProjectRequest builds a request from loosely typed input such as a decoded
// YAML or JSON document. tags must be a list of strings.
func NewCreateProjectRequest(raw map[string]any) (CreateProjectRequest, error) {
	var req CreateProjectRequest
	var err error

	if req.Name, err = stringField(raw, "name"); err != nil {
		return req, err
	}
	if req.Code, err = stringField(raw, "code"); err != nil {
		return req, err
	}
	if req.Description, err = stringField(raw, "description"); err != nil {
		return req, err
	}
	lists, err := stringListFields(raw, "tags")
	if err != nil {
		return req, err
	}
	req.Tags = lists["tags"]
	if d, ok := raw["discoverable"].(bool); ok {
		req.Private = !d
	}
	return req, nil
}

type createProjectBody struct {
	Name         string   `json:"name"`
	Code         string   `json:"code"`
	Tags         []string `json:"tags"`
	Description  string   `json:"description"`
	Type         string   `json:"type"`
	Discoverable bool     `json:"discoverable"`
}

// Projects lists, creates and fetches projects.
type Projects struct {
	client *client.Client
}

// NewProjects returns the project module of c.
func NewProjects(c *client.Client) *Projects {
	return &Projects{client: c}
}

// List returns the caller's projects, or every project when params.All is set.
func (p *Projects) List(ctx context.Context, params ListProjectsParams) ([]Project, error) {
	ep := p.client.Endpoints()
	req := &client.Request{Method: http.MethodGet, Path: ep.AllProjects, Params: params.values()}
	if !params.All {
		req = &client.Request{
			Method: http.MethodPost,
			Path:   utils.Endpoint(ep.UserProjects, p.client.Username()),
			JSON:   params.body(),
		}
	}
	return client.Send[[]Project](ctx, p.client.Requester(), req)
}

// Create creates a project. A duplicate code fails with pilot.ErrConflict.
func (p *Projects) Create(ctx context.Context, r CreateProjectRequest) (Project, error) {
	return client.Send[Project](ctx, p.client.Requester(), &client.Request{
		Method: http.MethodPost,
		Path:   p.client.Endpoints().CreateProject,
		JSON: createProjectBody{
			Name:         r.Name,
			Code:         r.Code,
			Tags:         orEmpty(r.Tags),
			Description:  r.Description,
			Type:         "project",
			Discoverable: !r.Private,
		},
	})
}

// Get returns the project identified by geid.
func (p *Projects) Get(ctx context.Context, geid string) (Project, error) {
	return client.Send[Project](ctx, p.client.Requester(), &client.Request{
		Method: http.MethodGet,
		Path:   utils.Endpoint(p.client.Endpoints().ProjectByGeid, geid),
	})
}
