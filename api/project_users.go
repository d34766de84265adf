package api

import (
	"context"
	"net/http"

	"github.com/c2fo/pilot/client"
	"github.com/c2fo/pilot/utils"
)

// ProjectUsers manages project membership.
type ProjectUsers struct {
	client *client.Client
}

// NewProjectUsers returns the project user module of c.
func NewProjectUsers(c *client.Client) *ProjectUsers {
	return &ProjectUsers{client: c}
}

// List returns the members of a project.
func (u *ProjectUsers) List(ctx context.Context, projectGeid string) ([]ProjectUser, error) {
	return client.Send[[]ProjectUser](ctx, u.client.Requester(), &client.Request{
		Method: http.MethodGet,
		Path:   utils.Endpoint(u.client.Endpoints().ProjectUsers, projectGeid),
	})
}

type updateRoleBody struct {
	OldRole string `json:"old_role"`
	NewRole string `json:"new_role"`
}

// UpdateRole changes the role of username in a project from oldRole to newRole.
func (u *ProjectUsers) UpdateRole(ctx context.Context, projectGeid, username, oldRole, newRole string) (ProjectUser, error) {
	return client.Send[ProjectUser](ctx, u.client.Requester(), &client.Request{
		Method: http.MethodPut,
		Path:   utils.Endpoint(u.client.Endpoints().ProjectUserOps, projectGeid, username),
		JSON:   updateRoleBody{OldRole: oldRole, NewRole: newRole},
	})
}
