package api

import (
	jsoniter "github.com/json-iterator/go"
)

// Project is a project container.
type Project struct {
	ID             int64    `json:"id"`
	GlobalEntityID string   `json:"global_entity_id"`
	Name           string   `json:"name"`
	Code           string   `json:"code"`
	Description    string   `json:"description"`
	Tags           []string `json:"tags"`
	Discoverable   bool     `json:"discoverable"`
	Type           string   `json:"type"`
	TimeCreated    string   `json:"time_created"`
	TimeModified   string   `json:"time_lastmodified"`
}

// ProjectUser is a member of a project.
type ProjectUser struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"permission"`
	Status    string `json:"status"`
}

// Dataset is a dataset owned by a user.
type Dataset struct {
	ID               int64    `json:"id"`
	GlobalEntityID   string   `json:"global_entity_id"`
	Title            string   `json:"title"`
	Code             string   `json:"code"`
	Creator          string   `json:"creator"`
	Description      string   `json:"description"`
	Type             string   `json:"type"`
	Modality         []string `json:"modality"`
	Authors          []string `json:"authors"`
	CollectionMethod []string `json:"collection_method"`
	License          string   `json:"license"`
	Tags             []string `json:"tags"`
	Size             int64    `json:"size"`
	TotalFiles       int      `json:"total_files"`
	TimeCreated      string   `json:"time_created"`
}

// Entity is a file or folder node.
type Entity struct {
	ID             int64    `json:"id"`
	GlobalEntityID string   `json:"global_entity_id"`
	Name           string   `json:"name"`
	Labels         []string `json:"labels"`
	Uploader       string   `json:"uploader"`
	ProjectCode    string   `json:"project_code"`
	DatasetCode    string   `json:"dataset_code"`
	FileSize       int64    `json:"file_size"`
	Location       string   `json:"location"`
	DisplayPath    string   `json:"display_path"`
	Archived       bool     `json:"archived"`
	Tags           []string `json:"tags"`
	TimeCreated    string   `json:"time_created"`
	TimeModified   string   `json:"time_lastmodified"`
}

// IsFolder reports whether the entity carries the Folder label.
func (e Entity) IsFolder() bool {
	for _, l := range e.Labels {
		if l == "Folder" {
			return true
		}
	}
	return false
}

// entityPage is the result shape of paged entity listings.
type entityPage struct {
	Data []Entity `json:"data"`
}

// FileOpResult is the immediate answer to a dataset file mutation. Ignored entities were
// rejected by the server (duplicates, blocked items) and produce no notification.
type FileOpResult struct {
	Processing []Entity `json:"processing"`
	Ignored    []Entity `json:"ignored"`
}

// Geids returns the global entity ids of the processing subset.
func (r FileOpResult) Geids() []string {
	ids := make([]string, 0, len(r.Processing))
	for _, e := range r.Processing {
		if e.GlobalEntityID != "" {
			ids = append(ids, e.GlobalEntityID)
		}
	}
	return ids
}

// RawResult is a server result passed through undecoded. It is used where the platform
// relays documents it does not own, such as scheduler node descriptions.
type RawResult = jsoniter.RawMessage
