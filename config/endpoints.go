package config

// Endpoints holds the relative paths of every platform endpoint. Paths containing
// %s are formatted with the resource identifiers named in the comment above the field.
type Endpoints struct {
	Auth string `mapstructure:"auth"`

	// %s: username
	UserDatasets string `mapstructure:"user_datasets"`
	Dataset      string `mapstructure:"dataset"`

	// %s: dataset geid
	DatasetFiles string `mapstructure:"dataset_files"`

	// %s: dataset geid, file geid
	DatasetFileOps  string `mapstructure:"dataset_file_ops"`
	PreUpload       string `mapstructure:"pre_upload"`
	ChunkUpload     string `mapstructure:"chunk_upload"`
	CombineChunks   string `mapstructure:"combine_chunks"`
	UploadStatus    string `mapstructure:"upload_status"`
	ProjectFileTask string `mapstructure:"project_file_task"`

	// %s: project geid
	ProjectUsers string `mapstructure:"project_users"`

	// %s: project geid, username
	ProjectUserOps string `mapstructure:"project_user_ops"`
	AllProjects    string `mapstructure:"all_projects"`

	// %s: username
	UserProjects  string `mapstructure:"user_projects"`
	CreateProject string `mapstructure:"create_project"`

	// %s: project geid
	ProjectByGeid string `mapstructure:"project_by_geid"`
	FileMeta      string `mapstructure:"file_meta"`
	FileActions   string `mapstructure:"file_actions"`
	PreDownload   string `mapstructure:"pre_download"`

	// %s: hash code
	DownloadStatus string `mapstructure:"download_status"`

	// %s: hash code
	Download string `mapstructure:"download"`

	HPCAuth  string `mapstructure:"hpc_auth"`
	HPCNodes string `mapstructure:"hpc_nodes"`

	// %s: node name
	HPCNode       string `mapstructure:"hpc_node"`
	HPCPartitions string `mapstructure:"hpc_partitions"`

	// %s: partition name
	HPCPartition string `mapstructure:"hpc_partition"`
	HPCSubmitJob string `mapstructure:"hpc_submit_job"`

	// %s: job id
	HPCJob string `mapstructure:"hpc_job"`
}

// DefaultEndpoints returns the paths served by a stock platform deployment.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Auth: "/portal/users/auth",

		UserDatasets:    "/portal/v1/users/%s/datasets",
		Dataset:         "/portal/v1/dataset",
		DatasetFiles:    "/portal/v1/dataset/%s/files",
		DatasetFileOps:  "/portal/v1/dataset/%s/files/%s",
		PreUpload:       "/upload/gr/v1/files/jobs",
		ChunkUpload:     "/upload/gr/v1/files/chunks",
		CombineChunks:   "/upload/gr/v1/files",
		UploadStatus:    "/upload/gr/v1/files/jobs",
		ProjectFileTask: "/portal/v1/files/actions/tasks",
		ProjectUsers:    "/portal/v1/containers/%s/users",
		ProjectUserOps:  "/portal/v1/containers/%s/users/%s",
		AllProjects:     "/portal/v1/containers/",
		UserProjects:    "/portal/v1/users/%s/containers",
		CreateProject:   "/portal/v1/projects",
		ProjectByGeid:   "/portal/v1/project/%s",
		FileMeta:        "/portal/v1/files/entity/meta/",
		FileActions:     "/portal/v1/files/actions",
		PreDownload:     "/portal/v2/download/pre",
		DownloadStatus:  "/portal/download/gr/v1/download/status/%s",
		Download:        "/portal/download/gr/v1/download/%s",

		HPCAuth:       "/v1/hpc/auth",
		HPCNodes:      "/v1/hpc/nodes",
		HPCNode:       "/v1/hpc/nodes/%s",
		HPCPartitions: "/v1/hpc/partitions",
		HPCPartition:  "/v1/hpc/partitions/%s",
		HPCSubmitJob:  "/v1/hpc/job",
		HPCJob:        "/v1/hpc/job/%s",
	}
}
