package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/c2fo/vfs/v7/vfssimple"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/c2fo/pilot/api"
)

type uploadCmd struct {
	app *app
}

func newUploadCmd(a *app) *uploadCmd {
	return &uploadCmd{app: a}
}

// Register adds the upload command to the application
func (cmd *uploadCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands, &cli.Command{
		Name:      "upload",
		Usage:     "Upload a file into a project",
		UsageText: "pilotcp upload <project_code> <source> [target_folder]",
		Description: `Uploads source into the greenroom of the project, under the user's folder.

Source may be a local path or any URI vfs supports, e.g. s3://bucket/key.csv.`,
		Action: cmd.run,
	})
	return root
}

func (cmd *uploadCmd) run(ctx context.Context, c *cli.Command) error {
	projectCode, source := c.Args().Get(0), c.Args().Get(1)
	if projectCode == "" || source == "" {
		return errors.New("upload requires a project code and a source")
	}

	uri, err := fileURI(source)
	if err != nil {
		return err
	}
	src, err := vfssimple.NewFile(uri)
	if err != nil {
		return fmt.Errorf("open %s: %w", uri, err)
	}

	session, err := cmd.app.session(ctx)
	if err != nil {
		return err
	}

	rec, err := api.NewProjectFiles(session).Upload(ctx, projectCode, src, c.Args().Get(2))
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "Uploaded %s (job %s, %s)\n", src.URI(), rec.JobID, rec.Status)
	return nil
}

type downloadCmd struct {
	app *app
}

func newDownloadCmd(a *app) *downloadCmd {
	return &downloadCmd{app: a}
}

// Register adds the download command to the application
func (cmd *downloadCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands, &cli.Command{
		Name:      "download",
		Usage:     "Download project files into a location",
		UsageText: "pilotcp download <project_code> <destination> <geid> [geid...]",
		Description: `Packs the given files on the platform and writes the result into destination.

Destination may be a local directory or any location URI vfs supports.`,
		Action: cmd.run,
	})
	return root
}

func (cmd *downloadCmd) run(ctx context.Context, c *cli.Command) error {
	args := c.Args().Slice()
	if len(args) < 3 {
		return errors.New("download requires a project code, a destination and at least one geid")
	}

	uri, err := locationURI(args[1])
	if err != nil {
		return err
	}
	dst, err := vfssimple.NewLocation(uri)
	if err != nil {
		return fmt.Errorf("open %s: %w", uri, err)
	}

	session, err := cmd.app.session(ctx)
	if err != nil {
		return err
	}

	res, err := api.NewProjectFiles(session).Download(ctx, args[0], args[2:], dst)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "Downloaded %s (%d bytes)\n", res.File.URI(), res.Size)
	return nil
}

type createDatasetCmd struct {
	app *app
}

func newCreateDatasetCmd(a *app) *createDatasetCmd {
	return &createDatasetCmd{app: a}
}

// Register adds the create-dataset command to the application
func (cmd *createDatasetCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands, &cli.Command{
		Name:      "create-dataset",
		Usage:     "Create a dataset from a YAML description",
		UsageText: "pilotcp create-dataset <file.yaml>",
		Description: `Reads title, code, authors and the other dataset fields from a YAML file.

List fields (authors, collection_method, tags, modality) must be lists of strings.`,
		Action: cmd.run,
	})
	return root
}

func (cmd *createDatasetCmd) run(ctx context.Context, c *cli.Command) error {
	source := c.Args().First()
	if source == "" {
		return errors.New("create-dataset requires a YAML file")
	}

	raw, err := readYAML(source)
	if err != nil {
		return err
	}
	req, err := api.NewCreateDatasetRequest(raw)
	if err != nil {
		return err
	}

	session, err := cmd.app.session(ctx)
	if err != nil {
		return err
	}

	ds, err := api.NewDatasets(session).Create(ctx, req)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "Created dataset %s (%s)\n", ds.Code, ds.GlobalEntityID)
	return nil
}

func readYAML(p string) (map[string]any, error) {
	uri, err := fileURI(p)
	if err != nil {
		return nil, err
	}
	f, err := vfssimple.NewFile(uri)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", uri, err)
	}
	defer func() { _ = f.Close() }()

	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", uri, err)
	}

	raw := map[string]any{}
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", uri, err)
	}
	return raw, nil
}
