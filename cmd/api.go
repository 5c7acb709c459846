package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/desertthunder/tripx/internal/services"
	"github.com/desertthunder/tripx/internal/shared"
	"github.com/urfave/cli/v3"
)

func apiPath(cmd *cli.Command) (string, error) {
	path := cmd.StringArg("path")
	if path == "" {
		return "", fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path, nil
}

// writeResponse prints a 2xx body, pretty-printing JSON, and turns anything else into an error.
func (r *Runner) writeResponse(resp *services.APIResponse, pretty bool) error {
	if !resp.OK() {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, pretty)
	}

	if len(resp.Body) == 0 {
		return r.writePlain("%d\n", resp.StatusCode)
	}
	r.output.Write(resp.Body)
	r.output.Write([]byte("\n"))
	return nil
}

// APIGet makes a direct GET request to the backend
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path, err := apiPath(cmd)
	if err != nil {
		return err
	}
	r.connect(ctx, false)

	r.logger.Info("GET request", "path", path)

	resp, err := r.gateway.Get(ctx, path)
	if err != nil {
		return err
	}
	return r.writeResponse(resp, cmd.Bool("pretty"))
}

// APIPost makes a direct POST request to the backend
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	path, err := apiPath(cmd)
	if err != nil {
		return err
	}
	data := cmd.String("data")
	if !json.Valid([]byte(data)) {
		return fmt.Errorf("%w: data is not valid JSON", shared.ErrInvalidInput)
	}
	r.connect(ctx, true)

	r.logger.Info("POST request", "path", path)

	resp, err := r.gateway.Post(ctx, path, []byte(data))
	if err != nil {
		return err
	}
	return r.writeResponse(resp, true)
}

// APIDelete makes a direct DELETE request to the backend
func (r *Runner) APIDelete(ctx context.Context, cmd *cli.Command) error {
	path, err := apiPath(cmd)
	if err != nil {
		return err
	}
	r.connect(ctx, true)

	r.logger.Info("DELETE request", "path", path)

	resp, err := r.gateway.Delete(ctx, path)
	if err != nil {
		return err
	}
	return r.writeResponse(resp, true)
}
