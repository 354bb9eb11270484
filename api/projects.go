package api

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/sunyield/sunyield-go/models"
)

func (c *Client) ActiveProjects(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	if err := c.do(ctx, http.MethodGet, "/api/projects/active", nil, nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// UploadProjectImage attaches an image to a project via multipart upload.
func (c *Client) UploadProjectImage(ctx context.Context, projectID uint, filename string, image io.Reader) error {
	path := fmt.Sprintf("/api/projects/admin/%d/image", projectID)
	return c.doMultipart(ctx, http.MethodPost, path, func(w *multipart.Writer) error {
		part, err := w.CreateFormFile("image", filename)
		if err != nil {
			return err
		}
		_, err = io.Copy(part, image)
		return err
	}, nil)
}
