package api

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/sunyield/sunyield-go/models"
)

// SubmitKYC uploads a PAN and its supporting document as multipart form data.
func (c *Client) SubmitKYC(ctx context.Context, pan, filename string, document io.Reader) (*models.KYC, error) {
	var kyc models.KYC
	err := c.doMultipart(ctx, http.MethodPost, "/api/kyc/submit", func(w *multipart.Writer) error {
		if err := w.WriteField("pan", pan); err != nil {
			return err
		}
		part, err := w.CreateFormFile("document", filename)
		if err != nil {
			return err
		}
		_, err = io.Copy(part, document)
		return err
	}, &kyc)
	if err != nil {
		return nil, err
	}
	return &kyc, nil
}

func (c *Client) KYCStatus(ctx context.Context) (*models.KYC, error) {
	var kyc models.KYC
	if err := c.do(ctx, http.MethodGet, "/api/kyc/status", nil, nil, &kyc); err != nil {
		return nil, err
	}
	return &kyc, nil
}
