package remote

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/speaky/gateway/internal/core/domain"
	"github.com/speaky/gateway/internal/core/ports"
)

// UploadClient implements ports.UploadAPI. Files travel base64-encoded.
type UploadClient struct {
	ep endpoint
}

type uploadRequest struct {
	File   string           `json:"file"`
	Type   ports.UploadKind `json:"type"`
	UserID int64            `json:"user_id"`
}

func (c *UploadClient) Upload(ctx context.Context, userID int64, kind ports.UploadKind, data []byte) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	req := uploadRequest{File: base64.StdEncoding.EncodeToString(data), Type: kind, UserID: userID}
	if err := c.ep.post(ctx, http.MethodPost, "upload", req, &out); err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", fmt.Errorf("upload: %w: reply has no url", domain.ErrRemoteRejected)
	}
	return out.URL, nil
}
