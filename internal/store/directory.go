package store

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// HTTPDirectory resolves external author ids to durable user
// references through the user service.
type HTTPDirectory struct {
	client  *http.Client
	baseURL string
}

func NewHTTPDirectory(baseURL string) *HTTPDirectory {
	return &HTTPDirectory{
		client:  &http.Client{Timeout: 5 * time.Second},
		baseURL: baseURL,
	}
}

type userResponse struct {
	ID string `json:"id"`
}

func (d *HTTPDirectory) ResolveUser(ctx context.Context, externalID string) (string, error) {
	endpoint := d.baseURL + "/api/v1/users/" + url.PathEscape(externalID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call user service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("user service returned status %d", resp.StatusCode)
	}

	var user userResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", fmt.Errorf("decode user response: %w", err)
	}
	if user.ID == "" {
		return "", fmt.Errorf("user %s has no durable reference", externalID)
	}
	return user.ID, nil
}
