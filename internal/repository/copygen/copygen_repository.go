package copygen

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"recoEngine/domain"

	"github.com/goccy/go-json"
)

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client calls the remote copy service: POST {base}/generate.
type Client struct {
	cfg  Config
	http *http.Client
}

type generateRequest struct {
	ProductID   uint64  `json:"product_id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Type        string  `json:"type"`
	SubjectID   string  `json:"subject_id,omitempty"`
}

type generateResponse struct {
	Content string `json:"content"`
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Generate(ctx context.Context, p domain.Product) (string, error) {
	return c.post(ctx, newRequest(p, domain.ContentDescription, ""))
}

// Personalize asks for the short per-subject pitch.
func (c *Client) Personalize(ctx context.Context, subjectID string, p domain.Product) (string, error) {
	return c.post(ctx, newRequest(p, domain.ContentPersonalized, subjectID))
}

func newRequest(p domain.Product, contentType, subjectID string) generateRequest {
	return generateRequest{
		ProductID:   p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Description: p.Description,
		Price:       p.Price,
		Type:        contentType,
		SubjectID:   subjectID,
	}
}

func (c *Client) post(ctx context.Context, in generateRequest) (string, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("failed to marshal generate request: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Add("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Add("Authorization", "Bearer "+c.cfg.APIKey)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("copy service request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return "", err
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", fmt.Errorf("copy service returned %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to decode copy service response: %w", err)
	}

	content := strings.TrimSpace(out.Content)
	if content == "" {
		return "", fmt.Errorf("copy service returned empty content")
	}
	return content, nil
}
