package ecom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// StoredVariant is one size variant returned by the object storage after an
// upload. Size is transient and never persisted.
type StoredVariant struct {
	URL  string          `json:"url,omitempty"`
	Size json.RawMessage `json:"size,omitempty"`
}

// StorageClient uploads binaries to the platform object storage and fetches
// source images.
type StorageClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewStorageClient(baseURL string, requestsPerSecond float64) *StorageClient {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &StorageClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Fetch downloads a remote binary.
func (s *StorageClient) Fetch(ctx context.Context, sourceURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Method: http.MethodGet, URL: sourceURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &RequestError{Method: http.MethodGet, URL: sourceURL, Status: resp.StatusCode, Body: string(body)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{Method: http.MethodGet, URL: sourceURL, Status: resp.StatusCode, Err: err}
	}
	return data, nil
}

// Upload sends data as the "file" form part and returns the size variants
// the storage generated for it.
func (s *StorageClient) Upload(ctx context.Context, storeID int64, auth Auth, filename string, data []byte) (map[string]*StoredVariant, error) {
	endpoint := fmt.Sprintf("%s/%d/api/v1/upload.json", s.baseURL, storeID)

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, &RequestError{Method: http.MethodPost, URL: endpoint, Err: err}
	}

	var form bytes.Buffer
	writer := multipart.NewWriter(&form)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &form)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Store-ID", strconv.FormatInt(storeID, 10))
	req.Header.Set("X-My-ID", auth.MyID)
	req.Header.Set("X-Access-Token", auth.AccessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Method: http.MethodPost, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{Method: http.MethodPost, URL: endpoint, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RequestError{Method: http.MethodPost, URL: endpoint, Status: resp.StatusCode, Body: string(body)}
	}

	var uploaded struct {
		Picture map[string]*StoredVariant `json:"picture"`
		Data    struct {
			Picture map[string]*StoredVariant `json:"picture"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &uploaded); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	picture := uploaded.Picture
	if picture == nil {
		picture = uploaded.Data.Picture
	}
	if picture == nil {
		return nil, fmt.Errorf("%w: storage answered %d without picture data: %s", ErrUnexpectedResponse, resp.StatusCode, string(body))
	}
	return picture, nil
}
