package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 20 * time.Second

type HttpClientInterface interface {
	Get(ctx context.Context, url string, headers map[string]string) ([]byte, error)
}

// HttpStatusError is returned for every response with a status code >= 400.
type HttpStatusError struct {
	Url        string
	StatusCode int
}

func (e *HttpStatusError) Error() string {
	return fmt.Sprintf("Request [%s] failed with error code: %d", e.Url, e.StatusCode)
}

type HttpClient struct {
	Timeout time.Duration
}

func (h *HttpClient) Get(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	timeout := h.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := &http.Client{
		Timeout: timeout,
	}

	res, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return nil, &HttpStatusError{Url: url, StatusCode: res.StatusCode}
	}

	return io.ReadAll(res.Body)
}
