package httpds

import (
	"context"
	"fmt"
	"io"
)

// StatusError reports a final non-2xx response.
type StatusError struct {
	URL    string
	Status string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Status)
}

// Source is one remote input fetched with GET.
type Source struct {
	client *Client
	url    string
}

// NewSource binds url to client.
func NewSource(c *Client, url string) *Source {
	return &Source{client: c, url: url}
}

// Open fetches the input and returns its body. Any final status outside
// 2xx is a *StatusError.
func (s *Source) Open(ctx context.Context) (io.ReadCloser, error) {
	resp, err := s.client.Get(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &StatusError{URL: s.url, Status: resp.Status, Code: resp.StatusCode}
	}
	return resp.Body, nil
}
