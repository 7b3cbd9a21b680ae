package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/akiramusic/lavamon/internal/config"
	"github.com/akiramusic/lavamon/internal/errors"
)

// maxResponseBytes bounds stats and info responses. Real payloads are a
// few kilobytes; anything near the limit is not a Lavalink node.
const maxResponseBytes = 1 << 20

// Poller fetches stats over HTTP when the websocket is unavailable.
type Poller interface {
	// FetchStats returns the raw stats payload and the request round trip.
	FetchStats(ctx context.Context) ([]byte, time.Duration, error)

	// FetchInfo returns the node's /v4/info payload.
	FetchInfo(ctx context.Context) ([]byte, error)

	// FetchVersion returns the bare /version string. It doubles as the
	// cheapest liveness probe.
	FetchVersion(ctx context.Context) (string, error)
}

type httpPoller struct {
	base    string
	headers http.Header
	client  *http.Client
}

// NewPoller builds a Poller for the given server.
func NewPoller(srv config.Server, requestTimeout time.Duration) Poller {
	scheme := "http"
	if srv.Secure {
		scheme = "https"
	}

	headers := http.Header{}
	headers.Set("Authorization", srv.Password)
	for k, v := range srv.Headers {
		headers.Set(k, v)
	}

	return &httpPoller{
		base:    fmt.Sprintf("%s://%s:%d", scheme, srv.Host, srv.Port),
		headers: headers,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

func (p *httpPoller) FetchStats(ctx context.Context) ([]byte, time.Duration, error) {
	start := time.Now()
	body, err := p.get(ctx, "/v4/stats")
	if err != nil {
		return nil, 0, err
	}
	return body, time.Since(start), nil
}

func (p *httpPoller) FetchInfo(ctx context.Context) ([]byte, error) {
	return p.get(ctx, "/v4/info")
}

func (p *httpPoller) FetchVersion(ctx context.Context) (string, error) {
	body, err := p.get(ctx, "/version")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (p *httpPoller) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.base+path, nil)
	if err != nil {
		return nil, errors.Wrap(err, "Cannot build request for "+path, "")
	}
	for k, vs := range p.headers {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err,
			"Request to "+path+" failed",
			"Check the host and port, and that the node is running")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, errors.New(errors.ErrTransport,
			fmt.Sprintf("Node rejected credentials on %s (%s)", path, resp.Status),
			"Check the password in your config")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(errors.ErrTransport,
			fmt.Sprintf("Unexpected response from %s (%s)", path, resp.Status),
			"The endpoint may not be a Lavalink v4 node")
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.Wrap(err, "Reading response from "+path+" failed", "")
	}
	return body, nil
}
