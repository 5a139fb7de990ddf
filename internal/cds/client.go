// Package cds talks to a Climate Data Store API endpoint: it submits a
// retrieval request, polls the resulting task and streams the finished
// product to a file on disk. The rest of the pipeline treats it as a black
// box that turns a request spec into a local file.
package cds

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Client is a CDS API client. Downloads are blocking calls with no retry or
// backoff layer; a failure aborts the current unit of work.
type Client struct {
	logger       *slog.Logger
	httpCli      *http.Client
	baseURL      string
	uid          string
	secret       string
	PollInterval time.Duration
}

// NewClient creates a new CDS client. key is the "uid:secret" pair issued by
// the archive, as used for HTTP basic auth.
func NewClient(logger *slog.Logger, apiURL, key string) (*Client, error) {
	u, err := url.Parse(apiURL)
	if err != nil {
		return nil, err
	}
	uid, secret, ok := strings.Cut(key, ":")
	if !ok {
		return nil, fmt.Errorf("CDS key must have the form uid:secret")
	}
	return &Client{
		logger: logger,
		httpCli: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   30 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				IdleConnTimeout: 30 * time.Second,
			},
		},
		baseURL:      strings.TrimRight(u.String(), "/"),
		uid:          uid,
		secret:       secret,
		PollInterval: 2 * time.Second,
	}, nil
}

// task is the CDS task representation shared by the submit and poll
// endpoints.
type task struct {
	State     string `json:"state"`
	RequestID string `json:"request_id"`
	Location  string `json:"location"`
	Error     struct {
		Message string `json:"message"`
		Reason  string `json:"reason"`
	} `json:"error"`
}

// Retrieve submits a request against a dataset, waits for the archive to
// finish producing the result and downloads it to dest. It blocks until the
// file is on disk or an error occurs.
func (c *Client) Retrieve(ctx context.Context, dataset string, req Request, dest string) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	c.logger.Info("submitting retrieval request", "dataset", dataset, "dest", dest)
	var t task
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/resources/"+dataset, bytes.NewReader(body), &t); err != nil {
		return fmt.Errorf("submit %s: %w", dataset, err)
	}

	for {
		switch t.State {
		case "completed":
			return c.download(ctx, t.Location, dest)
		case "failed":
			return fmt.Errorf("retrieval failed: %s: %s", t.Error.Reason, t.Error.Message)
		}
		c.logger.Info("waiting for retrieval", "dataset", dataset, "state", t.State, "requestId", t.RequestID)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.PollInterval):
		}
		if err := c.doJSON(ctx, http.MethodGet, c.baseURL+"/tasks/"+t.RequestID, nil, &t); err != nil {
			return fmt.Errorf("poll task %s: %w", t.RequestID, err)
		}
	}
}

func (c *Client) doJSON(ctx context.Context, method, url string, body io.Reader, out *task) error {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.uid, c.secret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpCli.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusAccepted {
		return fmt.Errorf("unexpected status %d", res.StatusCode)
	}
	return json.NewDecoder(res.Body).Decode(out)
}

// download streams the finished product to dest. A partially written file is
// removed on failure so reruns can rely on plain existence checks.
func (c *Client) download(ctx context.Context, location, dest string) error {
	loc := location
	if strings.HasPrefix(loc, "/") {
		loc = c.baseURL + loc
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc, nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.uid, c.secret)

	res, err := c.httpCli.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: unexpected status %d", loc, res.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	n, err := io.Copy(out, res.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dest)
		return fmt.Errorf("download %s: %w", loc, err)
	}
	c.logger.Info("download complete", "dest", dest, "bytes", n)
	return nil
}
