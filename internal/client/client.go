// Package client talks to a calgrid server over HTTP. Client satisfies
// store.EventStore, so the terminal UI can run against a remote server or a
// local database interchangeably.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sadopc/calgrid/internal/api"
	"github.com/sadopc/calgrid/internal/store"
)

// StatusError is returned for non-2xx responses that do not map onto a store
// error.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

type Client struct {
	base *url.URL
	http *http.Client
}

var _ store.EventStore = (*Client)(nil)

// New returns a client for the server at baseURL. A nil hc gets a client
// with a 15s timeout.
func New(baseURL string, hc *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api url %q must be http or https", baseURL)
	}
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{base: u, http: hc}, nil
}

func (c *Client) List(ctx context.Context, f store.EventFilter) ([]store.Event, error) {
	q := url.Values{}
	if f.From != nil && f.To != nil {
		q.Set("startDate", f.From.Format(store.DateLayout))
		q.Set("endDate", f.To.Format(store.DateLayout))
	}
	var out []api.EventDTO
	if err := c.do(ctx, http.MethodGet, "/events", q, nil, &out); err != nil {
		return nil, err
	}
	var events []store.Event
	for _, d := range out {
		e, err := d.Event()
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}

func (c *Client) Create(ctx context.Context, f store.EventFields) (*store.Event, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	var out api.EventDTO
	if err := c.do(ctx, http.MethodPost, "/events", nil, api.FromFields(f), &out); err != nil {
		return nil, err
	}
	e, err := out.Event()
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *Client) Update(ctx context.Context, id int64, f store.EventFields) (*store.Event, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	var out api.EventDTO
	if err := c.do(ctx, http.MethodPut, "/events/"+strconv.FormatInt(id, 10), nil, api.FromFields(f), &out); err != nil {
		return nil, err
	}
	e, err := out.Event()
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/events/"+strconv.FormatInt(id, 10), nil, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, body, out any) error {
	u := *c.base
	u.Path += path
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}

	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &payload); err != nil || payload.Error == "" {
		payload.Error = strings.TrimSpace(string(data))
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", store.ErrNotFound, payload.Error)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", store.ErrValidation, payload.Error)
	}
	return &StatusError{Status: resp.StatusCode, Message: payload.Error}
}
