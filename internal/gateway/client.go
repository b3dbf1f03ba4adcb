// Package gateway is the typed client of the rental platform REST API. Reads
// are cached under resource tags and mutations invalidate them.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-admin/internal/cache"
)

const maxErrorBody = 4 << 10

// Client talks to the remote API. Authentication is the job of the
// http.Client's transport.
type Client struct {
	baseURL string
	http    *http.Client
	cache   *cache.Cache
	log     logrus.FieldLogger
}

// NewClient creates a client for baseURL (e.g. http://localhost:5000/api).
func NewClient(baseURL string, httpClient *http.Client, c *cache.Cache, log logrus.FieldLogger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	if c == nil {
		c = cache.New(nil, nil, log)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		cache:   c,
		log:     log.WithField("component", "gateway"),
	}
}

// Cache returns the read cache the client populates.
func (c *Client) Cache() *cache.Cache { return c.cache }

// Bus returns the invalidation bus live queries subscribe to.
func (c *Client) Bus() *cache.Bus { return c.cache.Bus() }

// envelope is the {data: ...} wrapper of single-resource responses.
type envelope[T any] struct {
	Data T `json:"data"`
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
}

func jsonRequest(method, path string, payload interface{}) (request, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return request{}, fmt.Errorf("failed to encode request: %w", err)
	}
	return request{method: method, path: path, body: bytes.NewReader(data), contentType: "application/json"}, nil
}

// do sends req and decodes a 2xx body into out (skipped when out is nil or
// the body is empty).
func (c *Client) do(ctx context.Context, req request, out interface{}) error {
	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, req.body)
	if err != nil {
		return &Error{Err: err}
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.log.WithError(err).WithFields(logrus.Fields{
			"method": req.method,
			"path":   req.path,
		}).Warn("Request failed")
		return &Error{Err: err}
	}
	defer resp.Body.Close()

	c.log.WithFields(logrus.Fields{
		"method":   req.method,
		"path":     req.path,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("Request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{StatusCode: resp.StatusCode, Message: "malformed response", Err: err}
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &Error{StatusCode: resp.StatusCode, Message: "malformed response", Err: err}
	}
	return nil
}

func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &Error{StatusCode: resp.StatusCode}

	var eb errorBody
	if json.Unmarshal(body, &eb) == nil {
		apiErr.Message = eb.Error
		if apiErr.Message == "" {
			apiErr.Message = eb.Message
		}
	} else {
		apiErr.Detail = strings.TrimSpace(string(body))
	}
	return apiErr
}

// cached serves key from the cache or fetches and stores it under tags.
func cached[T any](ctx context.Context, c *Client, key string, tags []cache.Tag, fetch func(context.Context) (T, error)) (T, error) {
	var out T
	if c.cache.Get(ctx, key, &out) {
		return out, nil
	}
	gen := c.cache.Generation(tags)
	out, err := fetch(ctx)
	if err != nil {
		return out, err
	}
	c.cache.SetIfCurrent(ctx, key, out, tags, gen)
	return out, nil
}

// PageQuery is the search and paging input of list operations. Zero values
// are omitted from the request.
type PageQuery struct {
	Search string
	Page   int
	Limit  int
}

func (q PageQuery) values() url.Values {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Page > 0 {
		v.Set("page", fmt.Sprint(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", fmt.Sprint(q.Limit))
	}
	return v
}

func (q PageQuery) params() map[string]string {
	out := make(map[string]string)
	for k, vs := range q.values() {
		out[k] = vs[0]
	}
	return out
}
