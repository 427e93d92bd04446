// Package remote is a kv.Store implementation that talks to a karst KV
// server over HTTP.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ridge/karst/kv"
	"github.com/ridge/karst/kv/wire"
	"github.com/ridge/karst/thttp"
	"github.com/ridge/must/v2"
)

type client struct {
	httpClient *http.Client
	origin     string
	token      string
}

// New returns a remote KV client. The returned store also supports listing.
//
// origin is the server's HTTP origin (scheme://host:port). A nil httpClient
// selects a default client with request logging and DNS retry.
func New(httpClient *http.Client, origin string) kv.Store {
	return NewWithToken(httpClient, origin, "")
}

// NewWithToken is New with a bearer token attached to every request, for
// servers that require one.
func NewWithToken(httpClient *http.Client, origin, token string) kv.Store {
	if !strings.HasPrefix(origin, "http:") && !strings.HasPrefix(origin, "https:") {
		panic(errors.New("origin must have http: or https: scheme"))
	}
	if httpClient == nil {
		httpClient = thttp.WithRequestsLogging(thttp.RetryingDNSClient)
	}
	return client{httpClient: httpClient, origin: origin, token: token}
}

func (c client) Read(ctx context.Context, table string, key kv.Key) (kv.Entry, bool, error) {
	var res wire.ReadResponse
	if err := c.post(ctx, table, "read", wire.ReadRequest{Key: key}, &res); err != nil {
		return kv.Entry{}, false, fmt.Errorf("failed to read from table %s: %w", table, err)
	}
	if !res.Found || res.Entry == nil {
		return kv.Entry{}, false, nil
	}
	return *res.Entry, true, nil
}

func (c client) Write(ctx context.Context, table string, entry kv.Entry, cond kv.Condition) error {
	err := c.post(ctx, table, "write", wire.WriteRequest{Entry: entry, Condition: cond}, nil)
	if err != nil {
		return fmt.Errorf("failed to write to table %s: %w", table, err)
	}
	return nil
}

func (c client) Delete(ctx context.Context, table string, key kv.Key, cond kv.Condition) error {
	err := c.post(ctx, table, "delete", wire.DeleteRequest{Key: key, Condition: cond}, nil)
	if err != nil {
		return fmt.Errorf("failed to delete from table %s: %w", table, err)
	}
	return nil
}

// List implements kv.Lister by consuming the server's NDJSON stream.
func (c client) List(ctx context.Context, table string, fn func(kv.Entry) error) error {
	url := fmt.Sprintf("%s/kv/%s", c.origin, table)
	req := must.OK1(http.NewRequestWithContext(ctx, http.MethodGet, url, nil))
	c.authorize(req)
	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to list table %s: %w", table, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to list table %s: %s", table, res.Status)
	}

	dec := json.NewDecoder(res.Body)
	for {
		var entry kv.Entry
		if err := dec.Decode(&entry); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to list table %s: %w", table, err)
		}
		if err := fn(entry); err != nil {
			return err
		}
	}
}

func (c client) post(ctx context.Context, table, op string, body any, res any) error {
	url := fmt.Sprintf("%s/kv/%s/%s", c.origin, table, op)
	req := must.OK1(http.NewRequestWithContext(ctx, http.MethodPost, url,
		bytes.NewReader(must.OK1(json.Marshal(body)))))
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	httpRes, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer httpRes.Body.Close()

	switch httpRes.StatusCode {
	case http.StatusOK:
		return json.NewDecoder(httpRes.Body).Decode(res)
	case http.StatusNoContent:
		return nil
	case http.StatusConflict:
		return kv.ErrConditionFailed
	default:
		msg, _ := io.ReadAll(httpRes.Body)
		return fmt.Errorf("%s: %s", httpRes.Status, strings.TrimSpace(string(msg)))
	}
}

func (c client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
