// Package remote talks to a slide deck server over its REST API.
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

	"github.com/rs/zerolog"

	"github.com/fredcamaral/slidedeck/internal/domain/entities"
	"github.com/fredcamaral/slidedeck/internal/domain/ports"
)

const userAgent = "slidedeck/1.0"

// maxErrorBody bounds how much of an error response is kept for the message
const maxErrorBody = 512

// Config configures a remote client
type Config struct {
	BaseURL string
	Client  ports.HTTPClient
	Logger  zerolog.Logger
}

type client struct {
	baseURL string
	http    ports.HTTPClient
	logger  zerolog.Logger
}

func newClient(cfg Config) (*client, error) {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("base URL must start with http:// or https://: %q", cfg.BaseURL)
	}
	if cfg.Client == nil {
		cfg.Client = ports.NewRealHTTPClient(ports.HTTPClientConfig{UserAgent: userAgent})
	}

	return &client{
		baseURL: baseURL,
		http:    cfg.Client,
		logger:  cfg.Logger.With().Str("component", "remote").Logger(),
	}, nil
}

// newJSONRequest builds a request with an optional JSON body
func (c *client) newJSONRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do sends req and maps transport failures and error statuses onto the
// entities sentinels. The caller closes the body of a successful response.
func (c *client) do(req *http.Request, expected ...int) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s %s: %w: %w", req.Method, req.URL.Path, entities.ErrNetwork, ctxErr)
		}
		return nil, fmt.Errorf("%s %s: %w: %v", req.Method, req.URL.Path, entities.ErrNetwork, err)
	}

	c.logger.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Msg("store request")

	for _, code := range expected {
		if resp.StatusCode == code {
			return resp, nil
		}
	}

	defer func() { _ = resp.Body.Close() }()
	return nil, statusError(req, resp)
}

func statusError(req *http.Request, resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	detail := strings.TrimSpace(string(snippet))
	if detail == "" {
		detail = http.StatusText(resp.StatusCode)
	}

	var sentinel error
	switch resp.StatusCode {
	case http.StatusNotFound:
		sentinel = entities.ErrNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		sentinel = entities.ErrValidation
	case http.StatusRequestEntityTooLarge:
		sentinel = entities.ErrPayloadTooLarge
	default:
		sentinel = entities.ErrNetwork
	}

	return fmt.Errorf("%s %s: %w (status %d: %s)", req.Method, req.URL.Path, sentinel, resp.StatusCode, detail)
}

// decode reads a JSON body; malformed responses count as network failures
func decode(resp *http.Response, v any) error {
	defer func() { _ = resp.Body.Close() }()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: decoding response: %v", entities.ErrNetwork, err)
	}
	return nil
}

// drain discards and closes a body whose content is not needed
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

// locationID reads the identifier of a created resource
func locationID(resp *http.Response) (entities.DocumentID, error) {
	id, err := entities.IDFromLocation(resp.Header.Get("Location"))
	if err != nil {
		return 0, errors.Join(entities.ErrNetwork, fmt.Errorf("reading Location header: %w", err))
	}
	return id, nil
}
