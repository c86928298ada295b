package remote

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

	"github.com/saleor/configurator-sub007/pkg/engine"
	"github.com/saleor/configurator-sub007/pkg/schema"
)

// ClientConfig configures the REST client behind the repositories.
type ClientConfig struct {
	// BaseURL is the root of the platform's administrative API.
	BaseURL string

	// Token is the bearer token sent on every request.
	Token string

	// Timeout bounds a single request. The command-level deadline is
	// carried separately through the context.
	Timeout time.Duration
}

// Client is the shared HTTP transport for every repository.
type Client struct {
	base   *url.URL
	token  string
	client *http.Client
}

// NewClient builds the shared transport.
func NewClient(cfg ClientConfig) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, engine.NewValidationError(fmt.Sprintf("invalid platform URL %q", cfg.BaseURL), err)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		base:   base,
		token:  cfg.Token,
		client: &http.Client{Timeout: timeout},
	}, nil
}

// NewRegistry wires one REST repository per collection section plus the
// shop repository onto the shared client.
func NewRegistry(client *Client) *engine.Registry {
	collections := make(map[schema.Section]engine.EntityRepository)
	for _, section := range schema.AllSections {
		spec, ok := schema.Spec(section)
		if !ok || spec.Singleton {
			continue
		}
		collections[section] = &restRepository{client: client, spec: spec}
	}
	return engine.NewRegistry(&restShopRepository{client: client}, collections)
}

// do executes one request and decodes the response into out (when out is
// non-nil). Transport and status failures are classified into the error
// taxonomy here so everything above sees uniform kinds.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return engine.NewInternalError("encoding request body", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.JoinPath(path).String(), reqBody)
	if err != nil {
		return engine.NewInternalError("building request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return engine.NewTransportError(fmt.Sprintf("%s %s", method, path), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return classifyStatus(resp, method, path)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return engine.NewTransportError(fmt.Sprintf("decoding %s %s response", method, path), err)
	}
	return nil
}

func classifyStatus(resp *http.Response, method, path string) error {
	detail := readErrorDetail(resp.Body)
	msg := fmt.Sprintf("%s %s: %s", method, path, detail)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return engine.NewPermissionError(msg, nil)
	case resp.StatusCode == http.StatusNotFound:
		return engine.NewNotFoundError(msg, nil)
	case resp.StatusCode == http.StatusConflict:
		return engine.NewDuplicateError(msg, nil)
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return engine.NewTransportError(msg, nil)
	default:
		return engine.NewValidationError(msg, nil)
	}
}

// readErrorDetail extracts a message from an error payload, falling back
// to the raw body.
func readErrorDetail(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(raw) == 0 {
		return "request failed"
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(raw))
}

// restRepository is the per-section repository: one remote call per
// method, no retries, no aggregation.
type restRepository struct {
	client *Client
	spec   schema.SectionSpec
}

func (r *restRepository) path() string { return string(r.spec.Section) }

func (r *restRepository) List(ctx context.Context) ([]schema.Entity, error) {
	var raw []json.RawMessage
	if err := r.client.do(ctx, http.MethodGet, r.path(), nil, &raw); err != nil {
		return nil, err
	}
	entities := make([]schema.Entity, 0, len(raw))
	for _, item := range raw {
		entity := r.spec.New()
		if err := json.Unmarshal(item, entity); err != nil {
			return nil, engine.NewTransportError(fmt.Sprintf("decoding %s entity", r.spec.Section), err)
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

func (r *restRepository) Create(ctx context.Context, entity schema.Entity) (schema.Entity, error) {
	created := r.spec.New()
	if err := r.client.do(ctx, http.MethodPost, r.path(), entity, created); err != nil {
		return nil, err
	}
	return created, nil
}

func (r *restRepository) Update(ctx context.Context, id string, entity schema.Entity) (schema.Entity, error) {
	updated := r.spec.New()
	if err := r.client.do(ctx, http.MethodPut, r.path()+"/"+url.PathEscape(id), entity, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *restRepository) Delete(ctx context.Context, id string) error {
	return r.client.do(ctx, http.MethodDelete, r.path()+"/"+url.PathEscape(id), nil, nil)
}

// restShopRepository handles the singleton shop-settings resource.
type restShopRepository struct {
	client *Client
}

func (r *restShopRepository) Get(ctx context.Context) (*schema.ShopSettings, error) {
	var settings schema.ShopSettings
	if err := r.client.do(ctx, http.MethodGet, "shop", nil, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *restShopRepository) Update(ctx context.Context, settings *schema.ShopSettings) (*schema.ShopSettings, error) {
	var updated schema.ShopSettings
	if err := r.client.do(ctx, http.MethodPut, "shop", settings, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
