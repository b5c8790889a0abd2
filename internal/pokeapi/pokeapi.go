package pokeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultTimeout = 10 * time.Second

	// Largest species documents are a few hundred KB.
	maxBodySize = 8 << 20
)

var (
	ErrNotFound = errors.New("pokemon not found")
	ErrUpstream = errors.New("pokeapi request failed")
)

// Client fetches species records from PokeAPI. Responses are returned as-is,
// nothing is cached.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tracer     trace.Tracer
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		tracer:     otel.Tracer("pokedex_service/pokeapi"),
	}
}

// Pokemon returns the upstream JSON document for name.
func (c *Client) Pokemon(ctx context.Context, name string) (json.RawMessage, error) {
	const op = "pokeapi.Pokemon"

	ctx, span := c.tracer.Start(ctx, op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("pokemon.name", name)),
	)
	defer span.End()

	body, err := c.get(ctx, "/pokemon/"+url.PathEscape(name))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "lookup failed")
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return body, nil
}

func (c *Client) get(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", ErrUpstream, err)
	}

	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrUpstream, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrUpstream, err)
	}

	if len(body) > maxBodySize {
		return nil, fmt.Errorf("%w: response exceeds %d bytes", ErrUpstream, maxBodySize)
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: response is not valid json", ErrUpstream)
	}

	return json.RawMessage(body), nil
}
