package webhook

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/janhq/relay-api/internal/domain/relay"
	"github.com/janhq/relay-api/internal/infrastructure/metrics"
	"github.com/janhq/relay-api/internal/infrastructure/observability"
)

// Client posts payloads to n8n webhooks. Response bodies are streamed back
// unparsed so binary audio passes through intact.
type Client struct {
	httpClient *resty.Client
	log        zerolog.Logger
}

// NewClient creates a Resty-backed webhook client.
func NewClient(timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		httpClient: resty.New().
			SetTimeout(timeout).
			SetHeader("User-Agent", "relay-api"),
		log: log.With().Str("component", "webhook-client").Logger(),
	}
}

// Post sends the payload. The caller closes the returned body.
func (c *Client) Post(ctx context.Context, payload *relay.Payload) (*relay.UpstreamResponse, error) {
	ctx, span := observability.Tracer().Start(ctx, "webhook.post",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("relay.kind", string(payload.Kind)),
			attribute.Int("relay.request_bytes", len(payload.Body)),
		),
	)
	defer span.End()

	started := time.Now()
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", payload.ContentType).
		SetBody(payload.Body).
		SetDoNotParseResponse(true).
		Post(payload.Endpoint)
	elapsed := time.Since(started)

	if err != nil {
		metrics.RecordUpstream(string(payload.Kind), 0, elapsed.Seconds())
		span.RecordError(err)
		span.SetStatus(codes.Error, "webhook request failed")
		return nil, err
	}

	status := resp.StatusCode()
	metrics.RecordUpstream(string(payload.Kind), status, elapsed.Seconds())
	span.SetAttributes(
		attribute.Int("http.status_code", status),
		attribute.String("http.response_content_type", resp.Header().Get("Content-Type")),
	)
	if status >= 400 {
		span.SetStatus(codes.Error, resp.Status())
	}

	c.log.Debug().
		Str("kind", string(payload.Kind)).
		Int("status", status).
		Dur("elapsed", elapsed).
		Msg("webhook responded")

	return &relay.UpstreamResponse{
		StatusCode: status,
		Header:     resp.Header(),
		Body:       resp.RawBody(),
	}, nil
}

var _ relay.Transport = (*Client)(nil)
