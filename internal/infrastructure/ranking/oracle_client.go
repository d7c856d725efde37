package ranking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/wbpos/backend/internal/domain/shared"
	"github.com/wbpos/backend/internal/domain/tracking"
)

const positionsPath = "/positions"

// OracleConfig configures the external ranking source
type OracleConfig struct {
	BaseURL        string
	TimeoutSeconds int
	TopN           int
}

// Errors for oracle configuration
var (
	ErrOracleConfigMissingURL = errors.New("ranking: oracle base URL is required")
)

// Validate fills defaults and validates the configuration
func (c *OracleConfig) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return ErrOracleConfigMissingURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	if c.TopN <= 0 {
		c.TopN = tracking.DefaultTopN
	}
	return nil
}

// PositionsRequest is the body sent to the ranking source
type PositionsRequest struct {
	Token     string   `json:"token"`
	ProductID int64    `json:"productId"`
	Keywords  []string `json:"keywords"`
}

// PositionsResponse is the ranking source's answer
type PositionsResponse struct {
	Rows []PositionsRow `json:"rows"`
}

// PositionsRow is one keyword's history
type PositionsRow struct {
	Keyword string           `json:"keyword"`
	History []PositionsPoint `json:"history"`
}

// PositionsPoint is a single observation; a null rank means absent
type PositionsPoint struct {
	Date string `json:"date"`
	Rank *int   `json:"rank"`
}

// positionsError is the error envelope of the ranking source
type positionsError struct {
	Error string `json:"error"`
}

// OracleClient is a RankSampler backed by an external ranking source
type OracleClient struct {
	config *OracleConfig
	client *resty.Client
	logger *zap.Logger
	tracer trace.Tracer
}

var _ tracking.RankSampler = (*OracleClient)(nil)

// NewOracleClient creates a client for the positions contract
func NewOracleClient(config *OracleConfig, logger *zap.Logger) (*OracleClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := resty.New().
		SetBaseURL(config.BaseURL).
		SetTimeout(time.Duration(config.TimeoutSeconds)*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	o := &OracleClient{
		config: config,
		client: client,
		logger: logger,
		tracer: otel.Tracer("wbpos/ranking"),
	}
	o.instrument()
	return o, nil
}

// instrument wraps every request in a client span and logs failures
func (o *OracleClient) instrument() {
	o.client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		ctx, _ := o.tracer.Start(req.Context(), "ranking.oracle "+req.Method,
			trace.WithSpanKind(trace.SpanKindClient))
		req.SetContext(ctx)
		return nil
	})
	o.client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		span := trace.SpanFromContext(res.Request.Context())
		defer span.End()
		span.SetAttributes(attribute.Int("http.status_code", res.StatusCode()))
		if res.IsError() {
			span.SetStatus(codes.Error, res.Status())
		}
		o.logger.Debug("ranking oracle response",
			zap.String("url", res.Request.URL),
			zap.Int("status", res.StatusCode()),
			zap.Duration("latency", res.Time()),
		)
		return nil
	})
	o.client.OnError(func(req *resty.Request, err error) {
		span := trace.SpanFromContext(req.Context())
		defer span.End()
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		o.logger.Warn("ranking oracle request failed",
			zap.String("url", req.URL),
			zap.Error(err),
		)
	})
}

// Sample asks the ranking source for the product's recent positions
func (o *OracleClient) Sample(ctx context.Context, req tracking.SampleRequest) (tracking.Observations, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	res, err := o.client.R().
		SetContext(ctx).
		SetBody(PositionsRequest{Token: req.Token, ProductID: req.ProductID, Keywords: req.Keywords}).
		Post(positionsPath)
	if err != nil {
		return nil, shared.NewUpstreamFailure("request failed", err)
	}

	if res.StatusCode() == 400 {
		var envelope positionsError
		if json.Unmarshal(res.Body(), &envelope) == nil && envelope.Error != "" {
			return nil, shared.NewValidationError("", envelope.Error)
		}
		return nil, shared.NewValidationError("", strings.TrimSpace(res.String()))
	}
	if res.IsError() || res.StatusCode() < 200 || res.StatusCode() >= 300 {
		return nil, shared.NewUpstreamStatus(res.StatusCode(), res.String())
	}

	var body PositionsResponse
	if err := json.Unmarshal(res.Body(), &body); err != nil {
		return nil, &shared.UpstreamError{
			Status:  res.StatusCode(),
			Body:    res.String(),
			Message: "invalid positions response",
			Cause:   err,
		}
	}
	return o.convert(body)
}

// convert validates every point; a malformed answer is rejected as a whole
func (o *OracleClient) convert(body PositionsResponse) (tracking.Observations, error) {
	obs := make(tracking.Observations, len(body.Rows))
	for _, row := range body.Rows {
		keyword := strings.TrimSpace(row.Keyword)
		if keyword == "" {
			continue
		}
		points := make([]tracking.RankPoint, 0, len(row.History))
		for _, p := range row.History {
			date, err := tracking.ParseDate(p.Date)
			if err != nil {
				return nil, invalidPoint(keyword, err)
			}
			if p.Rank == nil {
				points = append(points, tracking.AbsentPoint(date))
				continue
			}
			rank, err := tracking.NewRank(*p.Rank, o.config.TopN)
			if err != nil {
				return nil, invalidPoint(keyword, err)
			}
			points = append(points, tracking.NewRankPoint(date, rank))
		}
		obs[keyword] = append(obs[keyword], points...)
	}
	return obs, nil
}

func invalidPoint(keyword string, err error) error {
	return &shared.UpstreamError{
		Message: fmt.Sprintf("invalid point for keyword %q", keyword),
		Cause:   err,
	}
}
