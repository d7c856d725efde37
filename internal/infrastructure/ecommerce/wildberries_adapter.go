package ecommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wbpos/backend/internal/domain/catalog"
	"github.com/wbpos/backend/internal/domain/shared"
)

// maxWildberriesResponseSize limits the response body size to prevent memory exhaustion
const maxWildberriesResponseSize = 10 * 1024 * 1024 // 10MB max response

// WildberriesAdapter fetches seller cards from the Wildberries content API
type WildberriesAdapter struct {
	config     *WildberriesConfig
	httpClient *http.Client
}

var _ catalog.PageFetcher = (*WildberriesAdapter)(nil)

// NewWildberriesAdapter creates a new adapter with the given configuration
func NewWildberriesAdapter(config *WildberriesConfig) (*WildberriesAdapter, error) {
	if config == nil {
		config = NewWildberriesConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &WildberriesAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// WithHTTPClient replaces the HTTP client, e.g. to add tracing transport
func (a *WildberriesAdapter) WithHTTPClient(client *http.Client) *WildberriesAdapter {
	if client != nil {
		a.httpClient = client
	}
	return a
}

// FetchPage requests one page of cards. Next is nil when the API returns no
// cursor, fewer cards than requested, or a cursor equal to the one sent.
func (a *WildberriesAdapter) FetchPage(ctx context.Context, req catalog.PageRequest) (*catalog.Page, error) {
	limit := req.Limit
	if limit <= 0 || limit > a.config.PageLimit {
		limit = a.config.PageLimit
	}
	photo := req.PhotoFilter
	if !photo.IsValid() {
		photo = catalog.PhotoFilterAll
	}

	body := WildberriesCardsListRequest{
		Settings: WildberriesSettings{
			Sort:   WildberriesSort{Ascending: req.Ascending},
			Cursor: WildberriesRequestCursor{Limit: limit},
			Filter: WildberriesFilter{TextSearch: req.TextSearch, WithPhoto: int(photo)},
		},
	}
	if req.Cursor != nil {
		body.Settings.Cursor.UpdatedAt = req.Cursor.UpdatedAt
		body.Settings.Cursor.NmID = req.Cursor.NmID
	}

	status, raw, err := a.doRequest(ctx, req.Token, body)
	if err != nil {
		return nil, err
	}

	var resp WildberriesCardsListResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &shared.UpstreamError{
			Status:  status,
			Body:    string(raw),
			Message: "invalid cards list response",
			Cause:   err,
		}
	}

	page := &catalog.Page{Products: make([]catalog.Product, 0, len(resp.Cards))}
	for _, card := range resp.Cards {
		page.Products = append(page.Products, convertWildberriesCard(card))
	}
	page.Next = nextCursor(req.Cursor, resp.Cursor, limit)
	return page, nil
}

func nextCursor(sent *catalog.Cursor, got *WildberriesResponseCursor, limit int) *catalog.Cursor {
	if got == nil || got.Total < limit {
		return nil
	}
	next := &catalog.Cursor{UpdatedAt: got.UpdatedAt, NmID: got.NmID}
	if next.IsZero() {
		return nil
	}
	if sent != nil && *sent == *next {
		return nil
	}
	return next
}

func convertWildberriesCard(card WildberriesCard) catalog.Product {
	return catalog.Product{
		ID:         card.NmID,
		VendorCode: card.VendorCode,
		Title:      card.Title,
	}
}

// doRequest posts body and returns the status and raw response.
// Transport failures and non-2xx statuses become *shared.UpstreamError.
func (a *WildberriesAdapter) doRequest(ctx context.Context, token string, body any) (int, []byte, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return 0, nil, fmt.Errorf("wildberries: failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.CardsListURL(), bytes.NewReader(bodyBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("wildberries: failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", token)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return 0, nil, shared.NewUpstreamFailure("request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxWildberriesResponseSize))
	if err != nil {
		return resp.StatusCode, nil, shared.NewUpstreamFailure("failed to read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, raw, shared.NewUpstreamStatus(resp.StatusCode, string(raw))
	}

	return resp.StatusCode, raw, nil
}
