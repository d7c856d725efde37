package dto

import (
	"github.com/wbpos/backend/internal/domain/catalog"
	"github.com/wbpos/backend/internal/domain/tracking"
)

// FetchProductsRequest asks for the seller's full card listing
type FetchProductsRequest struct {
	Token  string `json:"token" binding:"required"`
	Search string `json:"search" binding:"max=256"`
}

// ProductResponse is one card with its display label
type ProductResponse struct {
	ID         int64  `json:"id"`
	VendorCode string `json:"vendorCode,omitempty"`
	Title      string `json:"title,omitempty"`
	Label      string `json:"label"`
}

// ProductListResponse is the merged, deduplicated listing
type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Count    int               `json:"count"`
}

// NewProductListResponse converts domain products
func NewProductListResponse(products []catalog.Product) ProductListResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, ProductResponse{
			ID:         p.ID,
			VendorCode: p.VendorCode,
			Title:      p.Title,
			Label:      p.Label(),
		})
	}
	return ProductListResponse{Products: out, Count: len(out)}
}

// ConfigResponse is the stored tracking configuration without its history
type ConfigResponse struct {
	Token        string   `json:"token"`
	ProductID    int64    `json:"productId"`
	Keywords     []string `json:"keywords"`
	Version      int64    `json:"version"`
	TrackedDates int      `json:"trackedDates"`
	Points       int      `json:"points"`
	CheckRunning bool     `json:"checkRunning"`
}

// NewConfigResponse converts the aggregate
func NewConfigResponse(cfg *tracking.Config, running bool) ConfigResponse {
	keywords := cfg.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	return ConfigResponse{
		Token:        cfg.Token,
		ProductID:    cfg.ProductID,
		Keywords:     keywords,
		Version:      cfg.GetVersion(),
		TrackedDates: len(cfg.History.UnionDates()),
		Points:       cfg.History.Len(),
		CheckRunning: running,
	}
}

// SaveConfigRequest replaces token, product and keywords.
// KeywordText is split on newlines and appended to Keywords.
// Version may also be sent as an If-Match header.
type SaveConfigRequest struct {
	Token       string   `json:"token" binding:"max=4096"`
	ProductID   int64    `json:"productId" binding:"gte=0"`
	Keywords    []string `json:"keywords" binding:"max=500,dive,max=256"`
	KeywordText string   `json:"keywordText" binding:"max=65536"`
	Version     *int64   `json:"version" binding:"omitempty,gte=0"`
}

// AllKeywords merges the list and the free-text forms
func (r SaveConfigRequest) AllKeywords() []string {
	if r.KeywordText == "" {
		return r.Keywords
	}
	out := make([]string, 0, len(r.Keywords))
	out = append(out, r.Keywords...)
	return append(out, tracking.ParseKeywordText(r.KeywordText)...)
}

// RunCheckRequest optionally pins the config version the check must run against
type RunCheckRequest struct {
	Version *int64 `json:"version" binding:"omitempty,gte=0"`
}

// PositionsRequest is the rank sampling contract. nmID and productId are
// accepted as synonyms.
type PositionsRequest struct {
	Token     string   `json:"token"`
	NmID      int64    `json:"nmID"`
	ProductID int64    `json:"productId"`
	Keywords  []string `json:"keywords"`
	Days      int      `json:"days"`
}

// Product returns whichever product id field was set
func (r PositionsRequest) Product() int64 {
	if r.NmID != 0 {
		return r.NmID
	}
	return r.ProductID
}

// PositionsResponse carries one history per requested keyword
type PositionsResponse struct {
	Rows []PositionsRow `json:"rows"`
}

// PositionsRow is one keyword's sampled series
type PositionsRow struct {
	Keyword string               `json:"keyword"`
	History []tracking.RankPoint `json:"history"`
}

// PositionsError is the contract's error body
type PositionsError struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// NewPositionsResponse orders rows like the requested keywords
func NewPositionsResponse(keywords []string, obs tracking.Observations) PositionsResponse {
	rows := make([]PositionsRow, 0, len(keywords))
	for _, k := range keywords {
		points := obs[k]
		if points == nil {
			points = []tracking.RankPoint{}
		}
		rows = append(rows, PositionsRow{Keyword: k, History: points})
	}
	return PositionsResponse{Rows: rows}
}

// HealthResponse reports dependency status
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
