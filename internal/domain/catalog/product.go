package catalog

import (
	"context"
	"fmt"
	"time"
)

// ---------------------------------------------------------------------------
// Product
// ---------------------------------------------------------------------------

// Product is one seller card as listed by the marketplace content API.
// Identity is ID (the marketplace nmID). Empty strings mean the field was absent.
type Product struct {
	ID         int64  `json:"id"`
	VendorCode string `json:"vendorCode,omitempty"`
	Title      string `json:"title,omitempty"`
}

// DefaultLabel is used when a product has neither title nor vendor code
const DefaultLabel = "product"

// Label returns a human-readable name: title, else vendor code, else a
// generic placeholder, always suffixed with the nmID.
func (p Product) Label() string {
	name := p.Title
	if name == "" {
		name = p.VendorCode
	}
	if name == "" {
		name = DefaultLabel
	}
	return fmt.Sprintf("%s (nmID %d)", name, p.ID)
}

// ---------------------------------------------------------------------------
// Paging contract
// ---------------------------------------------------------------------------

// DefaultPageLimit is the page size requested from the content API
const DefaultPageLimit = 100

// PhotoFilter selects cards by presence of photos
type PhotoFilter int

const (
	// PhotoFilterAll returns cards regardless of photos
	PhotoFilterAll PhotoFilter = -1
	// PhotoFilterWithout returns only cards without photos
	PhotoFilterWithout PhotoFilter = 0
	// PhotoFilterWith returns only cards with photos
	PhotoFilterWith PhotoFilter = 1
)

// IsValid returns true for the three values the upstream accepts
func (f PhotoFilter) IsValid() bool {
	return f >= PhotoFilterAll && f <= PhotoFilterWith
}

// Cursor is the upstream continuation token. The pair identifies the last
// card of the previous page.
type Cursor struct {
	UpdatedAt string `json:"updatedAt,omitempty"`
	NmID      int64  `json:"nmID,omitempty"`
}

// IsZero reports whether the cursor carries no position
func (c Cursor) IsZero() bool {
	return c.UpdatedAt == "" && c.NmID == 0
}

// PageRequest describes one page call. Results are always sorted by last
// update time; Ascending=false means newest first.
type PageRequest struct {
	Token       string
	Limit       int
	Cursor      *Cursor
	TextSearch  string
	PhotoFilter PhotoFilter
	Ascending   bool
}

// NewPageRequest returns the request used for a full catalog sync
func NewPageRequest(token, textSearch string) PageRequest {
	return PageRequest{
		Token:       token,
		Limit:       DefaultPageLimit,
		TextSearch:  textSearch,
		PhotoFilter: PhotoFilterAll,
	}
}

// Page is one upstream page. Next is nil when the upstream signals no more pages.
type Page struct {
	Products []Product
	Next     *Cursor
}

// PageFetcher performs a single page request against the upstream catalog
type PageFetcher interface {
	FetchPage(ctx context.Context, req PageRequest) (*Page, error)
}

// SnapshotCache holds complete, deduplicated catalog listings.
// Get reports ok=false on a miss or an expired entry.
type SnapshotCache interface {
	Get(ctx context.Context, key string) (products []Product, ok bool, err error)
	Set(ctx context.Context, key string, products []Product, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
