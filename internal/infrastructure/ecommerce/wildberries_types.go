package ecommerce

// ---------------------------------------------------------------------------
// Wildberries content API request/response types
// ---------------------------------------------------------------------------

// WildberriesCardsListRequest is the body of POST /content/v2/get/cards/list
type WildberriesCardsListRequest struct {
	Settings WildberriesSettings `json:"settings"`
}

// WildberriesSettings groups sort, cursor and filter
type WildberriesSettings struct {
	Sort   WildberriesSort          `json:"sort"`
	Cursor WildberriesRequestCursor `json:"cursor"`
	Filter WildberriesFilter        `json:"filter"`
}

// WildberriesSort orders cards by last update time
type WildberriesSort struct {
	Ascending bool `json:"ascending"`
}

// WildberriesRequestCursor carries the page size and the previous page's last card
type WildberriesRequestCursor struct {
	Limit     int    `json:"limit"`
	UpdatedAt string `json:"updatedAt,omitempty"`
	NmID      int64  `json:"nmID,omitempty"`
}

// WildberriesFilter narrows the listed cards
type WildberriesFilter struct {
	TextSearch string `json:"textSearch"`
	WithPhoto  int    `json:"withPhoto"`
}

// WildberriesCardsListResponse is the cards list response
type WildberriesCardsListResponse struct {
	Cards  []WildberriesCard         `json:"cards"`
	Cursor *WildberriesResponseCursor `json:"cursor"`
}

// WildberriesCard is the subset of a card the tracker uses
type WildberriesCard struct {
	NmID       int64  `json:"nmID"`
	ImtID      int64  `json:"imtID,omitempty"`
	VendorCode string `json:"vendorCode"`
	Title      string `json:"title"`
	Brand      string `json:"brand,omitempty"`
	UpdatedAt  string `json:"updatedAt,omitempty"`
}

// WildberriesResponseCursor points after the last card of the page
type WildberriesResponseCursor struct {
	UpdatedAt string `json:"updatedAt"`
	NmID      int64  `json:"nmID"`
	Total     int    `json:"total"`
}
