package ecommerce

import (
	"errors"
	"net/url"
	"strings"

	"github.com/wbpos/backend/internal/domain/catalog"
)

// WildberriesConfig holds configuration for the Wildberries content API
type WildberriesConfig struct {
	// APIBaseURL is the base URL of the content API
	APIBaseURL string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
	// PageLimit is the number of cards requested per page (1..100)
	PageLimit int
}

const (
	// WildberriesContentAPIURL is the production content API endpoint
	WildberriesContentAPIURL = "https://content-api.wildberries.ru"
	// wildberriesCardsListPath lists seller cards with cursor pagination
	wildberriesCardsListPath = "/content/v2/get/cards/list"
	// wildberriesMaxPageLimit is the largest page the API accepts
	wildberriesMaxPageLimit = 100
)

// Errors for Wildberries configuration
var (
	ErrWildberriesConfigInvalidURL   = errors.New("wildberries: API base URL is invalid")
	ErrWildberriesConfigInvalidLimit = errors.New("wildberries: page limit must be between 1 and 100")
)

// NewWildberriesConfig creates a configuration with production defaults
func NewWildberriesConfig() *WildberriesConfig {
	return &WildberriesConfig{
		APIBaseURL:     WildberriesContentAPIURL,
		TimeoutSeconds: 30,
		PageLimit:      catalog.DefaultPageLimit,
	}
}

// Validate fills defaults and validates the configuration
func (c *WildberriesConfig) Validate() error {
	if c.APIBaseURL == "" {
		c.APIBaseURL = WildberriesContentAPIURL
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ErrWildberriesConfigInvalidURL
	}
	c.APIBaseURL = strings.TrimRight(c.APIBaseURL, "/")
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	if c.PageLimit == 0 {
		c.PageLimit = catalog.DefaultPageLimit
	}
	if c.PageLimit < 1 || c.PageLimit > wildberriesMaxPageLimit {
		return ErrWildberriesConfigInvalidLimit
	}
	return nil
}

// CardsListURL returns the full URL of the cards list endpoint
func (c *WildberriesConfig) CardsListURL() string {
	return c.APIBaseURL + wildberriesCardsListPath
}
