package tracking

import (
	"github.com/wbpos/backend/internal/domain/shared"
)

// StorageKey is the fixed key the tracking config blob is stored under
const StorageKey = "wb-keyword-config-v1"

// Config is the single persisted tracking aggregate: which product is
// tracked, for which keywords, and every rank observed so far.
type Config struct {
	shared.BaseAggregateRoot
	Token     string   `json:"token"`
	ProductID int64    `json:"productId,omitempty"`
	Keywords  []string `json:"keywords"`
	History   *History `json:"history"`
}

// NewConfig returns an empty, never-stored config
func NewConfig() *Config {
	return &Config{
		Keywords: []string{},
		History:  NewHistory(),
	}
}

// HasProduct reports whether a product is selected
func (c *Config) HasProduct() bool {
	return c.ProductID > 0
}

// SetKeywords replaces the keyword list with its normalized form
func (c *Config) SetKeywords(keywords []string) {
	c.Keywords = NormalizeKeywords(keywords)
}

// SetProduct selects the tracked product. 0 clears the selection.
func (c *Config) SetProduct(id int64) error {
	if id < 0 {
		return shared.NewValidationError("productId", "must not be negative")
	}
	c.ProductID = id
	return nil
}

// ValidateForCheck reports the first missing input a check needs
func (c *Config) ValidateForCheck() error {
	if c.Token == "" {
		return shared.NewValidationError("token", "is required")
	}
	if !c.HasProduct() {
		return shared.NewValidationError("productId", "is required")
	}
	if len(c.Keywords) == 0 {
		return shared.NewValidationError("keywords", "at least one keyword is required")
	}
	return nil
}

// Record merges sampled observations into the history
func (c *Config) Record(obs Observations) {
	if c.History == nil {
		c.History = NewHistory()
	}
	c.History.MergeAppend(obs)
}

// Normalize repairs a decoded config so every field is usable
func (c *Config) Normalize() {
	if c.History == nil {
		c.History = NewHistory()
	}
	c.SetKeywords(c.Keywords)
	if c.ProductID < 0 {
		c.ProductID = 0
	}
}
