package tracking

import (
	"context"

	"github.com/wbpos/backend/internal/domain/shared"
)

// DefaultWindowDays is how many trailing days one check reports
const DefaultWindowDays = 10

// SampleRequest asks for the daily ranks of one product
type SampleRequest struct {
	Token      string
	ProductID  int64
	Keywords   []string
	WindowDays int
}

// Validate checks the product id and keyword list and defaults the window
func (r *SampleRequest) Validate() error {
	if r.ProductID <= 0 {
		return shared.NewValidationError("productId", "is required")
	}
	if len(r.Keywords) == 0 {
		return shared.NewValidationError("keywords", "must not be empty")
	}
	for _, k := range r.Keywords {
		if k == "" {
			return shared.NewValidationError("keywords", "must not contain empty keywords")
		}
	}
	if r.WindowDays <= 0 {
		r.WindowDays = DefaultWindowDays
	}
	return nil
}

// RankSampler returns, for every keyword, one point per day over the last
// WindowDays days ending today, in ascending date order.
type RankSampler interface {
	Sample(ctx context.Context, req SampleRequest) (Observations, error)
}
