package ranking

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/wbpos/backend/internal/domain/tracking"
)

// DefaultAbsentRatio is the share of synthetic points outside the top-N window
const DefaultAbsentRatio = 0.1

// RandomSampler is a placeholder RankSampler producing synthetic ranks.
// It keeps the shape of the contract (one point per day per keyword, in
// date order, each either present or absent); the values carry no meaning.
type RandomSampler struct {
	topN        int
	absentRatio float64
	now         func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

var _ tracking.RankSampler = (*RandomSampler)(nil)

// RandomOption configures a RandomSampler
type RandomOption func(*RandomSampler)

// WithTopN sets the upper rank bound
func WithTopN(n int) RandomOption {
	return func(s *RandomSampler) {
		if n > 0 {
			s.topN = n
		}
	}
}

// WithAbsentRatio sets the probability of an absent point
func WithAbsentRatio(r float64) RandomOption {
	return func(s *RandomSampler) {
		if r >= 0 && r <= 1 {
			s.absentRatio = r
		}
	}
}

// WithClock sets the source of "today"
func WithClock(now func() time.Time) RandomOption {
	return func(s *RandomSampler) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSource sets the random source, e.g. a seeded PCG in tests
func WithSource(src rand.Source) RandomOption {
	return func(s *RandomSampler) {
		if src != nil {
			s.rnd = rand.New(src)
		}
	}
}

// NewRandomSampler creates a sampler with a 300-position window and 10% absent points
func NewRandomSampler(opts ...RandomOption) *RandomSampler {
	s := &RandomSampler{
		topN:        tracking.DefaultTopN,
		absentRatio: DefaultAbsentRatio,
		now:         time.Now,
		rnd:         rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sample returns WindowDays points per keyword ending today
func (s *RandomSampler) Sample(_ context.Context, req tracking.SampleRequest) (tracking.Observations, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	today := tracking.DateOf(s.now())
	obs := make(tracking.Observations, len(req.Keywords))

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, keyword := range req.Keywords {
		points := make([]tracking.RankPoint, 0, req.WindowDays)
		for i := req.WindowDays - 1; i >= 0; i-- {
			date := today.AddDays(-i)
			if s.rnd.Float64() < s.absentRatio {
				points = append(points, tracking.AbsentPoint(date))
				continue
			}
			points = append(points, tracking.NewRankPoint(date, tracking.Rank(s.rnd.IntN(s.topN)+1)))
		}
		obs[keyword] = points
	}
	return obs, nil
}
