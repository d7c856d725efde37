package tracking

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/wbpos/backend/internal/domain/shared"
)

// DateLayout is the ISO 8601 calendar date layout used for every RankPoint
const DateLayout = "2006-01-02"

// DefaultTopN is the size of the observed search-result window
const DefaultTopN = 300

// ---------------------------------------------------------------------------
// Date
// ---------------------------------------------------------------------------

// Date is a calendar day in ISO form (YYYY-MM-DD). Lexical order equals
// chronological order.
type Date string

// ParseDate validates an ISO calendar date
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", shared.NewValidationError("date", fmt.Sprintf("%q is not a YYYY-MM-DD date", s))
	}
	return Date(t.Format(DateLayout)), nil
}

// DateOf returns the calendar day of t in t's location
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// IsValid reports whether d is a well-formed calendar date
func (d Date) IsValid() bool {
	_, err := time.Parse(DateLayout, string(d))
	return err == nil
}

// Time returns midnight UTC of d
func (d Date) Time() time.Time {
	t, _ := time.Parse(DateLayout, string(d))
	return t
}

// AddDays returns the date n days after d (n may be negative)
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

func (d Date) String() string {
	return string(d)
}

// ---------------------------------------------------------------------------
// Rank
// ---------------------------------------------------------------------------

// Rank is a 1-based search position. The zero value is Absent: the product
// was checked and found outside the top-N window.
type Rank int

// Absent marks a check that did not find the product in the top-N window
const Absent Rank = 0

// NewRank validates a present rank against the top-N window
func NewRank(v, topN int) (Rank, error) {
	if topN <= 0 {
		topN = DefaultTopN
	}
	if v < 1 || v > topN {
		return Absent, shared.NewValidationError("rank", fmt.Sprintf("%d is outside [1, %d]", v, topN))
	}
	return Rank(v), nil
}

// IsAbsent reports whether the rank is the absent sentinel
func (r Rank) IsAbsent() bool {
	return r <= 0
}

// Int returns the numeric rank and false when absent
func (r Rank) Int() (int, bool) {
	if r.IsAbsent() {
		return 0, false
	}
	return int(r), true
}

// MarshalJSON encodes Absent as null
func (r Rank) MarshalJSON() ([]byte, error) {
	if r.IsAbsent() {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(int(r))), nil
}

// UnmarshalJSON decodes null (and non-positive numbers) as Absent
func (r *Rank) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = Absent
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("rank: %w", err)
	}
	if v < 0 {
		v = 0
	}
	*r = Rank(v)
	return nil
}

// ---------------------------------------------------------------------------
// RankPoint
// ---------------------------------------------------------------------------

// RankPoint is one observation of one keyword on one day
type RankPoint struct {
	Date Date `json:"date"`
	Rank Rank `json:"rank"`
}

// NewRankPoint builds a present observation
func NewRankPoint(date Date, rank Rank) RankPoint {
	return RankPoint{Date: date, Rank: rank}
}

// AbsentPoint builds an observation outside the top-N window
func AbsentPoint(date Date) RankPoint {
	return RankPoint{Date: date, Rank: Absent}
}

// Observations maps keyword to the points sampled for it
type Observations map[string][]RankPoint
