package tracking

import (
	"encoding/json"
	"sort"
)

// History holds one ascending, date-unique series per keyword.
// The zero value is an empty history ready to use.
type History struct {
	series map[string][]RankPoint
}

// NewHistory returns an empty history
func NewHistory() *History {
	return &History{series: make(map[string][]RankPoint)}
}

// MergeAppend upserts every observation by (keyword, date). A new keyword
// gets a new series; an existing date is overwritten. Points with invalid
// dates or empty keywords are ignored. Applying the same observations twice
// leaves the same state as applying them once.
func (h *History) MergeAppend(obs Observations) {
	if h.series == nil {
		h.series = make(map[string][]RankPoint, len(obs))
	}
	for keyword, points := range obs {
		if keyword == "" {
			continue
		}
		s := h.series[keyword]
		for _, p := range points {
			if !p.Date.IsValid() {
				continue
			}
			s = upsert(s, p)
		}
		if len(s) > 0 {
			h.series[keyword] = s
		}
	}
}

// BoundRanks turns every rank above topN into Absent, since such a point
// lies outside the observed window. It returns how many points changed.
// A non-positive topN means DefaultTopN.
func (h *History) BoundRanks(topN int) int {
	if h == nil {
		return 0
	}
	if topN <= 0 {
		topN = DefaultTopN
	}
	changed := 0
	for _, s := range h.series {
		for i, p := range s {
			if int(p.Rank) > topN {
				s[i] = AbsentPoint(p.Date)
				changed++
			}
		}
	}
	return changed
}

// upsert inserts p keeping s sorted by date, replacing a point on the same date
func upsert(s []RankPoint, p RankPoint) []RankPoint {
	i := sort.Search(len(s), func(i int) bool { return s[i].Date >= p.Date })
	if i < len(s) && s[i].Date == p.Date {
		s[i] = p
		return s
	}
	s = append(s, RankPoint{})
	copy(s[i+1:], s[i:])
	s[i] = p
	return s
}

// UnionDates returns every date present in any series, sorted and unique
func (h *History) UnionDates() []Date {
	seen := make(map[Date]struct{})
	for _, s := range h.series {
		for _, p := range s {
			seen[p.Date] = struct{}{}
		}
	}
	dates := make([]Date, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })
	return dates
}

// PointAt looks up the observation for keyword on exactly date.
// false means no check happened that day, which differs from an Absent rank.
func (h *History) PointAt(keyword string, date Date) (RankPoint, bool) {
	s := h.series[keyword]
	i := h.index(s, date)
	if i < 0 {
		return RankPoint{}, false
	}
	return s[i], true
}

// Delta compares the point on date with the nearest earlier stored point of
// the same keyword and returns prev-cur, so a positive value is an
// improvement. false is returned when either point is missing or absent.
func (h *History) Delta(keyword string, date Date) (int, bool) {
	s := h.series[keyword]
	i := h.index(s, date)
	if i <= 0 {
		return 0, false
	}
	cur, ok := s[i].Rank.Int()
	if !ok {
		return 0, false
	}
	prev, ok := s[i-1].Rank.Int()
	if !ok {
		return 0, false
	}
	return prev - cur, true
}

func (h *History) index(s []RankPoint, date Date) int {
	i := sort.Search(len(s), func(i int) bool { return s[i].Date >= date })
	if i < len(s) && s[i].Date == date {
		return i
	}
	return -1
}

// Series returns a copy of the keyword's points
func (h *History) Series(keyword string) []RankPoint {
	s := h.series[keyword]
	out := make([]RankPoint, len(s))
	copy(out, s)
	return out
}

// Keywords returns every keyword with at least one point, sorted
func (h *History) Keywords() []string {
	out := make([]string, 0, len(h.series))
	for k := range h.series {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Len returns the total number of stored points
func (h *History) Len() int {
	n := 0
	for _, s := range h.series {
		n += len(s)
	}
	return n
}

// Clone returns a deep copy
func (h *History) Clone() *History {
	c := NewHistory()
	for k, s := range h.series {
		c.series[k] = append([]RankPoint(nil), s...)
	}
	return c
}

// MarshalJSON encodes the history as {keyword: [{date, rank}, ...]}
func (h *History) MarshalJSON() ([]byte, error) {
	if h == nil || h.series == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(h.series)
}

// UnmarshalJSON decodes a stored history. Series are re-sorted, duplicate
// dates keep the last occurrence and invalid dates are dropped.
func (h *History) UnmarshalJSON(data []byte) error {
	var raw map[string][]RankPoint
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	h.series = make(map[string][]RankPoint, len(raw))
	h.MergeAppend(Observations(raw))
	return nil
}
