package tracking

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pt(date string, rank int) RankPoint {
	return RankPoint{Date: Date(date), Rank: Rank(rank)}
}

func TestHistory_MergeAppend(t *testing.T) {
	t.Run("creates series for new keyword", func(t *testing.T) {
		h := NewHistory()
		h.MergeAppend(Observations{"mug": {pt("2024-01-02", 5), pt("2024-01-01", 7)}})

		assert.Equal(t, []RankPoint{pt("2024-01-01", 7), pt("2024-01-02", 5)}, h.Series("mug"))
	})

	t.Run("overwrites existing date and keeps order", func(t *testing.T) {
		h := NewHistory()
		h.MergeAppend(Observations{"mug": {pt("2024-01-01", 7), pt("2024-01-03", 9)}})
		h.MergeAppend(Observations{"mug": {pt("2024-01-03", 2), pt("2024-01-02", 4)}})

		assert.Equal(t, []RankPoint{
			pt("2024-01-01", 7),
			pt("2024-01-02", 4),
			pt("2024-01-03", 2),
		}, h.Series("mug"))
	})

	t.Run("idempotent", func(t *testing.T) {
		obs := Observations{
			"a": {pt("2024-01-01", 1), pt("2024-01-02", 0)},
			"b": {pt("2024-01-05", 300)},
		}
		once := NewHistory()
		once.MergeAppend(obs)
		twice := NewHistory()
		twice.MergeAppend(obs)
		twice.MergeAppend(obs)

		assert.Equal(t, once, twice)
	})

	t.Run("ignores invalid dates and empty keywords", func(t *testing.T) {
		h := NewHistory()
		h.MergeAppend(Observations{
			"":  {pt("2024-01-01", 1)},
			"a": {pt("not-a-date", 1), pt("2024-13-01", 1)},
		})
		assert.Equal(t, 0, h.Len())
		assert.Empty(t, h.Keywords())
	})

	t.Run("zero value history is usable", func(t *testing.T) {
		var h History
		h.MergeAppend(Observations{"a": {pt("2024-01-01", 3)}})
		assert.Equal(t, 1, h.Len())
	})
}

func TestHistory_UnionDates(t *testing.T) {
	h := NewHistory()
	h.MergeAppend(Observations{
		"a": {pt("2024-01-01", 1), pt("2024-01-03", 1)},
		"b": {pt("2024-01-02", 1), pt("2024-01-04", 1)},
	})

	assert.Equal(t, []Date{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04"}, h.UnionDates())
	assert.Empty(t, NewHistory().UnionDates())
}

func TestHistory_PointAtAndDelta(t *testing.T) {
	h := NewHistory()
	h.MergeAppend(Observations{"k": {pt("2024-01-01", 50), pt("2024-01-03", 30)}})

	t.Run("delta uses nearest earlier stored point", func(t *testing.T) {
		d, ok := h.Delta("k", "2024-01-03")
		require.True(t, ok)
		assert.Equal(t, 20, d)
	})

	t.Run("gap day has no point", func(t *testing.T) {
		_, ok := h.PointAt("k", "2024-01-02")
		assert.False(t, ok)
		_, ok = h.Delta("k", "2024-01-02")
		assert.False(t, ok)
	})

	t.Run("first point has no delta", func(t *testing.T) {
		p, ok := h.PointAt("k", "2024-01-01")
		require.True(t, ok)
		assert.Equal(t, Rank(50), p.Rank)
		_, ok = h.Delta("k", "2024-01-01")
		assert.False(t, ok)
	})

	t.Run("unknown keyword", func(t *testing.T) {
		_, ok := h.PointAt("missing", "2024-01-01")
		assert.False(t, ok)
		_, ok = h.Delta("missing", "2024-01-01")
		assert.False(t, ok)
	})

	t.Run("worsening is negative", func(t *testing.T) {
		w := NewHistory()
		w.MergeAppend(Observations{"k": {pt("2024-01-01", 10), pt("2024-01-02", 15)}})
		d, ok := w.Delta("k", "2024-01-02")
		require.True(t, ok)
		assert.Equal(t, -5, d)
	})
}

func TestHistory_DeltaWithAbsentRanks(t *testing.T) {
	h := NewHistory()
	h.MergeAppend(Observations{
		"curAbsent":  {pt("2024-01-01", 10), AbsentPoint("2024-01-02")},
		"prevAbsent": {AbsentPoint("2024-01-01"), pt("2024-01-02", 10)},
	})

	_, ok := h.Delta("curAbsent", "2024-01-02")
	assert.False(t, ok)
	_, ok = h.Delta("prevAbsent", "2024-01-02")
	assert.False(t, ok)

	p, ok := h.PointAt("curAbsent", "2024-01-02")
	require.True(t, ok, "absent rank is still an observation")
	assert.True(t, p.Rank.IsAbsent())
}

func TestHistory_SeriesIsCopy(t *testing.T) {
	h := NewHistory()
	h.MergeAppend(Observations{"k": {pt("2024-01-01", 1)}})

	s := h.Series("k")
	s[0].Rank = 99

	p, _ := h.PointAt("k", "2024-01-01")
	assert.Equal(t, Rank(1), p.Rank)
}

func TestHistory_Keywords(t *testing.T) {
	h := NewHistory()
	h.MergeAppend(Observations{"b": {pt("2024-01-01", 1)}, "a": {pt("2024-01-01", 1)}})
	assert.Equal(t, []string{"a", "b"}, h.Keywords())
}

func TestHistory_JSON(t *testing.T) {
	t.Run("encodes absent as null", func(t *testing.T) {
		h := NewHistory()
		h.MergeAppend(Observations{"k": {pt("2024-01-01", 3), AbsentPoint("2024-01-02")}})

		data, err := json.Marshal(h)
		require.NoError(t, err)
		assert.JSONEq(t, `{"k":[{"date":"2024-01-01","rank":3},{"date":"2024-01-02","rank":null}]}`, string(data))
	})

	t.Run("decoding normalizes stored series", func(t *testing.T) {
		raw := `{"k":[
			{"date":"2024-01-03","rank":5},
			{"date":"2024-01-01","rank":9},
			{"date":"2024-01-03","rank":4},
			{"date":"garbage","rank":1}
		]}`
		var h History
		require.NoError(t, json.Unmarshal([]byte(raw), &h))
		assert.Equal(t, []RankPoint{pt("2024-01-01", 9), pt("2024-01-03", 4)}, h.Series("k"))
	})

	t.Run("nil history encodes as empty object", func(t *testing.T) {
		var h *History
		data, err := json.Marshal(h)
		require.NoError(t, err)
		assert.Equal(t, "{}", string(data))
	})
}

func TestHistory_Clone(t *testing.T) {
	h := NewHistory()
	h.MergeAppend(Observations{"k": {pt("2024-01-01", 1)}})
	c := h.Clone()
	c.MergeAppend(Observations{"k": {pt("2024-01-02", 2)}})

	assert.Equal(t, 1, h.Len())
	assert.Equal(t, 2, c.Len())
}

func TestHistory_BoundRanks(t *testing.T) {
	var raw History
	require.NoError(t, json.Unmarshal([]byte(`{"mug":[{"date":"2024-03-01","rank":5},{"date":"2024-03-02","rank":301},{"date":"2024-03-03","rank":null}]}`), &raw))

	assert.Equal(t, 1, raw.BoundRanks(0))
	got, ok := raw.PointAt("mug", "2024-03-02")
	require.True(t, ok, "the point stays observed")
	assert.True(t, got.Rank.IsAbsent())

	got, _ = raw.PointAt("mug", "2024-03-01")
	assert.Equal(t, Rank(5), got.Rank)

	assert.Zero(t, raw.BoundRanks(0), "already bounded")
	assert.Equal(t, 1, raw.BoundRanks(4))

	var nilHistory *History
	assert.Zero(t, nilHistory.BoundRanks(10))
}
