package tracking

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbpos/backend/internal/domain/tracking"
)

func sampleHistory() *tracking.History {
	h := tracking.NewHistory()
	h.MergeAppend(tracking.Observations{
		"mug": {point("2024-03-01", 12), point("2024-03-02", 9), point("2024-03-04", 9), point("2024-03-05", 15)},
		"cup": {point("2024-03-02", 0), point("2024-03-03", 40)},
	})
	return h
}

func TestRender_ColumnsAndCells(t *testing.T) {
	h := sampleHistory()
	table := Render(h, []string{"cup", "mug", "plate"}, "Mug (nmID 1)")

	assert.Equal(t, "Mug (nmID 1)", table.ProductLabel)
	assert.Equal(t, []tracking.Date{"2024-03-01", "2024-03-02", "2024-03-03", "2024-03-04", "2024-03-05"}, table.Columns)
	require.Len(t, table.Rows, 3)

	cup := table.Rows[0]
	assert.Equal(t, "cup", cup.Keyword)
	texts := make([]string, 0, len(cup.Cells))
	for _, c := range cup.Cells {
		texts = append(texts, c.Text())
	}
	assert.Equal(t, []string{"", AbsentText, "40", "", ""}, texts)

	mug := table.Rows[1]
	assert.Equal(t, "+3", mug.Cells[1].DeltaText())
	assert.Equal(t, "", mug.Cells[2].RankText(), "gap day is not observed")
	assert.False(t, mug.Cells[2].Observed)
	require.NotNil(t, mug.Cells[3].Delta, "delta spans the gap")
	assert.Equal(t, 0, *mug.Cells[3].Delta)
	assert.Equal(t, "", mug.Cells[3].DeltaText(), "zero delta is not displayed")
	assert.Equal(t, "-6", mug.Cells[4].DeltaText())
	assert.Equal(t, "15 (-6)", mug.Cells[4].Text())

	plate := table.Rows[2]
	assert.Len(t, plate.Cells, 5)
	for _, c := range plate.Cells {
		assert.False(t, c.Observed)
	}
	assert.Equal(t, 0, plate.Summary.Observed)
	assert.False(t, plate.Summary.Average.Valid)

	assert.Equal(t, 6, h.Len(), "render must not mutate the history")
}

func TestRender_NilHistory(t *testing.T) {
	table := Render(nil, []string{"mug"}, NoProductLabel)
	assert.Empty(t, table.Columns)
	require.Len(t, table.Rows, 1)
	assert.Empty(t, table.Rows[0].Cells)
}

func TestSummary(t *testing.T) {
	table := Render(sampleHistory(), []string{"mug", "cup"}, "")

	mug := table.Rows[0].Summary
	assert.Equal(t, 4, mug.Observed)
	assert.Equal(t, tracking.Rank(15), mug.Latest)
	assert.Equal(t, tracking.Rank(9), mug.Best)
	require.True(t, mug.Average.Valid)
	assert.Equal(t, "11.3", mug.Average.Decimal.String())

	cup := table.Rows[1].Summary
	assert.Equal(t, tracking.Rank(40), cup.Latest)
	assert.Equal(t, tracking.Rank(40), cup.Best)
	assert.Equal(t, "40", cup.Average.Decimal.String())
}

func TestCell_Text(t *testing.T) {
	plus, minus, zero := 4, -2, 0
	tests := []struct {
		name  string
		cell  Cell
		rank  string
		delta string
	}{
		{"not observed", Cell{}, "", ""},
		{"absent", Cell{Observed: true}, AbsentText, ""},
		{"improved", Cell{Observed: true, Rank: 3, Delta: &plus}, "3", "+4"},
		{"dropped", Cell{Observed: true, Rank: 9, Delta: &minus}, "9", "-2"},
		{"unchanged", Cell{Observed: true, Rank: 9, Delta: &zero}, "9", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.rank, tt.cell.RankText())
			assert.Equal(t, tt.delta, tt.cell.DeltaText())
		})
	}
}

func TestTable_WriteCSV(t *testing.T) {
	h := tracking.NewHistory()
	h.MergeAppend(tracking.Observations{
		"mug, large": {point("2024-03-01", 12), point("2024-03-02", 9)},
	})
	var buf bytes.Buffer
	require.NoError(t, Render(h, []string{"mug, large"}, "").WriteCSV(&buf))
	assert.Equal(t, "keyword,2024-03-01,2024-03-02\n\"mug, large\",12,9 (+3)\n", buf.String())
}

func TestTable_JSON(t *testing.T) {
	raw, err := json.Marshal(Render(sampleHistory(), []string{"cup"}, "x"))
	require.NoError(t, err)

	var decoded struct {
		Columns []string `json:"columns"`
		Rows    []struct {
			Cells []struct {
				Observed bool `json:"observed"`
				Rank     *int `json:"rank"`
			} `json:"cells"`
			Summary struct {
				Average *string `json:"average"`
			} `json:"summary"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded.Rows, 1)
	assert.True(t, decoded.Rows[0].Cells[1].Observed)
	assert.Nil(t, decoded.Rows[0].Cells[1].Rank, "absent rank encodes as null")
	require.NotNil(t, decoded.Rows[0].Summary.Average)
	assert.Equal(t, "40", *decoded.Rows[0].Summary.Average)
}
