package tracking

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/wbpos/backend/internal/domain/tracking"
)

// AbsentText is displayed for a check that found the product outside the top-N window
const AbsentText = "—"

// NoProductLabel is the table header when no product is selected
const NoProductLabel = "—"

func fallbackLabel(productID int64) string {
	return fmt.Sprintf("nmID %d", productID)
}

// Table is the date-columned view of a history
type Table struct {
	ProductLabel string          `json:"productLabel"`
	Columns      []tracking.Date `json:"columns"`
	Rows         []Row           `json:"rows"`
}

// Row holds one keyword's cells, aligned with Table.Columns
type Row struct {
	Keyword string  `json:"keyword"`
	Cells   []Cell  `json:"cells"`
	Summary Summary `json:"summary"`
}

// Cell is one (keyword, date) intersection. Observed=false means no check
// ran that day; an observed cell can still carry an Absent rank.
type Cell struct {
	Date     tracking.Date `json:"date"`
	Observed bool          `json:"observed"`
	Rank     tracking.Rank `json:"rank"`
	Delta    *int          `json:"delta,omitempty"`
}

// RankText renders the rank for display
func (c Cell) RankText() string {
	if !c.Observed {
		return ""
	}
	if v, ok := c.Rank.Int(); ok {
		return strconv.Itoa(v)
	}
	return AbsentText
}

// DeltaText renders the change against the previous check as +N or -N.
// Zero and unknown deltas render empty.
func (c Cell) DeltaText() string {
	if c.Delta == nil || *c.Delta == 0 {
		return ""
	}
	if *c.Delta > 0 {
		return "+" + strconv.Itoa(*c.Delta)
	}
	return strconv.Itoa(*c.Delta)
}

// Text is RankText followed by the delta in parentheses when there is one
func (c Cell) Text() string {
	if d := c.DeltaText(); d != "" {
		return c.RankText() + " (" + d + ")"
	}
	return c.RankText()
}

// Summary aggregates a row's observed points
type Summary struct {
	Observed int                 `json:"observed"`
	Latest   tracking.Rank       `json:"latest"`
	Best     tracking.Rank       `json:"best"`
	Average  decimal.NullDecimal `json:"average"`
}

// Render builds the table for keywords in the given order. Keywords with
// no stored series produce rows of unobserved cells. history is not modified.
func Render(history *tracking.History, keywords []string, productLabel string) *Table {
	if history == nil {
		history = tracking.NewHistory()
	}
	columns := history.UnionDates()

	t := &Table{
		ProductLabel: productLabel,
		Columns:      columns,
		Rows:         make([]Row, 0, len(keywords)),
	}
	for _, keyword := range keywords {
		row := Row{Keyword: keyword, Cells: make([]Cell, len(columns))}
		for i, date := range columns {
			cell := Cell{Date: date}
			if p, ok := history.PointAt(keyword, date); ok {
				cell.Observed = true
				cell.Rank = p.Rank
				if d, ok := history.Delta(keyword, date); ok {
					cell.Delta = &d
				}
			}
			row.Cells[i] = cell
		}
		row.Summary = summarize(history.Series(keyword))
		t.Rows = append(t.Rows, row)
	}
	return t
}

func summarize(points []tracking.RankPoint) Summary {
	s := Summary{Observed: len(points)}
	if len(points) == 0 {
		return s
	}
	s.Latest = points[len(points)-1].Rank

	sum := decimal.Zero
	present := 0
	for _, p := range points {
		v, ok := p.Rank.Int()
		if !ok {
			continue
		}
		present++
		sum = sum.Add(decimal.NewFromInt(int64(v)))
		if s.Best.IsAbsent() || p.Rank < s.Best {
			s.Best = p.Rank
		}
	}
	if present > 0 {
		s.Average = decimal.NewNullDecimal(sum.Div(decimal.NewFromInt(int64(present))).Round(1))
	}
	return s
}

// WriteCSV writes a header of "keyword" plus every date, then one line per row
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(t.Columns)+1)
	header = append(header, "keyword")
	for _, d := range t.Columns {
		header = append(header, d.String())
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, row := range t.Rows {
		record := make([]string, 0, len(row.Cells)+1)
		record = append(record, row.Keyword)
		for _, c := range row.Cells {
			record = append(record, c.Text())
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
