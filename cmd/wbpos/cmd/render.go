package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	trackingapp "github.com/wbpos/backend/internal/application/tracking"
	"github.com/wbpos/backend/internal/domain/catalog"
	"github.com/wbpos/backend/internal/domain/tracking"
)

// Output formats for table-like commands
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
	FormatJSON     = "json"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

// renderPositions writes the date-columned position table followed by the
// per-keyword summary columns
func renderPositions(w io.Writer, tbl *trackingapp.Table, format string) error {
	switch format {
	case FormatCSV:
		return tbl.WriteCSV(w)
	case FormatJSON:
		return writeJSON(w, tbl)
	case FormatText, FormatMarkdown:
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	t := newTable(w)
	t.SetTitle(tbl.ProductLabel)

	header := table.Row{"Keyword"}
	for _, d := range tbl.Columns {
		header = append(header, d.String())
	}
	header = append(header, "Best", "Avg")
	t.AppendHeader(header)

	configs := make([]table.ColumnConfig, 0, len(header)-1)
	for i := 2; i <= len(header); i++ {
		configs = append(configs, table.ColumnConfig{Number: i, Align: text.AlignRight})
	}
	t.SetColumnConfigs(configs)

	for _, row := range tbl.Rows {
		r := table.Row{row.Keyword}
		for _, c := range row.Cells {
			r = append(r, c.Text())
		}
		r = append(r, rankText(row.Summary.Best, row.Summary.Observed > 0), averageText(row.Summary))
		t.AppendRow(r)
	}
	if len(tbl.Rows) == 0 {
		t.AppendFooter(table.Row{"no keywords configured"})
	}

	if format == FormatMarkdown {
		t.RenderMarkdown()
		return nil
	}
	t.Render()
	return nil
}

func rankText(r tracking.Rank, observed bool) string {
	if !observed {
		return ""
	}
	if v, ok := r.Int(); ok {
		return strconv.Itoa(v)
	}
	return trackingapp.AbsentText
}

func averageText(s trackingapp.Summary) string {
	if !s.Average.Valid {
		return ""
	}
	return s.Average.Decimal.StringFixed(1)
}

func renderProducts(w io.Writer, products []catalog.Product, format string) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, products)
	case FormatText, FormatMarkdown, FormatCSV:
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"nmID", "Vendor code", "Title"})
	for _, p := range products {
		t.AppendRow(table.Row{p.ID, p.VendorCode, p.Title})
	}
	t.AppendFooter(table.Row{"", "Total", len(products)})

	switch format {
	case FormatCSV:
		t.RenderCSV()
	case FormatMarkdown:
		t.RenderMarkdown()
	default:
		t.Render()
	}
	return nil
}

func renderConfig(w io.Writer, cfg *tracking.Config) {
	days := 0
	if cfg.History != nil {
		days = len(cfg.History.UnionDates())
	}

	t := newTable(w)
	t.AppendRows([]table.Row{
		{"Version", cfg.GetVersion()},
		{"Token", maskToken(cfg.Token)},
		{"Product", productText(cfg.ProductID)},
		{"Keywords", len(cfg.Keywords)},
		{"Tracked days", days},
	})
	for i, k := range cfg.Keywords {
		t.AppendRow(table.Row{"  " + strconv.Itoa(i+1), k})
	}
	t.Render()
}

func productText(id int64) string {
	if id == 0 {
		return "not selected"
	}
	return strconv.FormatInt(id, 10)
}

// maskToken keeps the last four characters of the seller token
func maskToken(token string) string {
	if token == "" {
		return "not set"
	}
	r := []rune(token)
	if len(r) <= 4 {
		return "****"
	}
	return "****" + string(r[len(r)-4:])
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
