package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/storescope/storescope/pkg/database"
)

func renderResult(w io.Writer, res *database.Result, format string) error {
	if res.Scalar != nil {
		return renderScalar(w, res.Scalar, format)
	}
	return renderRows(w, res.RowSet, format)
}

func renderScalar(w io.Writer, scalar *database.ScalarResult, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(scalar)
	}
	_, err := fmt.Fprintf(w, "%s: %d\n", scalar.Label, scalar.Value)
	return err
}

func renderRows(w io.Writer, rs *database.RowSet, format string) error {
	switch format {
	case "json":
		return renderRowsJSON(w, rs)
	case "csv":
		return renderRowsCSV(w, rs)
	case "md", "markdown":
		return renderRowsMarkdown(w, rs)
	default:
		return renderRowsTable(w, rs)
	}
}

func renderRowsTable(w io.Writer, rs *database.RowSet) error {
	if len(rs.Rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(rs.Columns))
	for i, col := range rs.Columns {
		headerRow[i] = col
	}
	t.AppendHeader(headerRow)

	for _, cells := range rs.Rows {
		row := make(table.Row, len(cells))
		for i, cell := range cells {
			row[i] = formatValue(cell)
		}
		t.AppendRow(row)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(rs.Rows))
	return nil
}

func renderRowsJSON(w io.Writer, rs *database.RowSet) error {
	// Rows as objects keyed by column name for scripting
	results := make([]map[string]any, 0, len(rs.Rows))
	for _, cells := range rs.Rows {
		row := make(map[string]any, len(rs.Columns))
		for i, col := range rs.Columns {
			row[col] = cells[i]
		}
		results = append(results, row)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func renderRowsCSV(w io.Writer, rs *database.RowSet) error {
	_, _ = fmt.Fprintln(w, strings.Join(rs.Columns, ","))

	for _, cells := range rs.Rows {
		values := make([]string, len(cells))
		for i, cell := range cells {
			values[i] = escapeCSV(formatValue(cell))
		}
		_, _ = fmt.Fprintln(w, strings.Join(values, ","))
	}
	return nil
}

func renderRowsMarkdown(w io.Writer, rs *database.RowSet) error {
	if len(rs.Rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(rs.Columns, " | "))
	seps := make([]string, len(rs.Columns))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	for _, cells := range rs.Rows {
		values := make([]string, len(cells))
		for i, cell := range cells {
			values[i] = formatValue(cell)
		}
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(values, " | "))
	}
	return nil
}

func formatValue(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", v)
}

func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
