package formatter

import (
	"encoding/json"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

func buildDefaultTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)

	// Keep the header as written
	t.Style().Format.Header = text.FormatDefault
	return t
}

// PrintTable renders rows under header to w
func PrintTable(w io.Writer, title string, header table.Row, rows []table.Row) {
	t := buildDefaultTable(w)
	if title != "" {
		t.SetTitle(title)
	}
	t.AppendHeader(header)
	t.AppendRows(rows)
	t.Render()
}

// PrintJSON writes v as indented JSON to w
func PrintJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
