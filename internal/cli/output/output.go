// Package output renders CLI results: colored status lines, indented JSON,
// and the aligned table used by the polls listing.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	infoColor    = color.New(color.FgCyan)
)

// Success prints a green confirmation line.
func Success(format string, a ...any) {
	successColor.Printf("✓ "+format+"\n", a...)
}

// Info prints a cyan status line.
func Info(format string, a ...any) {
	infoColor.Printf(format+"\n", a...)
}

// JSON writes v as indented JSON to stdout.
func JSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Table collects rows and renders them in aligned columns under an
// uppercased header.
type Table struct {
	headers []string
	rows    [][]string
}

func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Render writes the table to stdout.
func (t *Table) Render() {
	t.RenderTo(os.Stdout)
}

// RenderTo writes the table to w.
func (t *Table) RenderTo(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	upper := make([]string, len(t.headers))
	for i, h := range t.headers {
		upper[i] = strings.ToUpper(h)
	}
	fmt.Fprintln(tw, strings.Join(upper, "\t"))

	for _, row := range t.rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	tw.Flush()
}
