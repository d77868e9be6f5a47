package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// printer writes status lines. Colors follow color.NoColor, which already
// honors NO_COLOR and non-terminal output.
type printer struct {
	out io.Writer
	err io.Writer
}

func newPrinter() *printer {
	return &printer{out: os.Stdout, err: os.Stderr}
}

func (p *printer) Info(format string, args ...any) {
	color.New(color.FgCyan).Fprintf(p.err, format+"\n", args...)
}

func (p *printer) Success(format string, args ...any) {
	color.New(color.FgGreen).Fprintf(p.err, "✓ "+format+"\n", args...)
}

func (p *printer) Warn(format string, args ...any) {
	color.New(color.FgYellow).Fprintf(p.err, "⚠ "+format+"\n", args...)
}

func (p *printer) Fail(format string, args ...any) {
	color.New(color.FgRed, color.Bold).Fprintf(p.err, "✗ "+format+"\n", args...)
}

func (p *printer) Header(title string) {
	color.New(color.Bold).Fprintf(p.out, "\n%s\n", title)
}

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoWrap: tw.WrapNone,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoFormat: tw.On,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{
					ShowHeader: tw.Off,
				},
			},
		}),
	)
}

func yesNo(b bool) string {
	if b {
		return color.GreenString("yes")
	}
	return "no"
}

func money(v float64) string { return fmt.Sprintf("$%.0f", v) }
