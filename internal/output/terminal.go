package output

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/rodaine/table"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

const rule = "═══════════════════════════════════════════════════════"

func (p *Printer) header(title string) {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, bold(title))
	fmt.Fprintln(p.w, rule)
}

// field pads before coloring so escape codes do not break alignment.
func (p *Printer) field(label string, value interface{}) {
	fmt.Fprintf(p.w, "  %s %v\n", cyan(fmt.Sprintf("%-16s", label+":")), value)
}

func (p *Printer) blank() {
	fmt.Fprintln(p.w)
}

func (p *Printer) txFields(tx txJSON) {
	p.field("Transaction", tx.Hash)
	if tx.BlockNumber != 0 {
		p.field("Block", formatWithCommas(tx.BlockNumber))
	}
	if tx.GasUsed != 0 {
		p.field("Gas Used", formatWithCommas(tx.GasUsed))
	}
}

func (p *Printer) newTable(columns ...interface{}) table.Table {
	headerFmt := color.New(color.FgCyan, color.Underline).SprintfFunc()
	return table.New(columns...).WithWriter(p.w).WithHeaderFormatter(headerFmt)
}

func yesNo(b bool) string {
	if b {
		return green("yes")
	}
	return yellow("no")
}

func decision(approved bool) string {
	if approved {
		return green("✓ approved")
	}
	return red("✗ rejected")
}

func indent(s string) string {
	return "  " + strings.ReplaceAll(s, "\n", "\n  ")
}
