package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"rentalhunter/internal/models"
)

const maxAddressWidth = 48

// printStats writes the seen-store summary as aligned columns
func printStats(w io.Writer, stats models.SeenStats) {
	p := message.NewPrinter(language.English)

	p.Fprintf(w, "Seen listings: %d\n", stats.Total)

	if len(stats.BySource) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "By source:")
		rows := make([][]string, 0, len(stats.BySource))
		for _, c := range stats.BySource {
			rows = append(rows, []string{c.Source.Label(), p.Sprintf("%d", c.Count)})
		}
		writeTable(w, nil, rows)
	}

	if len(stats.Recent) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Most recent:")
		rows := make([][]string, 0, len(stats.Recent))
		for _, l := range stats.Recent {
			address := l.OriginalAddress
			if address == "" {
				address = l.NormalizedAddress
			}
			rows = append(rows, []string{
				runewidth.Truncate(address, maxAddressWidth, "…"),
				p.Sprintf("$%d", l.Price),
				l.Source.Label(),
				l.FirstSeenAt.Local().Format("2006-01-02 15:04"),
			})
		}
		writeTable(w, []string{"ADDRESS", "PRICE", "SOURCE", "FIRST SEEN"}, rows)
	}
}

// writeTable pads every column but the last to its widest cell. Widths are
// display widths, so wide runes in addresses keep the columns aligned.
func writeTable(w io.Writer, header []string, rows [][]string) {
	all := rows
	if header != nil {
		all = append([][]string{header}, rows...)
	}

	widths := map[int]int{}
	for _, row := range all {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	for _, row := range all {
		var b strings.Builder
		b.WriteString("  ")
		for i, cell := range row {
			if i == len(row)-1 {
				b.WriteString(cell)
				break
			}
			b.WriteString(runewidth.FillRight(cell, widths[i]))
			b.WriteString("  ")
		}
		fmt.Fprintln(w, b.String())
	}
}
