package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/samber/lo"
)

// renderReport draws the rounded tables printed by download and evaluate.
// numeric lists zero-based columns to right align. Rows carry one cell per header.
func renderReport(headers []string, rows [][]string, numeric ...int) string {
	if len(headers) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(cells(headers))
	tw.AppendRows(lo.Map(rows, func(r []string, _ int) table.Row { return cells(r) }))
	tw.SetColumnConfigs(lo.Map(numeric, func(col, _ int) table.ColumnConfig {
		return table.ColumnConfig{Number: col + 1, Align: text.AlignRight, AlignHeader: text.AlignLeft}
	}))

	return tw.Render()
}

func cells(values []string) table.Row {
	return lo.Map(values, func(v string, _ int) any { return v })
}
