package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type column struct {
	title   string
	numeric bool
}

func col(title string) column { return column{title: title} }

// num is a right-aligned column for indexes, counts and money.
func num(title string) column { return column{title: title, numeric: true} }

// grid collects rows for a rounded table. Short rows are padded.
type grid struct {
	tw    table.Writer
	width int
}

func newGrid(columns ...column) *grid {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, c := range columns {
		header[i] = c.title
		configs[i] = table.ColumnConfig{Number: i + 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft}
		if c.numeric {
			configs[i].Align = text.AlignRight
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)
	return &grid{tw: tw, width: len(columns)}
}

func (g *grid) add(cells ...any) {
	row := make(table.Row, g.width)
	copy(row, cells)
	g.tw.AppendRow(row)
}

func (g *grid) String() string {
	return g.tw.Render()
}
