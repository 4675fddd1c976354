package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

// renderRows prints a table on a terminal and "name --> value" lines
// otherwise.
func renderRows(w io.Writer, rows []row, tty bool) {
	if !tty {
		for _, r := range rows {
			if r.Err != nil {
				fmt.Fprintf(w, "%40s --> error: %v\n", r.Name, r.Err)
				continue
			}
			fmt.Fprintf(w, "%40s --> %d\n", r.Name, r.Value)
		}
		return
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault
	tw.AppendHeader(table.Row{"Address", "Register", "Value"})
	for _, r := range rows {
		value := strconv.Itoa(int(r.Value))
		if r.Err != nil {
			value = "error: " + r.Err.Error()
		}
		tw.AppendRow(table.Row{r.Address, r.Name, value})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})
	fmt.Fprintln(w, tw.Render())
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
