package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/koustreak/dbframe/internal/typemap"
)

func printLines(w io.Writer, lines []string) error {
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

func printColumns(w io.Writer, cols []typemap.ColumnSpec) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tTYPE\tDATABASE TYPE")
	for _, c := range cols {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Name, c.Type, c.DataType)
	}
	return tw.Flush()
}
