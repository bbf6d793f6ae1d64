package output

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/aryankumar/fanout/internal/executor"
	"github.com/olekukonko/tablewriter"
)

// maxErrorWidth truncates error cells in wide mode
const maxErrorWidth = 60

// TableFormatter formats output as a table (kubectl-style)
type TableFormatter struct {
	options *Options
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(opts *Options) *TableFormatter {
	if opts == nil {
		opts = &Options{}
	}
	return &TableFormatter{
		options: opts,
	}
}

// Format outputs a single data item as a table
func (f *TableFormatter) Format(w io.Writer, data any) error {
	switch v := data.(type) {
	case Tabular:
		return f.formatTabular(w, v)
	case map[string]string:
		return f.formatMap(w, v)
	case string:
		_, err := fmt.Fprintln(w, v)
		return err
	default:
		_, err := fmt.Fprintln(w, v)
		return err
	}
}

// FormatBatch outputs one row per element followed by a summary line
func (f *TableFormatter) FormatBatch(w io.Writer, batch *executor.Batch, labels []string) error {
	if batch == nil || len(batch.Outcomes) == 0 {
		_, err := fmt.Fprintln(w, "No results")
		return err
	}

	colors := NewColorScheme(w, f.options.NoColor)
	table := f.createTable(w)

	headers := []string{"ITEM", "STATUS", "DURATION"}
	if f.options.Wide {
		headers = append(headers, "ERROR")
	}
	f.setHeader(table, headers, colors)

	for _, o := range batch.Outcomes {
		table.Append(f.outcomeRow(o, labelFor(labels, o.Index), colors))
	}

	table.Render()

	f.printSummary(w, executor.Summarize(batch.Outcomes), batch.Duration, colors)
	return nil
}

// outcomeRow formats a single outcome as a table row
func (f *TableFormatter) outcomeRow(o executor.Outcome, label string, colors *ColorScheme) []string {
	status := "Success"
	if !o.OK {
		status = "Failed"
	}

	row := []string{
		colors.Item("%s", label),
		colors.StatusColor(!o.OK)("%s", status),
		colors.Duration("%s", o.Duration.Round(time.Microsecond)),
	}

	if f.options.Wide {
		errStr := ""
		if o.Err != nil {
			errStr = o.Err.Error()
			if len(errStr) > maxErrorWidth {
				errStr = errStr[:maxErrorWidth-3] + "..."
			}
		}
		row = append(row, errStr)
	}

	return row
}

// formatTabular renders any value that provides its own headers and rows
func (f *TableFormatter) formatTabular(w io.Writer, data Tabular) error {
	rows := data.Rows()
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No results")
		return err
	}

	table := f.createTable(w)
	f.setHeader(table, data.Headers(), NewColorScheme(w, f.options.NoColor))
	table.AppendBulk(rows)
	table.Render()
	return nil
}

// formatMap formats a map as a two-column table sorted by key
func (f *TableFormatter) formatMap(w io.Writer, data map[string]string) error {
	table := f.createTable(w)
	f.setHeader(table, []string{"KEY", "VALUE"}, NewColorScheme(w, f.options.NoColor))

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		table.Append([]string{k, data[k]})
	}

	table.Render()
	return nil
}

func (f *TableFormatter) setHeader(table *tablewriter.Table, headers []string, colors *ColorScheme) {
	if f.options.NoHeaders {
		return
	}

	if colors.Disabled {
		table.SetHeader(headers)
		return
	}

	colored := make([]string, len(headers))
	for i, h := range headers {
		colored[i] = colors.Header("%s", h)
	}
	table.SetHeader(colored)
}

// createTable creates a new table with kubectl-style configuration
func (f *TableFormatter) createTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)

	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)

	return table
}

// printSummary prints a summary of the batch
func (f *TableFormatter) printSummary(w io.Writer, summary executor.Summary, wall time.Duration, colors *ColorScheme) {
	successText := colors.Success("%d succeeded", summary.Succeeded)

	failedText := fmt.Sprintf("%d failed", summary.Failed)
	if summary.Failed > 0 {
		failedText = colors.Error("%s", failedText)
	}

	durationText := colors.Duration("avg=%s wall=%s",
		summary.AvgDuration.Round(time.Microsecond),
		wall.Round(time.Microsecond))

	var sb strings.Builder
	sb.WriteString("\nSummary: ")
	sb.WriteString(strings.Join([]string{successText, failedText, durationText}, ", "))
	fmt.Fprintln(w, sb.String())
}
