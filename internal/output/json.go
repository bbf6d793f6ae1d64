package output

import (
	"encoding/json"
	"io"

	"github.com/aryankumar/fanout/internal/executor"
)

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	options *Options
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(opts *Options) *JSONFormatter {
	if opts == nil {
		opts = &Options{}
	}
	return &JSONFormatter{
		options: opts,
	}
}

// Format outputs a single data item as JSON
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// FormatBatch outputs a batch as a JSON document
func (f *JSONFormatter) FormatBatch(w io.Writer, batch *executor.Batch, labels []string) error {
	return f.Format(w, NewBatchView(batch, labels))
}
