package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/aryankumar/fanout/internal/executor"
)

// Format represents the output format type
type Format string

const (
	// FormatTable outputs data in a table format (kubectl-style)
	FormatTable Format = "table"
	// FormatJSON outputs data in JSON format
	FormatJSON Format = "json"
	// FormatYAML outputs data in YAML format
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name from a flag or config file
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json or yaml)", s)
	}
}

// Tabular is implemented by values that know how to lay themselves out as rows
type Tabular interface {
	Headers() []string
	Rows() [][]string
}

// Formatter defines the interface for output formatting
type Formatter interface {
	// Format outputs a single data item to the writer
	Format(w io.Writer, data any) error

	// FormatBatch outputs the per-element outcomes of a batch.
	// labels name the elements; missing labels fall back to the index.
	FormatBatch(w io.Writer, batch *executor.Batch, labels []string) error
}

// Option is a functional option for configuring formatters
type Option func(*Options)

// Options holds configuration for formatters
type Options struct {
	// NoColor disables color output
	NoColor bool

	// NoHeaders disables table headers
	NoHeaders bool

	// Wide enables wide output with additional columns
	Wide bool
}

// WithNoColor disables color output
func WithNoColor(noColor bool) Option {
	return func(o *Options) {
		o.NoColor = noColor
	}
}

// WithNoHeaders disables table headers
func WithNoHeaders(noHeaders bool) Option {
	return func(o *Options) {
		o.NoHeaders = noHeaders
	}
}

// WithWide enables wide output
func WithWide(wide bool) Option {
	return func(o *Options) {
		o.Wide = wide
	}
}

// NewFormatter creates a new formatter based on the specified format
func NewFormatter(format Format, opts ...Option) Formatter {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	switch format {
	case FormatJSON:
		return NewJSONFormatter(options)
	case FormatYAML:
		return NewYAMLFormatter(options)
	case FormatTable:
		fallthrough
	default:
		return NewTableFormatter(options)
	}
}

// BatchItem is the serialized form of one outcome
type BatchItem struct {
	Item     string `json:"item" yaml:"item"`
	Status   string `json:"status" yaml:"status"`
	Duration string `json:"duration" yaml:"duration"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

// BatchView is the serialized form of a batch
type BatchView struct {
	ID        string      `json:"id" yaml:"id"`
	Duration  string      `json:"duration" yaml:"duration"`
	Succeeded int         `json:"succeeded" yaml:"succeeded"`
	Failed    int         `json:"failed" yaml:"failed"`
	Items     []BatchItem `json:"items" yaml:"items"`
}

// NewBatchView flattens a batch for the structured encoders
func NewBatchView(batch *executor.Batch, labels []string) BatchView {
	view := BatchView{Items: make([]BatchItem, 0)}
	if batch == nil {
		return view
	}

	view.ID = batch.ID.String()
	view.Duration = batch.Duration.String()

	for _, o := range batch.Outcomes {
		item := BatchItem{
			Item:     labelFor(labels, o.Index),
			Status:   statusText(o.OK),
			Duration: o.Duration.String(),
		}
		if o.Err != nil {
			item.Error = o.Err.Error()
		}
		if o.OK {
			view.Succeeded++
		} else {
			view.Failed++
		}
		view.Items = append(view.Items, item)
	}

	return view
}

func labelFor(labels []string, index int) string {
	if index >= 0 && index < len(labels) {
		return labels[index]
	}
	return strconv.Itoa(index)
}

func statusText(ok bool) string {
	if ok {
		return "success"
	}
	return "failed"
}
