package output

import (
	"errors"
	"testing"
	"time"

	"github.com/aryankumar/fanout/internal/executor"
	"github.com/google/uuid"
)

func testBatch() *executor.Batch {
	return &executor.Batch{
		ID:       uuid.MustParse("6f1c2a3e-9b5d-4c7e-8f10-2a3b4c5d6e7f"),
		Duration: 3 * time.Millisecond,
		Outcomes: []executor.Outcome{
			{Index: 0, OK: true, Duration: time.Millisecond},
			{Index: 1, OK: false, Err: errors.New("exit status 1"), Duration: 2 * time.Millisecond},
			{Index: 2, OK: true, Duration: time.Millisecond},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"table", FormatTable, false},
		{"json", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"", FormatTable, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{FormatTable, "*output.TableFormatter"},
		{FormatJSON, "*output.JSONFormatter"},
		{FormatYAML, "*output.YAMLFormatter"},
		{"unknown", "*output.TableFormatter"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			f := NewFormatter(tt.format)
			var got string
			switch f.(type) {
			case *TableFormatter:
				got = "*output.TableFormatter"
			case *JSONFormatter:
				got = "*output.JSONFormatter"
			case *YAMLFormatter:
				got = "*output.YAMLFormatter"
			}
			if got != tt.want {
				t.Errorf("NewFormatter(%q) = %s, want %s", tt.format, got, tt.want)
			}
		})
	}
}

func TestNewFormatter_Options(t *testing.T) {
	f := NewFormatter(FormatTable, WithNoColor(true), WithNoHeaders(true), WithWide(true)).(*TableFormatter)

	if !f.options.NoColor || !f.options.NoHeaders || !f.options.Wide {
		t.Errorf("options not applied: %+v", f.options)
	}
}

func TestNewBatchView(t *testing.T) {
	view := NewBatchView(testBatch(), []string{"a", "b"})

	if view.ID != "6f1c2a3e-9b5d-4c7e-8f10-2a3b4c5d6e7f" {
		t.Errorf("unexpected id %q", view.ID)
	}
	if view.Succeeded != 2 || view.Failed != 1 {
		t.Errorf("unexpected counts %d/%d", view.Succeeded, view.Failed)
	}
	if len(view.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(view.Items))
	}

	// The third element has no label
	if view.Items[2].Item != "2" {
		t.Errorf("expected index fallback, got %q", view.Items[2].Item)
	}
	if view.Items[1].Status != "failed" || view.Items[1].Error != "exit status 1" {
		t.Errorf("unexpected failed item %+v", view.Items[1])
	}
	if view.Items[0].Error != "" {
		t.Errorf("expected no error, got %q", view.Items[0].Error)
	}
}

func TestNewBatchView_Nil(t *testing.T) {
	view := NewBatchView(nil, nil)
	if view.Items == nil || len(view.Items) != 0 {
		t.Errorf("expected empty items, got %v", view.Items)
	}
}
