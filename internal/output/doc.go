// Package output renders batch outcomes and reports for the fanout CLI.
//
// Three formats are supported: a borderless kubectl-style table, indented
// JSON and YAML. Every formatter implements both Format, for arbitrary
// values, and FormatBatch, which renders one row per element of an
// executor.Batch:
//
//	f := output.NewFormatter(output.FormatTable, output.WithWide(true))
//	f.FormatBatch(os.Stdout, batch, labels)
//
// Values that implement Tabular (such as a cluster health report) are laid
// out by the table formatter using their own headers and rows; JSON and
// YAML encode them directly.
//
// Colors are applied only when writing to a terminal and can be disabled
// with WithNoColor.
package output
