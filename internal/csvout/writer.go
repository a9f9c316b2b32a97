// Package csvout implements the optional CSV side-channel emission
// alongside the index: a tab-separated row per record, with pipe-joined
// multi-values and an optional second writer that blanks the configured
// sensitive columns. It writes the row's raw value for each header by
// exact name (no ".p" processed-column preference), and it is separate
// from the docbuilder path, so enabling it never changes what the engine
// itself does to a record.
package csvout

import (
	"bufio"
	"io"
	"strings"
)

const (
	fieldSep = "\t"
	valueSep = "|"
)

// Writer emits one tab-separated line per record to out, and, when
// sensitive is non-nil, a parallel line to sensitive with the configured
// sensitive columns blanked out.
type Writer struct {
	headers   []string
	sensitive map[string]struct{}

	out    *bufio.Writer
	redact *bufio.Writer
}

// New constructs a Writer over headers (the fixed column order every row
// is written in) and out. If redact is non-nil, WriteRow also writes a
// parallel line to it with every column in sensitiveColumns blanked.
func New(headers []string, sensitiveColumns []string, out io.Writer, redact io.Writer) *Writer {
	set := make(map[string]struct{}, len(sensitiveColumns))
	for _, c := range sensitiveColumns {
		set[c] = struct{}{}
	}
	w := &Writer{headers: headers, sensitive: set, out: bufio.NewWriter(out)}
	if redact != nil {
		w.redact = bufio.NewWriter(redact)
	}
	return w
}

// WriteHeader writes the column header line to out and, if configured,
// to the redacted writer.
func (w *Writer) WriteHeader() error {
	line := strings.Join(w.headers, fieldSep) + "\n"
	if _, err := w.out.WriteString(line); err != nil {
		return err
	}
	if w.redact != nil {
		if _, err := w.redact.WriteString(line); err != nil {
			return err
		}
	}
	return nil
}

// WriteRow writes one record's values, looked up from row by header name,
// joining any value already pipe-delimited in the row store as-is (the
// row store's own multi-value convention is reused verbatim on the CSV
// side-channel rather than re-split and rejoined).
func (w *Writer) WriteRow(row map[string]string) error {
	values := make([]string, len(w.headers))
	for i, h := range w.headers {
		values[i] = row[h]
	}
	if _, err := w.out.WriteString(strings.Join(values, fieldSep) + "\n"); err != nil {
		return err
	}

	if w.redact != nil {
		redacted := make([]string, len(w.headers))
		copy(redacted, values)
		for i, h := range w.headers {
			if _, ok := w.sensitive[h]; ok {
				redacted[i] = ""
			}
		}
		if _, err := w.redact.WriteString(strings.Join(redacted, fieldSep) + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes both underlying writers.
func (w *Writer) Flush() error {
	if err := w.out.Flush(); err != nil {
		return err
	}
	if w.redact != nil {
		return w.redact.Flush()
	}
	return nil
}

// JoinMultiValue joins a field's accumulated values using the row store's
// pipe convention, for callers building a row map from docbuilder output
// rather than a row store record directly.
func JoinMultiValue(values []string) string {
	return strings.Join(values, valueSep)
}
