package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/reglet-dev/tmplkit"
)

// Output formats command results as tables or JSON.
type Output struct {
	jsonMode bool
	w        io.Writer
	errW     io.Writer
}

// NewOutput creates an Output writing data to w and messages to errW.
func NewOutput(jsonMode bool, w, errW io.Writer) *Output {
	return &Output{jsonMode: jsonMode, w: w, errW: errW}
}

// Print writes a table, or jsonData in JSON mode.
func (o *Output) Print(headers []string, rows [][]string, jsonData any) error {
	if o.jsonMode {
		return o.JSON(jsonData)
	}
	return o.Table(headers, rows)
}

// Table writes rows aligned under headers.
func (o *Output) Table(headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	dashes := make([]string, len(headers))
	for i, h := range headers {
		dashes[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(dashes, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	return tw.Flush()
}

// JSON writes v indented.
func (o *Output) JSON(v any) error {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Raw writes data unchanged.
func (o *Output) Raw(data []byte) error {
	_, err := o.w.Write(data)
	return err
}

// Error reports err on the message stream, as an ErrorDetail in JSON mode.
func (o *Output) Error(err error) {
	if o.jsonMode {
		enc := json.NewEncoder(o.errW)
		enc.SetIndent("", "  ")
		_ = enc.Encode(tmplkit.ToErrorDetail(err))
		return
	}
	fmt.Fprintln(o.errW, "Error:", err)
}
