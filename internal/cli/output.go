package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// Response is the JSON output envelope.
type Response struct {
	Status string `json:"status"` // "ok" or "error"
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
}

// OutputFormatter handles JSON vs text output for commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// Values prints a result set: one value per line in text mode.
func (f *OutputFormatter) Values(values []string) error {
	if values == nil {
		values = []string{}
	}
	if f.Format == "json" {
		return f.encode(Response{Status: "ok", Data: values})
	}
	for _, v := range values {
		if _, err := fmt.Fprintln(f.Writer, v); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	return nil
}

// Expressions prints compiled expressions: one per line in text mode.
func (f *OutputFormatter) Expressions(exprs []string) error {
	if f.Format == "json" {
		return f.encode(Response{Status: "ok", Data: map[string][]string{"expressions": exprs}})
	}
	for _, e := range exprs {
		if _, err := fmt.Fprintln(f.Writer, e); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	return nil
}

func (f *OutputFormatter) encode(r Response) error {
	if err := json.NewEncoder(f.Writer).Encode(r); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
