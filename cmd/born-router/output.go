package main

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

// writeJSON writes v as indented JSON. HTML characters are left unescaped so
// names such as "bridge<cpu, mock>" print as they are.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func checkOutputMode(mode string) error {
	switch mode {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("unknown output format %q (expected text or json)", mode)
	}
}
