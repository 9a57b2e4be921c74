package cmd

import (
	"encoding/json"
	"fmt"
	"io"
)

// writeJSON writes v to w as indented JSON. An encoding failure is
// reported in place as a JSON error object.
func writeJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(w, "{\"error\":%q}\n", err.Error())
	}
}
