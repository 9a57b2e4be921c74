package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer

	writeJSON(&buf, map[string]int{"findings": 2})

	want := "{\n  \"findings\": 2\n}\n"
	if buf.String() != want {
		t.Errorf("writeJSON() = %q, want %q", buf.String(), want)
	}
}

func TestWriteJSON_EncodeError(t *testing.T) {
	var buf bytes.Buffer

	writeJSON(&buf, make(chan int))

	if !strings.HasPrefix(buf.String(), `{"error":`) {
		t.Errorf("writeJSON() = %q, want an error object", buf.String())
	}
}
