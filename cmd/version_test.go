package cmd

import (
	"bytes"
	"runtime"
	"strings"
	"testing"
)

func TestWriteVersion(t *testing.T) {
	var buf bytes.Buffer
	writeVersion(&buf, true)
	if buf.String() != "dev\n" {
		t.Fatalf("short = %q", buf.String())
	}

	buf.Reset()
	writeVersion(&buf, false)
	out := buf.String()
	if !strings.HasPrefix(out, "acco dev\n") || !strings.Contains(out, "unreleased build") {
		t.Fatalf("unexpected output: %q", out)
	}

	commit, buildDate = "abc1234", "2026-10-01"
	t.Cleanup(func() { commit, buildDate = "", "" })
	buf.Reset()
	writeVersion(&buf, false)
	want := "  commit abc1234, built 2026-10-01, " + runtime.Version()
	if !strings.Contains(buf.String(), want) {
		t.Fatalf("got %q, want line %q", buf.String(), want)
	}
}
