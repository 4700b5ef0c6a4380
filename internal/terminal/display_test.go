package terminal

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pterm/pterm"

	"github.com/kamusis/acco/internal/directory"
	"github.com/kamusis/acco/internal/listing"
	"github.com/kamusis/acco/internal/source"
)

func init() {
	pterm.DisableColor()
}

func TestDisplayDrivenByController(t *testing.T) {
	var buf bytes.Buffer
	batch := source.FixedBatch()
	d := New(&buf, len(batch))
	c := listing.New(d, batch)
	c.ApplyTextSearch("jaipur")

	out := buf.String()
	if !strings.Contains(out, "Showing 3 of 3 accountants") {
		t.Errorf("missing initial count in %q", out)
	}
	if !strings.Contains(out, "Showing 1 of 3 accountants") {
		t.Errorf("missing filtered count in %q", out)
	}
}

func TestDisplayAppendedNumbersRows(t *testing.T) {
	var buf bytes.Buffer
	d := New(&buf, 9)
	d.LoadingChanged(true)
	d.Appended(source.FixedBatch())

	out := buf.String()
	if !strings.Contains(out, "Loading more accountants...") {
		t.Errorf("missing loading line in %q", out)
	}
	for _, want := range []string{"10", "11", "12", "Arjun Mehta", "Rohit Gupta"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q", want)
		}
	}
}

func TestRecords(t *testing.T) {
	records := []listing.Record{
		{Profile: directory.Profile{Name: "Shown", Reviews: 1250}, Visible: true},
		{Profile: directory.Profile{Name: "Hidden"}, Visible: false},
	}
	out, err := Records(records, false)
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if !strings.Contains(out, "Shown") || strings.Contains(out, "Hidden") {
		t.Errorf("unexpected table %q", out)
	}
	if !strings.Contains(out, "1,250") {
		t.Errorf("reviews not humanized in %q", out)
	}

	out, err = Records(records, true)
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if !strings.Contains(out, "Hidden") {
		t.Errorf("all=true should include hidden records: %q", out)
	}

	out, _ = Records(records[1:], false)
	if out != "No accountants match.\n" {
		t.Errorf("empty listing = %q", out)
	}
}

func TestDetail(t *testing.T) {
	p := source.FixedBatch()[0]
	out := Detail(p, "accountant/accountant-details.html?key=arjunmehta%40example.com")
	for _, want := range []string{"Arjun Mehta", "Kolkata, West Bengal", "GST Filing, Tax Returns, Compliance", "gst,tax", "?key=arjunmehta%40example.com"} {
		if !strings.Contains(out, want) {
			t.Errorf("detail missing %q", want)
		}
	}
}
