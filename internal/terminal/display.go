// Package terminal renders the listing to a terminal.
package terminal

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"

	"github.com/kamusis/acco/internal/directory"
	"github.com/kamusis/acco/internal/listing"
	"github.com/kamusis/acco/internal/render"
)

// Display implements listing.Display by printing to w.
type Display struct {
	mu   sync.Mutex
	w    io.Writer
	next int // listing position of the next appended record
}

var _ listing.Display = (*Display)(nil)

// New returns a Display writing to w. initial is the number of records the
// listing starts with, so appended rows are numbered after them.
func New(w io.Writer, initial int) *Display {
	return &Display{w: w, next: initial + 1}
}

// PublishCount prints the visible-count line.
func (d *Display) PublishCount(visible, total int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintln(d.w, CountLine(visible, total))
}

// Appended prints the new records as a table.
func (d *Display) Appended(profiles []directory.Profile) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(profiles) == 0 {
		return
	}
	out, err := Table(profiles, d.next)
	d.next += len(profiles)
	if err != nil {
		fmt.Fprintf(d.w, "cannot render profiles: %v\n", err)
		return
	}
	fmt.Fprint(d.w, out)
}

// LoadingChanged prints the loading state.
func (d *Display) LoadingChanged(loading bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if loading {
		fmt.Fprintln(d.w, pterm.Gray("Loading more accountants..."))
	}
}

// CountLine formats the visible-count.
func CountLine(visible, total int) string {
	return fmt.Sprintf("Showing %s of %s accountants",
		pterm.LightCyan(strconv.Itoa(visible)), humanize.Comma(int64(total)))
}

// Table renders profiles as a table whose first column is the listing
// position, starting at first.
func Table(profiles []directory.Profile, first int) (string, error) {
	data := pterm.TableData{{"#", "Name", "Designation", "Location", "Rating", "Reviews", "Price", "Expertise"}}
	for i, p := range profiles {
		data = append(data, row(first+i, p))
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
}

// Records renders the listing's records. Hidden records are skipped unless
// all is set, in which case they are dimmed.
func Records(records []listing.Record, all bool) (string, error) {
	data := pterm.TableData{{"#", "Name", "Designation", "Location", "Rating", "Reviews", "Price", "Expertise"}}
	for i, r := range records {
		if !r.Visible && !all {
			continue
		}
		cells := row(i+1, r.Profile)
		if !r.Visible {
			for j := range cells {
				cells[j] = pterm.Gray(pterm.RemoveColorFromString(cells[j]))
			}
		}
		data = append(data, cells)
	}
	if len(data) == 1 {
		return "No accountants match.\n", nil
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
}

func row(pos int, p directory.Profile) []string {
	return []string{
		strconv.Itoa(pos),
		p.Name,
		p.Designation,
		p.Location,
		ColorizeRating(p.Rating),
		humanize.Comma(int64(p.Reviews)),
		p.Price,
		p.Attrs.ExpertiseString(),
	}
}

// ColorizeRating shows the rating as stars, coloured by band.
func ColorizeRating(r float64) string {
	s := render.StarsText(r) + " " + render.RatingText(r)
	switch {
	case r >= 4.5:
		return pterm.Green(s)
	case r >= 4:
		return pterm.LightGreen(s)
	case r >= 3:
		return pterm.Yellow(s)
	default:
		return pterm.Red(s)
	}
}

// Detail renders one profile with its detail link.
func Detail(p directory.Profile, detailURL string) string {
	var b strings.Builder
	line := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "  %-16s %s\n", label+":", value)
		}
	}
	fmt.Fprintln(&b, pterm.LightCyan(p.Name))
	line("Designation", p.Designation)
	line("Location", p.Location)
	line("Experience", p.Experience)
	line("Rating", fmt.Sprintf("%s (%s reviews)", ColorizeRating(p.Rating), humanize.Comma(int64(p.Reviews))))
	line("Price", p.Price)
	line("Specializations", strings.Join(p.Specializations, ", "))
	line("Location code", p.Attrs.Location)
	line("Expertise", p.Attrs.ExpertiseString())
	line("Experience band", string(p.Attrs.Experience))
	line("Rating floor", strconv.Itoa(p.Attrs.RatingFloor))
	line("Price band", string(p.Attrs.Price))
	line("ID", p.ID)
	line("Profile", detailURL)
	return b.String()
}
