package source

import (
	"context"
	"strconv"
	"time"

	"github.com/kamusis/acco/internal/directory"
)

// DefaultLatency is the simulated fetch delay of StaticSource.
const DefaultLatency = 1500 * time.Millisecond

// fixedBatch is the hardcoded "next page" every StaticSource fetch returns.
var fixedBatch = []directory.Profile{
	{
		Name:            "Arjun Mehta",
		Designation:     "Chartered Accountant (CA)",
		Location:        "Kolkata, West Bengal",
		Experience:      "6 years experience",
		Rating:          4.5,
		Reviews:         98,
		Specializations: []string{"GST Filing", "Tax Returns", "Compliance"},
		Price:           "₹7,500",
		Image:           "../assets/images/accountants/accountant-7.jpg",
		Attrs: directory.Attributes{
			Location:    "kolkata",
			Expertise:   []string{"gst", "tax"},
			Experience:  directory.Experience6to10,
			RatingFloor: 4,
			Price:       directory.Price5kto15k,
		},
	},
	{
		Name:            "Deepika Agarwal",
		Designation:     "Senior Chartered Accountant",
		Location:        "Ahmedabad, Gujarat",
		Experience:      "11 years experience",
		Rating:          4.8,
		Reviews:         145,
		Specializations: []string{"Business Advisory", "Audit", "Tax Planning"},
		Price:           "₹22,000",
		Image:           "../assets/images/accountants/accountant-8.jpg",
		Attrs: directory.Attributes{
			Location:    "ahmedabad",
			Expertise:   []string{"advisory", "audit"},
			Experience:  directory.Experience10up,
			RatingFloor: 4,
			Price:       directory.Price15kto30k,
		},
	},
	{
		Name:            "Rohit Gupta",
		Designation:     "Chartered Accountant (CA)",
		Location:        "Jaipur, Rajasthan",
		Experience:      "3 years experience",
		Rating:          4.3,
		Reviews:         67,
		Specializations: []string{"Bookkeeping", "Payroll", "GST Filing"},
		Price:           "₹4,800",
		Image:           "../assets/images/accountants/accountant-9.jpg",
		Attrs: directory.Attributes{
			Location:    "jaipur",
			Expertise:   []string{"bookkeeping", "payroll"},
			Experience:  directory.Experience3to5,
			RatingFloor: 4,
			Price:       directory.Price0to5k,
		},
	},
}

// StaticSource simulates a backend: after Latency it returns the same fixed
// batch of three profiles, with fresh ids, for every cursor. It never runs
// out of pages and cannot fail except by cancellation.
type StaticSource struct {
	Latency time.Duration
}

// NewStatic returns a StaticSource with the given latency; zero means
// DefaultLatency, a negative value means no delay.
func NewStatic(latency time.Duration) *StaticSource {
	if latency == 0 {
		latency = DefaultLatency
	}
	return &StaticSource{Latency: latency}
}

// FetchPage implements PageSource.
func (s *StaticSource) FetchPage(ctx context.Context, cursor string) (Page, error) {
	n, err := offsetCursor(cursor)
	if err != nil {
		return Page{}, err
	}
	if s.Latency > 0 {
		t := time.NewTimer(s.Latency)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return Page{}, ctx.Err()
		case <-t.C:
		}
	}

	batch := make([]directory.Profile, len(fixedBatch))
	for i, p := range fixedBatch {
		batch[i] = p.Clone()
	}
	profiles, err := prepare(batch)
	if err != nil {
		return Page{}, err
	}
	return Page{Profiles: profiles, Next: strconv.Itoa(n + len(profiles))}, nil
}

// FixedBatch returns a copy of the simulated batch.
func FixedBatch() []directory.Profile {
	out := make([]directory.Profile, len(fixedBatch))
	for i, p := range fixedBatch {
		out[i] = p.Clone()
	}
	return out
}
