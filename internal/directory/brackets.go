package directory

// ExperienceBracket groups years of practice into the filter's ranges.
type ExperienceBracket string

const (
	Experience0to2  ExperienceBracket = "0-2"
	Experience3to5  ExperienceBracket = "3-5"
	Experience6to10 ExperienceBracket = "6-10"
	Experience10up  ExperienceBracket = "10+"
)

// ExperienceBrackets lists the known brackets in display order.
var ExperienceBrackets = []ExperienceBracket{Experience0to2, Experience3to5, Experience6to10, Experience10up}

// Known reports whether b is one of ExperienceBrackets.
func (b ExperienceBracket) Known() bool {
	for _, k := range ExperienceBrackets {
		if b == k {
			return true
		}
	}
	return false
}

// ExperienceBracketFor maps a number of years to its bracket.
func ExperienceBracketFor(years int) ExperienceBracket {
	switch {
	case years <= 2:
		return Experience0to2
	case years <= 5:
		return Experience3to5
	case years <= 10:
		return Experience6to10
	default:
		return Experience10up
	}
}

// PriceBracket groups the starting fee into the filter's ranges.
type PriceBracket string

const (
	Price0to5k    PriceBracket = "0-5000"
	Price5kto15k  PriceBracket = "5000-15000"
	Price15kto30k PriceBracket = "15000-30000"
	Price30kAndUp PriceBracket = "30000+"
)

// PriceBrackets lists the known brackets in display order.
var PriceBrackets = []PriceBracket{Price0to5k, Price5kto15k, Price15kto30k, Price30kAndUp}

// Known reports whether b is one of PriceBrackets.
func (b PriceBracket) Known() bool {
	for _, k := range PriceBrackets {
		if b == k {
			return true
		}
	}
	return false
}

// PriceBracketFor maps a starting fee to its bracket.
func PriceBracketFor(amount int64) PriceBracket {
	switch {
	case amount < 5000:
		return Price0to5k
	case amount < 15000:
		return Price5kto15k
	case amount < 30000:
		return Price15kto30k
	default:
		return Price30kAndUp
	}
}
