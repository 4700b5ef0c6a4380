package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/kamusis/acco/internal/directory"
)

// CanonicalText is the stable text form of a profile used for change
// detection. The id is not part of it.
func CanonicalText(p directory.Profile) string {
	parts := []string{
		"name: " + strings.TrimSpace(p.Name),
		"designation: " + strings.TrimSpace(p.Designation),
		"location: " + strings.TrimSpace(p.Location),
		"experience: " + strings.TrimSpace(p.Experience),
		"specializations: " + strings.Join(p.Specializations, ", "),
		"rating: " + strconv.FormatFloat(p.Rating, 'f', -1, 64),
		"reviews: " + strconv.Itoa(p.Reviews),
		"price: " + strings.TrimSpace(p.Price),
		"image: " + strings.TrimSpace(p.Image),
		"attributes: " + strings.Join([]string{
			p.Attrs.Location,
			p.Attrs.ExpertiseString(),
			string(p.Attrs.Experience),
			strconv.Itoa(p.Attrs.RatingFloor),
			string(p.Attrs.Price),
		}, "|"),
	}
	return strings.Join(parts, "\n")
}

// TextHash returns a sha256 hash (hex) of the canonical text.
func TextHash(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}
