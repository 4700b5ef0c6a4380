package directory

import (
	"errors"
	"fmt"
)

// ErrInvalidProfile marks a profile that fails Validate.
var ErrInvalidProfile = errors.New("invalid profile")

// MissingElementError reports a listing control or container that is absent
// from the page. It is never fatal for the other controls.
type MissingElementError struct {
	Element string
}

func (e *MissingElementError) Error() string {
	return fmt.Sprintf("page element %q not found", e.Element)
}
