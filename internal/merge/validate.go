package merge

import "bookbind/internal/wavio"

// ValidateCompatibility confirms every segment shares the first segment's
// format descriptor and returns that reference format. Validation is
// fail-fast: the first mismatch aborts without probing the rest.
func ValidateCompatibility(segments []*Segment) (wavio.Format, error) {
	if len(segments) == 0 {
		return wavio.Format{}, ErrNoSegments
	}

	reference, err := segments[0].Format()
	if err != nil {
		return wavio.Format{}, err
	}

	for _, segment := range segments[1:] {
		format, err := segment.Format()
		if err != nil {
			return wavio.Format{}, err
		}
		if !format.Equal(reference) {
			return wavio.Format{}, &IncompatibleFormatError{
				Path:     segment.Path,
				Expected: reference,
				Actual:   format,
			}
		}
	}
	return reference, nil
}
