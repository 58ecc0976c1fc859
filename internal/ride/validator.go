package ride

import "errors"

// Fix rejection reasons. Rejected fixes are counted, never fatal.
var (
	ErrLatOutOfRange    = errors.New("latitude out of range")
	ErrLngOutOfRange    = errors.New("longitude out of range")
	ErrNegativeAccuracy = errors.New("negative accuracy")
	ErrBadTimestamp     = errors.New("timestamp not positive")
	ErrOutOfOrder       = errors.New("timestamp not after previous fix")
)

// ValidateFix sanity-checks a raw fix against the timestamp of the last
// accepted fix (zero when none). Out-of-order fixes are dropped, not
// reordered.
func ValidateFix(fix LocationFix, prevTimestampMs int64) error {
	if fix.Lat < -90 || fix.Lat > 90 {
		return ErrLatOutOfRange
	}
	if fix.Lng < -180 || fix.Lng > 180 {
		return ErrLngOutOfRange
	}
	if fix.AccuracyM < 0 {
		return ErrNegativeAccuracy
	}
	if fix.TimestampMs <= 0 {
		return ErrBadTimestamp
	}
	if fix.TimestampMs <= prevTimestampMs {
		return ErrOutOfOrder
	}
	return nil
}
