package shipping

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedCEPRange is returned when an admin submits a region whose CEP
// bounds are not valid 8-digit codes or are inverted. Rejected at save time,
// never at checkout time.
var ErrMalformedCEPRange = errors.New("shipping: malformed CEP range")

// NormalizeCEP strips everything but digits from a CEP. The result is only
// valid when exactly 8 digits remain.
func NormalizeCEP(cep string) string {
	var b strings.Builder
	for _, r := range cep {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CEPValue converts a CEP to its numeric value for range comparison.
func CEPValue(cep string) (int64, error) {
	digits := NormalizeCEP(cep)
	if len(digits) != 8 {
		return 0, fmt.Errorf("shipping: CEP %q is not 8 digits", cep)
	}
	return strconv.ParseInt(digits, 10, 64)
}

// CEPInRange reports whether the destination CEP falls inclusively between
// start and end, comparing numeric values regardless of formatting.
func CEPInRange(cep, start, end string) (bool, error) {
	v, err := CEPValue(cep)
	if err != nil {
		return false, err
	}
	lo, err := CEPValue(start)
	if err != nil {
		return false, err
	}
	hi, err := CEPValue(end)
	if err != nil {
		return false, err
	}
	return v >= lo && v <= hi, nil
}

// ValidateCEPRange checks an admin-submitted range, wrapping failures in
// ErrMalformedCEPRange.
func ValidateCEPRange(start, end string) error {
	lo, err := CEPValue(start)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedCEPRange, err)
	}
	hi, err := CEPValue(end)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedCEPRange, err)
	}
	if lo > hi {
		return fmt.Errorf("%w: start %s after end %s", ErrMalformedCEPRange, start, end)
	}
	return nil
}
