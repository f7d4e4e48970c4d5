// Package tracking provides the postal tracking number value object and the
// rate families that describe how numbers are composed.
//
// A number is service type code + mailer id + serial + one check digit. The
// check digit weights body digits at even positions (from the left, 0-based)
// by 3 and odd positions by 1, and is the amount needed to reach the next
// multiple of ten.
package tracking

import (
	"fmt"
	"strings"

	"fulfillment/internal/pkg/errs"
)

// FailedValue is stored in place of a tracking number for rows whose label
// could not be rendered.
const FailedValue = "FAILED"

// Number is a synthesized tracking number. The zero value means "no number".
type Number struct {
	serviceTypeCode string
	mailerID        string
	serial          string
	checkDigit      int
}

// NewNumber composes a number and computes its check digit.
func NewNumber(serviceTypeCode, mailerID, serial string) (Number, error) {
	for param, v := range map[string]string{
		"service type code": serviceTypeCode,
		"mailer id":         mailerID,
		"serial":            serial,
	} {
		if err := requireDigits(param, v); err != nil {
			return Number{}, err
		}
	}

	n := Number{serviceTypeCode: serviceTypeCode, mailerID: mailerID, serial: serial}
	check, err := CheckDigit(n.Body())
	if err != nil {
		return Number{}, err
	}
	n.checkDigit = check
	return n, nil
}

// RestoreNumber rebuilds a stored number and verifies its check digit.
func RestoreNumber(serviceTypeCode, mailerID, serial string, checkDigit int) (Number, error) {
	n, err := NewNumber(serviceTypeCode, mailerID, serial)
	if err != nil {
		return Number{}, err
	}
	if n.checkDigit != checkDigit {
		return Number{}, errs.NewValueIsInvalidErrorWithCause("check digit",
			fmt.Errorf("%d does not match computed %d", checkDigit, n.checkDigit))
	}
	return n, nil
}

func (n Number) ServiceTypeCode() string { return n.serviceTypeCode }
func (n Number) MailerID() string        { return n.mailerID }
func (n Number) Serial() string          { return n.serial }
func (n Number) CheckDigit() int         { return n.checkDigit }
func (n Number) IsZero() bool            { return n.serviceTypeCode == "" }

// Body is the number without its check digit.
func (n Number) Body() string {
	return n.serviceTypeCode + n.mailerID + n.serial
}

// String is the unspaced form, or FailedValue for the zero Number.
func (n Number) String() string {
	if n.IsZero() {
		return FailedValue
	}
	return fmt.Sprintf("%s%d", n.Body(), n.checkDigit)
}

// Spaced groups the digits by four as printed under the barcode.
func (n Number) Spaced() string {
	s := n.String()
	var b strings.Builder
	for i := 0; i < len(s); i += 4 {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s[i:min(i+4, len(s))])
	}
	return b.String()
}

// CheckDigit computes the mod-10 check digit of body.
func CheckDigit(body string) (int, error) {
	if err := requireDigits("tracking body", body); err != nil {
		return 0, err
	}

	total := 0
	for i, c := range body {
		d := int(c - '0')
		if i%2 == 0 {
			total += 3 * d
		} else {
			total += d
		}
	}

	if total%10 == 0 {
		return 0, nil
	}
	return 10 - total%10, nil
}

// IsValid reports whether s is a digit string whose last digit is the check
// digit of the rest.
func IsValid(s string) bool {
	if len(s) < 2 {
		return false
	}
	check, err := CheckDigit(s[:len(s)-1])
	if err != nil {
		return false
	}
	return int(s[len(s)-1]-'0') == check
}

func requireDigits(param, v string) error {
	if v == "" {
		return errs.NewValueIsRequiredError(param)
	}
	for _, c := range v {
		if c < '0' || c > '9' {
			return errs.NewValueIsInvalidErrorWithCause(param, fmt.Errorf("%q is not numeric", v))
		}
	}
	return nil
}
