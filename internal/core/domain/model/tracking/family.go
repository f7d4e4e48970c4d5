package tracking

import (
	"errors"
	"fmt"
	"strings"

	"fulfillment/internal/pkg/errs"
)

// Scheme selects how the serial part of a number is built.
type Scheme string

const (
	// SerialScheme uses a 7 digit random serial.
	SerialScheme Scheme = "serial"
	// DayCodeScheme uses the 3 digit day of year shared by a batch followed by
	// 5 random digits.
	DayCodeScheme Scheme = "daycode"
)

func (s Scheme) Validate() error {
	switch s {
	case SerialScheme, DayCodeScheme:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("scheme", fmt.Errorf("%q is not a known scheme", string(s)))
	}
}

// Family describes the numbers issued for one rate version.
type Family struct {
	version         string
	serviceTypeCode string
	scheme          Scheme
	mailerIDs       []string
}

// NewFamily validates a rate family. mailerIDs is the pool a mailer id is
// drawn from for every label.
func NewFamily(version, serviceTypeCode string, scheme Scheme, mailerIDs []string) (Family, error) {
	f := Family{
		version:         strings.TrimSpace(version),
		serviceTypeCode: strings.TrimSpace(serviceTypeCode),
		scheme:          scheme,
	}

	var err error
	if f.version == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("rate version"))
	}
	err = errors.Join(err, requireDigits("service type code", f.serviceTypeCode), scheme.Validate())
	if len(mailerIDs) == 0 {
		err = errors.Join(err, errs.NewValueIsRequiredError("mailer id pool"))
	}
	for _, id := range mailerIDs {
		id = strings.TrimSpace(id)
		if e := requireDigits("mailer id", id); e != nil {
			err = errors.Join(err, e)
			continue
		}
		f.mailerIDs = append(f.mailerIDs, id)
	}
	if err != nil {
		return Family{}, err
	}
	return f, nil
}

func (f Family) Version() string         { return f.version }
func (f Family) ServiceTypeCode() string { return f.serviceTypeCode }
func (f Family) Scheme() Scheme          { return f.scheme }

// MailerIDs returns a copy of the mailer id pool.
func (f Family) MailerIDs() []string {
	return append([]string(nil), f.mailerIDs...)
}

// DefaultFamilies are used when no rates file is configured.
func DefaultFamilies() []Family {
	serial, _ := NewFamily("94888", "94888", SerialScheme, []string{"90000000"})
	daycode, _ := NewFamily("95055", "9505", DayCodeScheme, []string{"90000000"})
	return []Family{serial, daycode}
}
