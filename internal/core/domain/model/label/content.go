package label

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// AccountStyle selects what is printed in the account field.
type AccountStyle string

const (
	// AccountReference prints a 028W account id with a security reference.
	AccountReference AccountStyle = "account"
	// CustomerNumber prints a C-number in place of the account id.
	CustomerNumber AccountStyle = "cnumber"
)

// WeightStyle selects how the parcel weight is printed.
type WeightStyle string

const (
	PoundsAndOunces WeightStyle = "lbs_ozs"
	RawWeight       WeightStyle = "raw"
)

// Family holds the printing rules shared by all templates of a family.
type Family struct {
	Name    string
	Account AccountStyle
	Weight  WeightStyle
}

// FormatWeight renders weightLbs in the family's style.
func (f Family) FormatWeight(weightLbs float64) string {
	w := strconv.FormatFloat(weightLbs, 'f', -1, 64)
	if f.Weight == RawWeight {
		return w
	}
	return w + " Lbs 0 ozs"
}

// Fields maps placeholder names to values.
type Fields map[string]string

// Party is a sender or recipient block.
type Party struct {
	Name    string
	Company string
	Street  string
	City    string
	State   string
	Zip     string
}

// Content is everything that can be printed on one label.
type Content struct {
	Sender         Party
	Recipient      Party
	ShipDate       time.Time
	ExpectedDate   time.Time
	Zone           int
	Weight         string
	AccountID      string
	SecurityRef    string
	DayCode        string
	Tracking       string
	TrackingSpaced string
	DataMatrix     string
	Code128        string
	PDF417         string
	ItemReference  string
	OrderReference string
	Description    string
	CarrierRoute   string
	Random0901     string
	Hazard         bool
}

// Fields sanitizes the free-text values and returns the placeholder map.
func (c Content) Fields() Fields {
	desc := Sanitize(c.Description)
	item := Sanitize(c.ItemReference)
	order := Sanitize(c.OrderReference)
	dayCode := c.DayCode
	if dayCode == "" {
		dayCode = "000"
	}
	hazard := ""
	if c.Hazard {
		hazard = "HAZMAT"
	}

	return Fields{
		"SENDER_BLOCK":         block(c.Sender),
		"RECEIVER_BLOCK":       block(c.Recipient),
		"SHIP_DATE":            c.ShipDate.Format("01/02/2006"),
		"EXPECTED_DATE":        c.ExpectedDate.Format("01/02/2006"),
		"SHIP_DATE_YMD":        c.ShipDate.Format("2006-01-02"),
		"SHIP_DATE_YMD_NODASH": c.ShipDate.Format("20060102"),
		"ZONE_ID":              strconv.Itoa(c.Zone),
		"FROM_ZIP":             Sanitize(c.Sender.Zip),
		"ZIP_TO_5":             Sanitize(zip5(c.Recipient.Zip)),
		"WEIGHT":               Sanitize(c.Weight),
		"ACCOUNT_ID":           c.AccountID,
		"C_NUMBER":             c.AccountID,
		"SEC_REF":              c.SecurityRef,
		"JULIAN_SEQ":           dayCode,
		"TRACKING":             c.Tracking,
		"TRACKING_SPACED":      c.TrackingSpaced,
		"BARCODE_DATA_DM":      c.DataMatrix,
		"BARCODE_DATA_128":     c.Code128,
		"PDF_417_DATA":         c.PDF417,
		"REF1":                 item,
		"REF2":                 order,
		"REFS_REORDERED":       order + " | " + desc + " | " + item,
		"DESC":                 desc,
		"CARRIER_ROUTE":        c.CarrierRoute,
		"RANDOM_0901":          c.Random0901,
		"HAZMAT":               hazard,
	}
}

// Sanitize strips control characters and printer/template control markers.
func Sanitize(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		switch {
		case unicode.IsControl(r):
			return -1
		case r == '^', r == '~', r == '{', r == '}', r == '\\':
			return -1
		default:
			return r
		}
	}, s))
}

// block joins the non-empty lines of a party with the printer line break.
func block(p Party) string {
	lines := make([]string, 0, 4)
	for _, v := range []string{p.Name, p.Company, p.Street} {
		if v = Sanitize(v); v != "" {
			lines = append(lines, v)
		}
	}
	csz := strings.Join(strings.Fields(Sanitize(p.City)+" "+Sanitize(p.State)+" "+Sanitize(p.Zip)), " ")
	if csz != "" {
		lines = append(lines, csz)
	}
	return strings.Join(lines, `\&`)
}

func zip5(zip string) string {
	if len(zip) <= 5 {
		return zip
	}
	return zip[:5]
}
