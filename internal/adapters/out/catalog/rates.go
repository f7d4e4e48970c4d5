// Package catalog loads the rate families and label templates the synthesis
// engine works from. Both have built-in defaults; a TOML rates file and a
// templates directory extend or override them.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/label"
	"fulfillment/internal/core/domain/model/tracking"
	"fulfillment/internal/pkg/errs"

	"github.com/BurntSushi/toml"
)

// File is the schema of the rates file.
//
//	default_unit_price_cents = 250
//
//	[[rate]]
//	version = "94888"
//	service_type_code = "94888"
//	scheme = "serial"
//	mailer_ids = ["90000000", "90000001"]
//
//	[[template_family]]
//	name = "easypost"
//	account = "cnumber"
//	weight = "raw"
type File struct {
	DefaultUnitPriceCents int64        `toml:"default_unit_price_cents"`
	Rates                 []RateEntry  `toml:"rate"`
	TemplateFamilies      []FamilyRule `toml:"template_family"`
}

type RateEntry struct {
	Version         string   `toml:"version"`
	ServiceTypeCode string   `toml:"service_type_code"`
	Scheme          string   `toml:"scheme"`
	MailerIDs       []string `toml:"mailer_ids"`
}

type FamilyRule struct {
	Name    string `toml:"name"`
	Account string `toml:"account"`
	Weight  string `toml:"weight"`
}

// DefaultTemplateFamilies are the printing rules of the built-in templates.
func DefaultTemplateFamilies() []label.Family {
	return []label.Family{
		{Name: "pitney_v2", Account: label.AccountReference, Weight: label.PoundsAndOunces},
		{Name: "easypost", Account: label.CustomerNumber, Weight: label.RawWeight},
	}
}

// RateBook implements ports.RateBook.
type RateBook struct {
	families     map[string]tracking.Family
	defaultPrice kernel.Cents
}

// NewRateBook builds a book from families. Later entries replace earlier ones
// with the same version.
func NewRateBook(families []tracking.Family, defaultPrice kernel.Cents) (*RateBook, error) {
	if _, err := kernel.NewUnitPrice(int64(defaultPrice)); err != nil {
		return nil, err
	}
	rb := &RateBook{families: make(map[string]tracking.Family, len(families)), defaultPrice: defaultPrice}
	for _, f := range families {
		rb.families[f.Version()] = f
	}
	return rb, nil
}

func (rb *RateBook) Family(version string) (tracking.Family, error) {
	f, ok := rb.families[version]
	if !ok {
		return tracking.Family{}, errs.NewObjectNotFoundError("rate version", version)
	}
	return f, nil
}

func (rb *RateBook) DefaultUnitPrice() kernel.Cents {
	return rb.defaultPrice
}

// Versions lists the known rate versions in order.
func (rb *RateBook) Versions() []string {
	out := make([]string, 0, len(rb.families))
	for v := range rb.families {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Loaded is the result of LoadRates.
type Loaded struct {
	Rates            *RateBook
	TemplateFamilies []label.Family
}

// LoadRates reads path on top of the built-in defaults. An empty path yields
// the defaults. defaultPrice applies unless the file sets its own.
func LoadRates(path string, defaultPrice kernel.Cents) (Loaded, error) {
	var file File
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return Loaded{}, fmt.Errorf("rates file: %w", err)
		}
		if _, err := toml.DecodeFile(path, &file); err != nil {
			return Loaded{}, fmt.Errorf("failed to parse rates file: %w", err)
		}
	}
	return build(file, defaultPrice)
}

func build(file File, defaultPrice kernel.Cents) (Loaded, error) {
	families := tracking.DefaultFamilies()
	var err error
	for _, r := range file.Rates {
		f, e := tracking.NewFamily(r.Version, r.ServiceTypeCode, tracking.Scheme(r.Scheme), r.MailerIDs)
		if e != nil {
			err = errors.Join(err, fmt.Errorf("rate %q: %w", r.Version, e))
			continue
		}
		families = append(families, f)
	}

	tplFamilies := DefaultTemplateFamilies()
	for _, r := range file.TemplateFamilies {
		f, e := familyRule(r)
		if e != nil {
			err = errors.Join(err, e)
			continue
		}
		tplFamilies = append(tplFamilies, f)
	}
	if err != nil {
		return Loaded{}, err
	}

	if file.DefaultUnitPriceCents != 0 {
		defaultPrice = kernel.Cents(file.DefaultUnitPriceCents)
	}
	rb, err := NewRateBook(families, defaultPrice)
	if err != nil {
		return Loaded{}, err
	}
	return Loaded{Rates: rb, TemplateFamilies: tplFamilies}, nil
}

func familyRule(r FamilyRule) (label.Family, error) {
	if r.Name == "" {
		return label.Family{}, errs.NewValueIsRequiredError("template family name")
	}
	f := label.Family{Name: r.Name, Account: label.AccountReference, Weight: label.PoundsAndOunces}
	switch label.AccountStyle(r.Account) {
	case "", label.AccountReference:
	case label.CustomerNumber:
		f.Account = label.CustomerNumber
	default:
		return label.Family{}, errs.NewValueIsInvalidErrorWithCause("template family "+r.Name,
			fmt.Errorf("unknown account style %q", r.Account))
	}
	switch label.WeightStyle(r.Weight) {
	case "", label.PoundsAndOunces:
	case label.RawWeight:
		f.Weight = label.RawWeight
	default:
		return label.Family{}, errs.NewValueIsInvalidErrorWithCause("template family "+r.Name,
			fmt.Errorf("unknown weight style %q", r.Weight))
	}
	return f, nil
}
