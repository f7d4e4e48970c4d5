// Package label provides label templates and the content substituted into them.
//
// A template is selected by an exact (family, weight bracket) key. Placeholders
// use {NAME} tags; free-text values are sanitized before substitution so that
// user data cannot inject printer commands into other label regions.
package label

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"fulfillment/internal/pkg/errs"

	"github.com/valyala/fasttemplate"
)

// WeightBracket partitions parcels by weight for template selection.
type WeightBracket string

const (
	AnyWeight WeightBracket = "any"
	Light     WeightBracket = "light"
	Standard  WeightBracket = "standard"
	Heavy     WeightBracket = "heavy"
)

// BracketFor returns the bracket of a parcel weight in pounds.
func BracketFor(weightLbs float64) WeightBracket {
	switch {
	case weightLbs <= 1:
		return Light
	case weightLbs <= 20:
		return Standard
	default:
		return Heavy
	}
}

func (b WeightBracket) Validate() error {
	switch b {
	case AnyWeight, Light, Standard, Heavy:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("weight bracket", fmt.Errorf("%q is not a known bracket", string(b)))
	}
}

// Key identifies one template.
type Key struct {
	Family  string
	Bracket WeightBracket
}

func (k Key) String() string {
	return k.Family + "/" + string(k.Bracket)
}

// Template is a parsed label template.
type Template struct {
	key Key
	tpl *fasttemplate.Template
}

// NewTemplate parses source for key.
func NewTemplate(key Key, source string) (*Template, error) {
	if strings.TrimSpace(key.Family) == "" {
		return nil, errs.NewValueIsRequiredError("template family")
	}
	if err := key.Bracket.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(source) == "" {
		return nil, errs.NewValueIsRequiredError("template source " + key.String())
	}

	tpl, err := fasttemplate.NewTemplate(source, "{", "}")
	if err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("template "+key.String(), err)
	}
	return &Template{key: key, tpl: tpl}, nil
}

func (t *Template) Key() Key { return t.key }

// Render substitutes fields. Tags without a value are written back unchanged.
func (t *Template) Render(fields Fields) string {
	return t.tpl.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		if v, ok := fields[tag]; ok {
			return w.Write([]byte(v))
		}
		return w.Write([]byte("{" + tag + "}"))
	})
}

// ErrTemplateNotFound is returned by catalogs that have no template for a key.
var ErrTemplateNotFound = errors.New("template not found")

// Catalog is an in-memory set of templates keyed by exact (family, bracket).
type Catalog struct {
	templates map[Key]*Template
	families  map[string]Family
}

func NewCatalog() *Catalog {
	return &Catalog{
		templates: make(map[Key]*Template),
		families:  make(map[string]Family),
	}
}

// AddFamily registers the printing rules of a family.
func (c *Catalog) AddFamily(f Family) {
	c.families[f.Name] = f
}

// Add registers t, replacing an earlier template with the same key.
func (c *Catalog) Add(t *Template) {
	c.templates[t.key] = t
	if _, ok := c.families[t.key.Family]; !ok {
		c.families[t.key.Family] = Family{Name: t.key.Family, Account: AccountReference, Weight: PoundsAndOunces}
	}
}

// Family returns the printing rules of name.
func (c *Catalog) Family(name string) (Family, bool) {
	f, ok := c.families[name]
	return f, ok
}

// HasFamily reports whether any template is registered for family.
func (c *Catalog) HasFamily(family string) bool {
	for k := range c.templates {
		if k.Family == family {
			return true
		}
	}
	return false
}

// Lookup returns the template for (family, bracket), falling back to the
// family's AnyWeight template.
func (c *Catalog) Lookup(family string, bracket WeightBracket) (*Template, error) {
	if t, ok := c.templates[Key{Family: family, Bracket: bracket}]; ok {
		return t, nil
	}
	if t, ok := c.templates[Key{Family: family, Bracket: AnyWeight}]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, Key{Family: family, Bracket: bracket})
}
