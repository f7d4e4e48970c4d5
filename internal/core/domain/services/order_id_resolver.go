package services

import (
	"errors"
	"regexp"
	"strings"

	"fulfillment/internal/pkg/errs"
)

// DefaultOrderIDPattern matches marketplace order ids such as 111-2223334-5556667.
const DefaultOrderIDPattern = `^\d{3}-\d{7}-\d{7}$`

// ErrOrderUnresolvable marks an order whose remote metadata cannot be used.
// The order is skipped and the run continues.
var ErrOrderUnresolvable = errors.New("order unresolvable")

// OrderIDResolver finds the marketplace order id of a result row. Uploads are
// not consistent about which column holds the order id, so when the order
// column does not look like one but the item column does, the two are swapped.
type OrderIDResolver struct {
	pattern *regexp.Regexp
}

func NewOrderIDResolver(pattern string) (OrderIDResolver, error) {
	if strings.TrimSpace(pattern) == "" {
		pattern = DefaultOrderIDPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return OrderIDResolver{}, errs.NewValueIsInvalidErrorWithCause("order id pattern", err)
	}
	return OrderIDResolver{pattern: re}, nil
}

// Resolve returns the order id and item reference of a row, or ok=false when
// neither column holds an order id.
func (r OrderIDResolver) Resolve(itemReference, orderReference string) (orderID, item string, ok bool) {
	itemReference = strings.TrimSpace(itemReference)
	orderReference = strings.TrimSpace(orderReference)

	switch {
	case r.pattern.MatchString(orderReference):
		return orderReference, itemReference, true
	case r.pattern.MatchString(itemReference):
		return itemReference, orderReference, true
	default:
		return "", "", false
	}
}
