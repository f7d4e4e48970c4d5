// Package session parses the marketplace session supplied by the seller into
// the cookie header and anti-forgery token sent with every marketplace call.
package session

import (
	"encoding/json"
	"errors"
	"strings"

	"fulfillment/internal/pkg/errs"
)

// CSRFCookie is the cookie carrying the anti-forgery token.
const CSRFCookie = "anti-csrftoken-a2z"

var ErrCredentialsAreNotConstructed = errors.New("Credentials must be created via Parse")

// Credentials authenticate marketplace requests.
type Credentials struct {
	cookieHeader string
	csrfToken    string

	isConstructed bool
}

type cookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Parse accepts a raw cookie header, a JSON list of {name, value} cookies, or
// a JSON object with a "cookies" list. The anti-forgery token is taken from the
// anti-csrftoken-a2z cookie when present, else from explicitToken.
func Parse(blob, explicitToken string) (Credentials, error) {
	blob = strings.TrimSpace(blob)
	if blob == "" {
		return Credentials{}, errs.NewValueIsRequiredError("session cookies")
	}

	var parts []string
	var token string

	if strings.HasPrefix(blob, "[") || strings.HasPrefix(blob, "{") {
		cookies, err := decodeCookies(blob)
		if err != nil {
			return Credentials{}, errs.NewValueIsInvalidErrorWithCause("session cookies", err)
		}
		for _, c := range cookies {
			if c.Name == "" || c.Value == "" {
				continue
			}
			parts = append(parts, c.Name+"="+c.Value)
			if c.Name == CSRFCookie {
				token = c.Value
			}
		}
		if len(parts) == 0 {
			return Credentials{}, errs.NewValueIsInvalidErrorWithCause("session cookies", errors.New("no usable cookies"))
		}
	} else {
		for _, p := range strings.Split(blob, ";") {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			parts = append(parts, p)
			if name, value, ok := strings.Cut(p, "="); ok && strings.TrimSpace(name) == CSRFCookie {
				token = strings.TrimSpace(value)
			}
		}
	}

	if token == "" {
		token = strings.TrimSpace(explicitToken)
	}

	return Credentials{
		cookieHeader:  strings.Join(parts, "; "),
		csrfToken:     token,
		isConstructed: true,
	}, nil
}

func decodeCookies(blob string) ([]cookie, error) {
	if strings.HasPrefix(blob, "[") {
		var list []cookie
		err := json.Unmarshal([]byte(blob), &list)
		return list, err
	}

	var wrapped struct {
		Cookies []cookie `json:"cookies"`
	}
	if err := json.Unmarshal([]byte(blob), &wrapped); err != nil {
		return nil, err
	}
	if len(wrapped.Cookies) > 0 {
		return wrapped.Cookies, nil
	}

	var single cookie
	if err := json.Unmarshal([]byte(blob), &single); err != nil {
		return nil, err
	}
	return []cookie{single}, nil
}

func (c Credentials) Validate() error {
	if !c.isConstructed {
		return ErrCredentialsAreNotConstructed
	}
	return nil
}

// CookieHeader is the value of the Cookie request header.
func (c Credentials) CookieHeader() string { return c.cookieHeader }

// CSRFToken may be empty when neither source carried one.
func (c Credentials) CSRFToken() string { return c.csrfToken }
