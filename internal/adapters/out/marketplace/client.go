// Package marketplace is the HTTP client of the seller portal used to confirm
// shipments with generated tracking numbers.
//
// Every call authenticates with the seller's session cookies. An HTML answer,
// a sign-in page or an HTTP 401/403 means the session is no longer usable and
// is reported as ports.ErrSessionExpired.
package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/session"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

	// probeOrderID is a syntactically valid order id used to test a session.
	probeOrderID = "111-0000000-0000000"
	signInMarker = "<title>Amazon Sign-In</title>"

	carrier        = "USPS"
	shippingMethod = "Priority Mail"

	maxBodyBytes = 2 << 20
)

var confirmOutcome = regexp.MustCompile(`"ConfirmShipmentResponseEnum"\s*:\s*"([A-Za-z]+)"`)

// Client implements ports.MarketplaceClient.
type Client struct {
	baseURL string
	http    *http.Client
	rnd     kernel.Rand
}

func NewClient(baseURL string, timeout time.Duration, rnd kernel.Rand) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errs.NewValueIsInvalidErrorWithCause("marketplace url", fmt.Errorf("%q is not absolute", baseURL))
	}
	if timeout <= 0 {
		return nil, errs.NewValueIsOutOfRangeError("marketplace timeout", timeout, "> 0", "unbounded")
	}
	if rnd == nil {
		return nil, errs.NewValueIsRequiredError("rnd")
	}

	return &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		http:    &http.Client{Timeout: timeout},
		rnd:     rnd,
	}, nil
}

// ValidateSession fetches a probe order. Any JSON answer proves the session.
func (c *Client) ValidateSession(ctx context.Context, creds session.Credentials) error {
	if err := creds.Validate(); err != nil {
		return err
	}

	body, err := c.get(ctx, creds, "/orders-api/order/"+probeOrderID, false)
	if err != nil {
		return err
	}
	if !json.Valid(body) {
		return fmt.Errorf("%w: probe answer is not json", ports.ErrSessionExpired)
	}
	return nil
}

type orderEnvelope struct {
	Order struct {
		AssignedShipFromLocationAddressID string `json:"assignedShipFromLocationAddressId"`
		OrderItems                        []struct {
			CustomerOrderItemCode string `json:"CustomerOrderItemCode"`
		} `json:"orderItems"`
		Packages []struct {
			TrackingID string `json:"trackingId"`
		} `json:"packages"`
	} `json:"order"`
}

// GetOrder loads the fields needed to confirm a shipment on orderID.
func (c *Client) GetOrder(ctx context.Context, creds session.Credentials, orderID string) (ports.MarketplaceOrder, error) {
	if err := creds.Validate(); err != nil {
		return ports.MarketplaceOrder{}, err
	}

	path := "/orders-api/order/" + url.PathEscape(orderID) + "?ts=" + strconv.FormatInt(time.Now().UnixMilli(), 10)
	body, err := c.get(ctx, creds, path, true)
	if err != nil {
		return ports.MarketplaceOrder{}, err
	}

	var env orderEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ports.MarketplaceOrder{}, fmt.Errorf("decode order %s: %w", orderID, err)
	}

	order := ports.MarketplaceOrder{
		ID:                orderID,
		ShipFromAddressID: env.Order.AssignedShipFromLocationAddressID,
	}
	if len(env.Order.OrderItems) > 0 {
		order.ItemCode = env.Order.OrderItems[0].CustomerOrderItemCode
	}
	for _, p := range env.Order.Packages {
		if p.TrackingID != "" {
			order.TrackingIDs = append(order.TrackingIDs, p.TrackingID)
		}
	}
	return order, nil
}

type confirmItem struct {
	ItemQty               int    `json:"ItemQty"`
	CustomerOrderItemCode string `json:"CustomerOrderItemCode"`
}

type confirmShippingDetails struct {
	Carrier                        string `json:"Carrier"`
	ShipDate                       int64  `json:"ShipDate"`
	ShippingMethod                 string `json:"ShippingMethod"`
	IsSignatureConfirmationApplied bool   `json:"IsSignatureConfirmationApplied"`
	TrackingID                     string `json:"TrackingId"`
	ShipFromAddressID              string `json:"ShipFromAddressId"`
}

type confirmPackage struct {
	PackageIDString        string                 `json:"packageIdString"`
	ItemList               []confirmItem          `json:"ItemList"`
	PackageShippingDetails confirmShippingDetails `json:"PackageShippingDetails"`
}

type confirmOrder struct {
	OrderID                    string           `json:"OrderId"`
	DefaultShippingMethod      *string          `json:"DefaultShippingMethod"`
	ConfirmShipmentPackageList []confirmPackage `json:"ConfirmShipmentPackageList"`
	ConfirmInvoiceFlag         bool             `json:"ConfirmInvoiceFlag"`
}

type confirmRequest struct {
	OrderIDToPackagesList   []confirmOrder `json:"OrderIdToPackagesList"`
	ConfirmInvoiceFlag      bool           `json:"ConfirmInvoiceFlag"`
	BulkConfirmShipmentFlag bool           `json:"BulkConfirmShipmentFlag"`
}

// ConfirmShipment attaches one tracking number to one order. The marketplace
// answering Success or AlreadyShipped counts as confirmed; anything else is
// ports.ErrShipmentRejected.
func (c *Client) ConfirmShipment(ctx context.Context, creds session.Credentials, sc ports.ShipmentConfirmation) error {
	if err := creds.Validate(); err != nil {
		return err
	}

	shipDay := sc.ShipDate.UTC().Truncate(24 * time.Hour)
	payload := confirmRequest{
		OrderIDToPackagesList: []confirmOrder{{
			OrderID: sc.OrderID,
			ConfirmShipmentPackageList: []confirmPackage{{
				PackageIDString: strconv.Itoa(kernel.RandomBetween(c.rnd, 100000, 1000000)),
				ItemList:        []confirmItem{{ItemQty: 1, CustomerOrderItemCode: sc.ItemCode}},
				PackageShippingDetails: confirmShippingDetails{
					Carrier:           carrier,
					ShipDate:          shipDay.Unix(),
					ShippingMethod:    shippingMethod,
					TrackingID:        sc.TrackingID,
					ShipFromAddressID: sc.ShipFromAddressID,
				},
			}},
		}},
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/orders-api/confirm-shipment", bytes.NewReader(raw), creds, true)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Referer", c.baseURL+"/orders-v3/order/"+url.PathEscape(sc.OrderID)+"/confirm-shipment")

	body, err := c.do(req)
	if err != nil {
		return err
	}

	m := confirmOutcome.FindSubmatch(body)
	if m == nil {
		return fmt.Errorf("%w: order %s: no outcome in answer", ports.ErrShipmentRejected, sc.OrderID)
	}
	switch outcome := string(m[1]); outcome {
	case "Success", "AlreadyShipped":
		return nil
	default:
		return fmt.Errorf("%w: order %s: %s", ports.ErrShipmentRejected, sc.OrderID, outcome)
	}
}

func (c *Client) get(ctx context.Context, creds session.Credentials, path string, withToken bool) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, creds, withToken)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) newRequest(
	ctx context.Context,
	method, path string,
	body io.Reader,
	creds session.Credentials,
	withToken bool,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Cookie", creds.CookieHeader())
	if withToken && creds.CSRFToken() != "" {
		req.Header.Set(session.CSRFCookie, creds.CSRFToken())
	}
	return req, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%w: status %d", ports.ErrSessionExpired, resp.StatusCode)
	}
	if strings.Contains(resp.Header.Get("Content-Type"), "text/html") || bytes.Contains(body, []byte(signInMarker)) {
		return nil, fmt.Errorf("%w: sign-in page returned", ports.ErrSessionExpired)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s %s: status %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	return body, nil
}
