package ports

import (
	"context"
	"errors"
	"io"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/label"
	"fulfillment/internal/core/domain/model/session"
	"fulfillment/internal/core/domain/model/tracking"
)

var (
	// ErrRenderRateLimited is returned by a LabelRenderer on HTTP 429.
	ErrRenderRateLimited = errors.New("renderer rate limited")
	// ErrRenderFailed is returned by a LabelRenderer on any other non-200 reply.
	ErrRenderFailed = errors.New("renderer rejected label")

	// ErrSessionExpired means the marketplace session is unusable.
	ErrSessionExpired = errors.New("marketplace session expired")
	// ErrShipmentRejected means the marketplace did not accept a tracking number.
	ErrShipmentRejected = errors.New("marketplace rejected shipment")
)

// LabelRenderer turns a populated label description into printable artwork.
type LabelRenderer interface {
	Render(ctx context.Context, description string) ([]byte, error)
}

// MarketplaceOrder is the part of a remote order the confirmation engine uses.
type MarketplaceOrder struct {
	ID string
	// ItemCode is the first shippable item code; empty when none.
	ItemCode string
	// ShipFromAddressID is empty when the order has no assigned ship-from.
	ShipFromAddressID string
	// TrackingIDs are already attached to the order.
	TrackingIDs []string
}

// ShipmentConfirmation is one confirm-shipment submission.
type ShipmentConfirmation struct {
	OrderID           string
	ItemCode          string
	ShipFromAddressID string
	TrackingID        string
	ShipDate          time.Time
}

// MarketplaceClient talks to the seller portal.
type MarketplaceClient interface {
	// ValidateSession returns ErrSessionExpired when creds are rejected.
	ValidateSession(ctx context.Context, creds session.Credentials) error
	GetOrder(ctx context.Context, creds session.Credentials, orderID string) (MarketplaceOrder, error)
	ConfirmShipment(ctx context.Context, creds session.Credentials, c ShipmentConfirmation) error
}

// DedupCache is the durable set of tracking numbers already submitted to the
// marketplace. It is independent of the Job Store.
type DedupCache interface {
	Contains(ctx context.Context, trackingNumber string) (bool, error)
	Add(ctx context.Context, trackingNumber string) error
}

// DocumentStore keeps the merged label document of a batch.
type DocumentStore interface {
	// Save merges pages into one document for batchID.
	Save(ctx context.Context, batchID kernel.UUID, pages [][]byte) error
	// Open returns errs.ObjectNotFoundError when no document exists.
	Open(ctx context.Context, batchID kernel.UUID) (io.ReadCloser, error)
	// Delete ignores missing documents.
	Delete(ctx context.Context, batchID kernel.UUID) error
}

// TemplateCatalog resolves label templates.
type TemplateCatalog interface {
	Lookup(family string, bracket label.WeightBracket) (*label.Template, error)
	Family(name string) (label.Family, bool)
	HasFamily(family string) bool
}

// RateBook resolves rate versions to tracking families.
type RateBook interface {
	// Family returns errs.ObjectNotFoundError for unknown versions.
	Family(version string) (tracking.Family, error)
	DefaultUnitPrice() kernel.Cents
}

// EventType names a batch lifecycle event.
type EventType string

const (
	BatchFinalized       EventType = "BatchFinalized"
	ConfirmationFinished EventType = "ConfirmationFinished"
)

// BatchEvent is published after a batch reaches a new terminal status.
type BatchEvent struct {
	Type           EventType `json:"type"`
	BatchID        string    `json:"batch_id"`
	Owner          string    `json:"owner"`
	Status         string    `json:"status"`
	RequestedCount int       `json:"requested_count"`
	SuccessCount   int       `json:"success_count"`
	RefundCents    int64     `json:"refund_cents"`
	At             time.Time `json:"at"`
}

// EventPublisher delivers lifecycle events. Delivery is best effort.
type EventPublisher interface {
	Publish(ctx context.Context, e BatchEvent) error
}
