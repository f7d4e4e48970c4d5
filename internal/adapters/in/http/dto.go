package http

import (
	"time"

	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/shipment"
)

const shipDateLayout = "2006-01-02"

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type Address struct {
	Name    string `json:"name"`
	Company string `json:"company"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
}

func (a Address) toDomain() shipment.Address {
	return shipment.Address(a)
}

type NewShipmentRow struct {
	From           Address `json:"from"`
	To             Address `json:"to"`
	WeightLbs      float64 `json:"weight_lbs"`
	ItemReference  string  `json:"item_reference"`
	OrderReference string  `json:"order_reference"`
	Description    string  `json:"description"`
	Hazard         bool    `json:"hazard"`
	// ShipDate is YYYY-MM-DD; empty means the processing date.
	ShipDate string `json:"ship_date"`
}

type NewBatch struct {
	Template    string           `json:"template"`
	RateVersion string           `json:"rate_version"`
	Rows        []NewShipmentRow `json:"rows"`
}

type BatchCreated struct {
	ID string `json:"id"`
}

type Batch struct {
	ID             string    `json:"id"`
	Status         string    `json:"status"`
	RequestedCount int       `json:"requested_count"`
	SuccessCount   int       `json:"success_count"`
	Template       string    `json:"template"`
	RateVersion    string    `json:"rate_version"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	SubmittedAt    time.Time `json:"submitted_at"`
	QueuePosition  int       `json:"queue_position"`
}

func toBatch(r queries.GetBatchStatusQueryResponse) Batch {
	return Batch{
		ID:             r.ID.String(),
		Status:         r.Status.String(),
		RequestedCount: r.RequestedCount,
		SuccessCount:   r.SuccessCount,
		Template:       r.Template,
		RateVersion:    r.RateVersion,
		UnitPriceCents: int64(r.UnitPrice),
		SubmittedAt:    r.SubmittedAt,
		QueuePosition:  r.QueuePosition,
	}
}

type Result struct {
	Seq              int       `json:"seq"`
	ItemReference    string    `json:"item_reference"`
	OrderReference   string    `json:"order_reference"`
	TrackingNumber   string    `json:"tracking_number"`
	Status           string    `json:"status"`
	SenderName       string    `json:"sender_name"`
	RecipientName    string    `json:"recipient_name"`
	RecipientAddress string    `json:"recipient_address"`
	RateVersion      string    `json:"rate_version"`
	CreatedAt        time.Time `json:"created_at"`
}

func toResult(r queries.ListBatchResultsQueryResponse) Result {
	return Result{
		Seq:              r.Seq,
		ItemReference:    r.ItemReference,
		OrderReference:   r.OrderReference,
		TrackingNumber:   r.TrackingNumber,
		Status:           string(r.Status),
		SenderName:       r.SenderName,
		RecipientName:    r.RecipientName,
		RecipientAddress: r.RecipientAddress,
		RateVersion:      r.RateVersion,
		CreatedAt:        r.CreatedAt,
	}
}

type StartConfirmation struct {
	// Session is a cookie header, a JSON cookie list or a JSON object with a
	// "cookies" list.
	Session   string `json:"session"`
	CSRFToken string `json:"csrf_token"`
}

type Worker struct {
	WorkerID string    `json:"worker_id"`
	Lane     string    `json:"lane"`
	LastSeen time.Time `json:"last_seen"`
	State    string    `json:"state"`
}

type Incident struct {
	ID      int64     `json:"id"`
	Source  string    `json:"source"`
	BatchID string    `json:"batch_id,omitempty"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

type WorkerStatus struct {
	Paused              bool       `json:"paused"`
	Queued              int        `json:"queued"`
	Processing          int        `json:"processing"`
	Confirming          int        `json:"confirming"`
	ActiveConfirmations []string   `json:"active_confirmations"`
	Workers             []Worker   `json:"workers"`
	RecentIncidents     []Incident `json:"recent_incidents"`
}

func toWorkerStatus(r queries.GetWorkerStatusQueryResponse) WorkerStatus {
	out := WorkerStatus{
		Paused:              r.Paused,
		Queued:              r.Queued,
		Processing:          r.Processing,
		Confirming:          r.Confirming,
		ActiveConfirmations: make([]string, 0, len(r.ActiveConfirmations)),
		Workers:             make([]Worker, 0, len(r.Workers)),
		RecentIncidents:     make([]Incident, 0, len(r.RecentIncidents)),
	}
	for _, id := range r.ActiveConfirmations {
		out.ActiveConfirmations = append(out.ActiveConfirmations, id.String())
	}
	for _, w := range r.Workers {
		out.Workers = append(out.Workers, Worker{
			WorkerID: w.WorkerID,
			Lane:     string(w.Lane),
			LastSeen: w.LastSeen,
			State:    string(w.State),
		})
	}
	for _, i := range r.RecentIncidents {
		entry := Incident{ID: i.ID, Source: string(i.Source), Message: i.Message, At: i.At}
		if i.BatchID != nil {
			entry.BatchID = i.BatchID.String()
		}
		out.RecentIncidents = append(out.RecentIncidents, entry)
	}
	return out
}
