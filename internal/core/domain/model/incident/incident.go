// Package incident provides Incident, one entry of the operator-only error log.
package incident

import (
	"errors"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

var (
	ErrIncidentIsNotConstructed = errors.New("Incident must be created via NewIncident or RestoreIncident constructor")
)

// Source names the component that reported an incident.
type Source string

const (
	SourceWorker       Source = "worker"
	SourceSynthesis    Source = "synthesis"
	SourceConfirmation Source = "confirmation"
	SourceRetention    Source = "retention"
)

// maxMessageLen bounds stored messages; longer text is cut.
const maxMessageLen = 2000

type Incident struct {
	id      int64
	source  Source
	batchID *kernel.UUID
	message string
	at      time.Time

	isConstructed bool
}

// NewIncident records a failure. batchID may be nil when no batch is involved.
func NewIncident(source Source, batchID *kernel.UUID, message string, at time.Time) (*Incident, error) {
	if strings.TrimSpace(string(source)) == "" {
		return nil, errs.NewValueIsRequiredError("incident source")
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, errs.NewValueIsRequiredError("incident message")
	}
	if len(message) > maxMessageLen {
		message = message[:maxMessageLen]
	}

	return &Incident{
		source:        source,
		batchID:       batchID,
		message:       message,
		at:            at.UTC(),
		isConstructed: true,
	}, nil
}

func RestoreIncident(id int64, source Source, batchID *kernel.UUID, message string, at time.Time) (*Incident, error) {
	i, err := NewIncident(source, batchID, message, at)
	if err != nil {
		return nil, err
	}
	i.id = id
	return i, nil
}

func (i *Incident) Validate() error {
	if i == nil || !i.isConstructed {
		return ErrIncidentIsNotConstructed
	}
	return nil
}

func (i *Incident) ID() int64             { return i.id }
func (i *Incident) Source() Source        { return i.source }
func (i *Incident) BatchID() *kernel.UUID { return i.batchID }
func (i *Incident) Message() string       { return i.message }
func (i *Incident) At() time.Time         { return i.at }
