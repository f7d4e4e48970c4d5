// Package queries contains read-only operations. Handlers read the Job Store
// tables directly with SQL and return flat response structs; they never load
// aggregates or open transactions.
package queries

import (
	"context"
	"database/sql"
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// requireOwnedBatch fails with ObjectNotFound when the batch does not exist or
// belongs to someone else, so foreign batch ids are indistinguishable from
// missing ones.
func requireOwnedBatch(ctx context.Context, db *gorm.DB, batchID, owner kernel.UUID) error {
	var stored uuid.UUID
	err := db.WithContext(ctx).
		Raw(`SELECT owner FROM batches WHERE id = ?`, batchID.Bytes()).
		Row().
		Scan(&stored)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errs.NewObjectNotFoundError("batch", batchID.String())
		}
		return err
	}

	if stored != owner.Bytes() {
		return errs.NewObjectNotFoundError("batch", batchID.String())
	}
	return nil
}

func toKernelID(raw uuid.UUID) (kernel.UUID, error) {
	return kernel.UUIDFromBytes(raw[:])
}
