package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mclasstourism/travelbill-sub003/internal/apperr"
	"github.com/mclasstourism/travelbill-sub003/internal/model"
	"github.com/mclasstourism/travelbill-sub003/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// parseAmount reads an optional money field from a request. Empty means
// zero; anything negative is rejected before any mutation runs.
func parseAmount(raw, field string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, apperr.Validation("invalid %s: %q", field, raw)
	}
	if amount.IsNegative() {
		return decimal.Zero, apperr.Validation("%s must not be negative", field)
	}
	return amount, nil
}

// notFoundOr maps a gorm record-not-found error to the application's
// not-found error for the named entity and passes anything else through.
func notFoundOr(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(what)
	}
	return err
}

func parseUUID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid %s: %q", field, raw)
	}
	return id, nil
}

// writeAudit serializes details and appends an audit row inside the
// ambient transaction. The acting user id is optional.
func writeAudit(ctx context.Context, repo repository.AuditRepository, userID, action, entityID, entityName string, details interface{}) error {
	var uid *uuid.UUID
	if parsed, err := uuid.Parse(userID); err == nil {
		uid = &parsed
	}

	payload, _ := json.Marshal(details)
	return repo.Log(ctx, &model.AuditLog{
		UserID:     uid,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(payload),
	})
}
