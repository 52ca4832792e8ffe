package repository

import (
	"context"
	"errors"

	"github.com/mclasstourism/travelbill-sub003/internal/model"

	"gorm.io/gorm"
)

// SequenceRepository hands out document numbers. Next must be called
// inside the issuance transaction: the sequence row is locked FOR
// UPDATE, so increment-and-read is atomic and two concurrent issuances
// never see the same value. Numbers are never reused: deleting the
// document that consumed one does not wind the counter back.
type SequenceRepository interface {
	Next(ctx context.Context, name string) (int64, error)
	// EnsureAtLeast raises the counter to floor if it is behind, used at
	// startup to catch up with numbers already persisted.
	EnsureAtLeast(ctx context.Context, name string, floor int64) error
	Reset(ctx context.Context, name string, base int64) error
}

type sequenceRepository struct {
	db *gorm.DB
}

func NewSequenceRepository(db *gorm.DB) SequenceRepository {
	return &sequenceRepository{db: db}
}

func (r *sequenceRepository) Next(ctx context.Context, name string) (int64, error) {
	db := GetDB(ctx, r.db)

	var seq model.NumberSequence
	err := forUpdate(db).First(&seq, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		seq = model.NumberSequence{Name: name, Value: model.SequenceBase}
		if createErr := db.Create(&seq).Error; createErr != nil {
			return 0, createErr
		}
	} else if err != nil {
		return 0, err
	}

	seq.Value++
	if err := db.Save(&seq).Error; err != nil {
		return 0, err
	}
	return seq.Value, nil
}

func (r *sequenceRepository) EnsureAtLeast(ctx context.Context, name string, floor int64) error {
	db := GetDB(ctx, r.db)

	var seq model.NumberSequence
	err := forUpdate(db).First(&seq, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if floor < model.SequenceBase {
			floor = model.SequenceBase
		}
		return db.Create(&model.NumberSequence{Name: name, Value: floor}).Error
	}
	if err != nil {
		return err
	}

	if seq.Value < floor {
		seq.Value = floor
		return db.Save(&seq).Error
	}
	return nil
}

func (r *sequenceRepository) Reset(ctx context.Context, name string, base int64) error {
	db := GetDB(ctx, r.db)
	result := db.Model(&model.NumberSequence{}).Where("name = ?", name).Update("value", base)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return db.Create(&model.NumberSequence{Name: name, Value: base}).Error
	}
	return nil
}
