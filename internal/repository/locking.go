package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forUpdate applies a FOR UPDATE row lock where the dialect supports
// it. SQLite (used by the tests) has no FOR UPDATE syntax; its
// single-writer lock already serializes mutations.
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
