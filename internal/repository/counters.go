package repository

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"
)

// addCounter adds delta to an integer column (never below zero) and returns the new value
func addCounter(ctx context.Context, db *gorm.DB, value interface{}, pkColumn, id, column string, delta int) (int, error) {
	res := db.WithContext(ctx).
		Model(value).
		Where(pkColumn+" = ?", id).
		UpdateColumn(column, gorm.Expr("GREATEST("+column+" + ?, 0)", delta))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}

	var n int
	err := db.WithContext(ctx).
		Model(value).
		Where(pkColumn+" = ?", id).
		Select(column).
		Scan(&n).Error
	return n, err
}

// tagJSON jsonb containment operand for a single tag
func tagJSON(tag string) string {
	b, _ := json.Marshal([]string{tag})
	return string(b)
}
