package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	apptrade "github.com/mobilia/backend/internal/application/trade"
	"github.com/mobilia/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var sequencePrefixes = map[apptrade.SequenceKind]string{
	apptrade.SequenceOrder:         "CMD",
	apptrade.SequencePurchaseOrder: "BC",
	apptrade.SequenceInvoice:       "FAC",
}

// GormNumberingService hands out PREFIX-YYYY-NNNN numbers from number_sequences.
// The increment runs under the row lock taken by UPDATE, so concurrent callers
// never share a value. Numbers consumed by a rolled-back caller are not reused.
type GormNumberingService struct {
	db *gorm.DB
}

// NewGormNumberingService creates a new GormNumberingService
func NewGormNumberingService(db *gorm.DB) *GormNumberingService {
	return &GormNumberingService{db: db}
}

// Next returns the next number for the workspace, kind and year
func (s *GormNumberingService) Next(ctx context.Context, workspaceID uuid.UUID, kind apptrade.SequenceKind, year int) (string, error) {
	prefix, ok := sequencePrefixes[kind]
	if !ok {
		return "", fmt.Errorf("unknown sequence kind %q", kind)
	}

	var value int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := &models.NumberSequenceModel{WorkspaceID: workspaceID, Kind: string(kind), Year: year}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(seed).Error; err != nil {
			return err
		}

		where := tx.Model(&models.NumberSequenceModel{}).
			Where("workspace_id = ? AND kind = ? AND year = ?", workspaceID, string(kind), year)
		if err := where.Update("last_value", gorm.Expr("last_value + 1")).Error; err != nil {
			return err
		}

		var row models.NumberSequenceModel
		if err := tx.Where("workspace_id = ? AND kind = ? AND year = ?", workspaceID, string(kind), year).
			First(&row).Error; err != nil {
			return err
		}
		value = row.LastValue
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("next %s number: %w", kind, err)
	}
	return FormatDocumentNumber(prefix, year, value), nil
}

// FormatDocumentNumber renders PREFIX-YYYY-NNNN, widening past 9999
func FormatDocumentNumber(prefix string, year int, value int64) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, year, value)
}

var _ apptrade.NumberingService = (*GormNumberingService)(nil)
