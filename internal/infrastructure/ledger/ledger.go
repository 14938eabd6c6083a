package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/you/faceauthsvc/domain"
)

// GormLedger implements domain.AttemptLedger over the face_login_attempts
// table. The table is append-only; no update or delete path exists in this
// service.
type GormLedger struct {
	db *gorm.DB
}

// DBFaceLoginAttempt is the database model for one audit entry.
type DBFaceLoginAttempt struct {
	ID              string  `gorm:"primaryKey;size:36"`
	AccountID       *string `gorm:"index;size:36"`
	AccountKind     *string `gorm:"size:16"`
	SourceAddress   string  `gorm:"size:50"`
	DeviceID        *string `gorm:"size:255"`
	LivenessScore   float64
	SimilarityScore *float64
	Distance        *float64
	Result          string    `gorm:"index;size:32"`
	CreatedAt       time.Time `gorm:"index"`
}

func (DBFaceLoginAttempt) TableName() string {
	return "face_login_attempts"
}

// NewGormLedger creates a new attempt ledger.
func NewGormLedger(db *gorm.DB) domain.AttemptLedger {
	return &GormLedger{db: db}
}

// Append implements domain.AttemptLedger. The record's ID and CreatedAt are
// assigned here if unset.
func (l *GormLedger) Append(ctx context.Context, record *domain.AttemptRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	row := &DBFaceLoginAttempt{
		ID:              record.ID,
		AccountID:       record.AccountID,
		AccountKind:     kindToColumn(record.AccountKind),
		SourceAddress:   record.SourceAddress,
		DeviceID:        record.DeviceID,
		LivenessScore:   record.LivenessScore,
		SimilarityScore: record.SimilarityScore,
		Distance:        record.Distance,
		Result:          string(record.Result),
		CreatedAt:       record.CreatedAt,
	}

	if err := l.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("%w: %v", domain.ErrLedgerWriteFailed, err)
	}
	return nil
}

func kindToColumn(kind *domain.AccountKind) *string {
	if kind == nil {
		return nil
	}
	s := string(*kind)
	return &s
}
