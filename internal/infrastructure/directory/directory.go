package directory

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/you/faceauthsvc/domain"
)

// GormDirectory implements domain.AccountDirectory over the users and admins
// tables. Both tables are owned by the account services; this adapter reads
// them and only ever writes the template-enrollment flag.
type GormDirectory struct {
	db *gorm.DB
}

// DBUser represents the database model for a user account.
type DBUser struct {
	ID                string `gorm:"primaryKey;size:36"`
	Email             string `gorm:"uniqueIndex;size:255"`
	Username          string `gorm:"size:64"`
	Name              string `gorm:"size:255"`
	Phone             string `gorm:"size:32"`
	HasFaceRegistered bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         gorm.DeletedAt `gorm:"index"`
}

func (DBUser) TableName() string {
	return "users"
}

// DBAdmin represents the database model for an admin account.
type DBAdmin struct {
	ID                string `gorm:"primaryKey;size:36"`
	Email             string `gorm:"uniqueIndex;size:255"`
	Name              string `gorm:"size:255"`
	Phone             string `gorm:"size:32"`
	HasFaceRegistered bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         gorm.DeletedAt `gorm:"index"`
}

func (DBAdmin) TableName() string {
	return "admins"
}

// NewGormDirectory creates a new account directory adapter.
func NewGormDirectory(db *gorm.DB) domain.AccountDirectory {
	return &GormDirectory{db: db}
}

// Resolve implements domain.AccountDirectory.
func (d *GormDirectory) Resolve(ctx context.Context, kind domain.AccountKind, externalID string) (*domain.Account, error) {
	switch kind {
	case domain.AccountKindAdmin:
		var admin DBAdmin
		err := d.db.WithContext(ctx).Where("id = ?", externalID).First(&admin).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.ErrAccountNotFound
			}
			return nil, err
		}
		return adminToDomain(&admin), nil
	case domain.AccountKindUser:
		var user DBUser
		err := d.db.WithContext(ctx).Where("id = ?", externalID).First(&user).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.ErrAccountNotFound
			}
			return nil, err
		}
		return userToDomain(&user), nil
	default:
		return nil, domain.ErrAccountNotFound
	}
}

// SetTemplateEnrolled implements domain.AccountDirectory.
func (d *GormDirectory) SetTemplateEnrolled(ctx context.Context, kind domain.AccountKind, externalID string) error {
	var tx *gorm.DB
	switch kind {
	case domain.AccountKindAdmin:
		tx = d.db.WithContext(ctx).Model(&DBAdmin{}).Where("id = ?", externalID).Update("has_face_registered", true)
	case domain.AccountKindUser:
		tx = d.db.WithContext(ctx).Model(&DBUser{}).Where("id = ?", externalID).Update("has_face_registered", true)
	default:
		return domain.ErrAccountNotFound
	}

	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func userToDomain(u *DBUser) *domain.Account {
	return &domain.Account{
		ID:                  u.ID,
		Email:               u.Email,
		Username:            u.Username,
		Name:                u.Name,
		Phone:               u.Phone,
		Kind:                domain.AccountKindUser,
		HasEnrolledTemplate: u.HasFaceRegistered,
		CreatedAt:           u.CreatedAt,
		UpdatedAt:           u.UpdatedAt,
	}
}

func adminToDomain(a *DBAdmin) *domain.Account {
	return &domain.Account{
		ID:                  a.ID,
		Email:               a.Email,
		Name:                a.Name,
		Phone:               a.Phone,
		Kind:                domain.AccountKindAdmin,
		HasEnrolledTemplate: a.HasFaceRegistered,
		CreatedAt:           a.CreatedAt,
		UpdatedAt:           a.UpdatedAt,
	}
}
