package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/you/faceauthsvc/domain"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_pragma=foreign_keys(1)&mode=memory"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&DBUser{}, &DBAdmin{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM users")
		db.Exec("DELETE FROM admins")
	})
	return db
}

func seedUser(t *testing.T, db *gorm.DB, enrolled bool) *DBUser {
	t.Helper()
	u := &DBUser{
		ID:                uuid.NewString(),
		Email:             uuid.NewString() + "@example.com",
		Username:          "jdoe",
		Name:              "Jane Doe",
		Phone:             "+15550002222",
		HasFaceRegistered: enrolled,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return u
}

func TestGormDirectory_ResolveUser(t *testing.T) {
	db := openTestDB(t)
	dir := NewGormDirectory(db)
	seeded := seedUser(t, db, true)

	account, err := dir.Resolve(context.Background(), domain.AccountKindUser, seeded.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if account.ID != seeded.ID {
		t.Errorf("expected id %s, got %s", seeded.ID, account.ID)
	}
	if account.Kind != domain.AccountKindUser {
		t.Errorf("expected kind USER, got %s", account.Kind)
	}
	if account.Username != "jdoe" {
		t.Errorf("expected username jdoe, got %s", account.Username)
	}
	if !account.HasEnrolledTemplate {
		t.Error("expected enrolled template flag to carry over")
	}
}

func TestGormDirectory_ResolveAdmin(t *testing.T) {
	db := openTestDB(t)
	dir := NewGormDirectory(db)

	admin := &DBAdmin{
		ID:    uuid.NewString(),
		Email: "root@example.com",
		Name:  "Root Admin",
	}
	if err := db.Create(admin).Error; err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}

	account, err := dir.Resolve(context.Background(), domain.AccountKindAdmin, admin.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.Kind != domain.AccountKindAdmin {
		t.Errorf("expected kind ADMIN, got %s", account.Kind)
	}
	if account.Username != "" {
		t.Errorf("admins have no username, got %s", account.Username)
	}
}

func TestGormDirectory_ResolveNotFound(t *testing.T) {
	db := openTestDB(t)
	dir := NewGormDirectory(db)

	tests := []struct {
		name string
		kind domain.AccountKind
		id   string
	}{
		{name: "unknown user", kind: domain.AccountKindUser, id: uuid.NewString()},
		{name: "unknown admin", kind: domain.AccountKindAdmin, id: uuid.NewString()},
		{name: "invalid kind", kind: domain.AccountKind("SERVICE"), id: uuid.NewString()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := dir.Resolve(context.Background(), tt.kind, tt.id)
			if !errors.Is(err, domain.ErrAccountNotFound) {
				t.Errorf("expected ErrAccountNotFound, got %v", err)
			}
		})
	}
}

func TestGormDirectory_ResolveDeletedUser(t *testing.T) {
	db := openTestDB(t)
	dir := NewGormDirectory(db)
	seeded := seedUser(t, db, true)

	// Account deleted after enrollment: the orphaned-template case.
	if err := db.Delete(&DBUser{}, "id = ?", seeded.ID).Error; err != nil {
		t.Fatalf("failed to delete user: %v", err)
	}

	_, err := dir.Resolve(context.Background(), domain.AccountKindUser, seeded.ID)
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound for deleted account, got %v", err)
	}
}

func TestGormDirectory_SetTemplateEnrolled(t *testing.T) {
	db := openTestDB(t)
	dir := NewGormDirectory(db)
	seeded := seedUser(t, db, false)

	if err := dir.SetTemplateEnrolled(context.Background(), domain.AccountKindUser, seeded.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var stored DBUser
	if err := db.First(&stored, "id = ?", seeded.ID).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	if !stored.HasFaceRegistered {
		t.Error("expected has_face_registered to be true")
	}

	// Idempotent re-enrollment keeps the flag set.
	if err := dir.SetTemplateEnrolled(context.Background(), domain.AccountKindUser, seeded.ID); err != nil {
		t.Fatalf("unexpected error on re-enrollment: %v", err)
	}
}

func TestGormDirectory_SetTemplateEnrolledMissingAccount(t *testing.T) {
	db := openTestDB(t)
	dir := NewGormDirectory(db)

	err := dir.SetTemplateEnrolled(context.Background(), domain.AccountKindAdmin, uuid.NewString())
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}
