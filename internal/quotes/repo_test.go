package quotes

import (
	"context"
	"testing"
	"time"

	"github.com/frimousse/patisserie-backend/pkg/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupQuotesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	quotes := `
CREATE TABLE IF NOT EXISTS quotes (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  created_at DATETIME,
  full_name TEXT NOT NULL,
  contact TEXT NOT NULL,
  social_media TEXT,
  guests INTEGER NOT NULL,
  cake_type TEXT NOT NULL,
  three_milk_flavor TEXT,
  bread_flavor TEXT,
  filling_flavor TEXT,
  premium_cake TEXT,
  design_changes TEXT,
  allergies INTEGER NOT NULL DEFAULT 0,
  allergy_description TEXT,
  delivery_date DATETIME NOT NULL,
  delivery_time TEXT NOT NULL,
  delivery_type TEXT NOT NULL,
  home_delivery_address TEXT,
  agreement INTEGER NOT NULL DEFAULT 0,
  image_urls TEXT NOT NULL DEFAULT '[]'
);`
	require.NoError(t, db.Exec(quotes).Error)

	t.Cleanup(func() {
		_ = db.Exec(`DROP TABLE IF EXISTS quotes`).Error
	})

	return db
}

func sampleQuote() *models.Quote {
	flavor := "vanilla"
	return &models.Quote{
		FullName:        "Ana López",
		Contact:         "7711234567",
		Guests:          25,
		CakeType:        CakeTypeThreeMilk,
		ThreeMilkFlavor: &flavor,
		DeliveryDate:    time.Date(2025, 9, 20, 0, 0, 0, 0, time.UTC),
		DeliveryTime:    "17:00",
		DeliveryType:    DeliveryTypePickup,
		Agreement:       true,
		ImageURLs:       `["/uploads/a.jpg"]`,
	}
}

func TestRepositoryCreateAssignsIdentity(t *testing.T) {
	db := setupQuotesTestDB(t)
	repo := NewRepository(db)

	created, err := repo.Create(context.Background(), sampleQuote())
	require.NoError(t, err)

	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, `["/uploads/a.jpg"]`, created.ImageURLs)
}

func TestRepositoryFindByID(t *testing.T) {
	db := setupQuotesTestDB(t)
	repo := NewRepository(db)

	created, err := repo.Create(context.Background(), sampleQuote())
	require.NoError(t, err)

	found, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)

	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "Ana López", found.FullName)
	require.NotNil(t, found.ThreeMilkFlavor)
	assert.Equal(t, "vanilla", *found.ThreeMilkFlavor)
	assert.Nil(t, found.BreadFlavor)
}

func TestRepositoryFindByIDMissing(t *testing.T) {
	db := setupQuotesTestDB(t)
	repo := NewRepository(db)

	_, err := repo.FindByID(context.Background(), 9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
