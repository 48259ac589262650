package ingredient

import (
	"context"
	"testing"

	"github.com/PavelDubrovin93/foodgram/domain"
	"github.com/PavelDubrovin93/foodgram/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.Ingredient{}))
	return db
}

func TestGetIngredients_PrefixSearch(t *testing.T) {
	db := newTestDB(t)
	repo := NewIngredientRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.BulkCreateIngredients(ctx, []*entities.Ingredient{
		{Name: "flour", MeasurementUnit: "g"},
		{Name: "flour", MeasurementUnit: "cup"},
		{Name: "milk", MeasurementUnit: "ml"},
	}))

	all, err := repo.GetIngredients(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	matched, err := repo.GetIngredients(ctx, "flo")
	require.NoError(t, err)
	assert.Len(t, matched, 2)

	matched, err = repo.GetIngredients(ctx, "ilk")
	require.NoError(t, err)
	assert.Empty(t, matched)
}

func TestGetIngredientByID_NotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewIngredientRepository(db)

	_, err := repo.GetIngredientByID(context.Background(), 7)
	assert.True(t, domain.IsNotFound(err))
}
