package recipe

import (
	"context"
	"fmt"
	"testing"

	"github.com/PavelDubrovin93/foodgram/entities"
	"github.com/PavelDubrovin93/foodgram/internal/utils/storage"
	"github.com/PavelDubrovin93/foodgram/pkg/ingredient"
	"github.com/PavelDubrovin93/foodgram/pkg/membership"
	"github.com/PavelDubrovin93/foodgram/pkg/tag"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&entities.User{},
		&entities.Subscription{},
		&entities.Ingredient{},
		&entities.Tag{},
		&entities.Recipe{},
		&entities.RecipeIngredient{},
		&entities.Favorite{},
		&entities.CartItem{},
	))
	return db
}

type fakeS3 struct{}

func (fakeS3) UploadBase64(ctx context.Context, payload, dir string) (string, error) {
	if _, _, err := storage.DecodeBase64Image(payload); err != nil {
		return "", err
	}
	return dir + "/object.png", nil
}

func (fakeS3) UploadBytes(ctx context.Context, data []byte, objectKey, contentType string) (string, error) {
	return objectKey, nil
}

func (fakeS3) GetPublicLinkKey(objectKey string) string {
	return "https://cdn.test/" + objectKey
}

func (fakeS3) DeleteObject(ctx context.Context, objectKey string) error {
	return nil
}

func newTestService(db *gorm.DB) RecipeService {
	favorites := membership.NewStore(db, membership.Config{
		Field:        "favorite",
		Resource:     "favorite",
		HolderColumn: "user_id",
		TargetColumn: "recipe_id",
		AllowSelf:    true,
	}, func(holder, target uint) *entities.Favorite {
		return &entities.Favorite{UserID: holder, RecipeID: target}
	})
	cart := membership.NewStore(db, membership.Config{
		Field:        "shopping_cart",
		Resource:     "cart item",
		HolderColumn: "user_id",
		TargetColumn: "recipe_id",
		AllowSelf:    true,
	}, func(holder, target uint) *entities.CartItem {
		return &entities.CartItem{UserID: holder, RecipeID: target}
	})
	subscriptions := membership.NewStore(db, membership.Config{
		Field:        "subscription",
		Resource:     "subscription",
		HolderColumn: "subscriber_id",
		TargetColumn: "subscribed_to_id",
		AllowSelf:    false,
	}, func(holder, target uint) *entities.Subscription {
		return &entities.Subscription{SubscriberID: holder, SubscribedToID: target}
	})

	return NewRecipeService(
		NewRecipeRepository(db),
		ingredient.NewIngredientRepository(db),
		tag.NewTagRepository(db),
		favorites,
		cart,
		subscriptions,
		fakeS3{},
	)
}

func seedUser(t *testing.T, db *gorm.DB, email string) *entities.User {
	u := &entities.User{
		Email:     email,
		Username:  email,
		FirstName: "Test",
		LastName:  "User",
		Password:  "hash",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedIngredient(t *testing.T, db *gorm.DB, name, unit string) *entities.Ingredient {
	i := &entities.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(i).Error)
	return i
}

func seedTag(t *testing.T, db *gorm.DB, n int) *entities.Tag {
	tg := &entities.Tag{
		Name: fmt.Sprintf("tag-%d", n),
		Slug: fmt.Sprintf("tag-%d", n),
	}
	require.NoError(t, db.Create(tg).Error)
	return tg
}
