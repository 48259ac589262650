package recipe

import (
	"context"
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/PavelDubrovin93/foodgram/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCreateRequest(ingredientIDs, tagIDs []uint) domain.CreateRecipeRequest {
	ingredients := make([]domain.IngredientAmount, 0, len(ingredientIDs))
	for _, id := range ingredientIDs {
		ingredients = append(ingredients, domain.IngredientAmount{ID: id, Amount: 100})
	}
	return domain.CreateRecipeRequest{
		Name:        "Borscht",
		Text:        "Cook everything together",
		CookingTime: 90,
		Image:       "https://example.com/borscht.png",
		Ingredients: ingredients,
		Tags:        tagIDs,
	}
}

func TestCreateRecipe_Success(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	author := seedUser(t, db, "author@example.com")
	beet := seedIngredient(t, db, "beet", "g")
	cabbage := seedIngredient(t, db, "cabbage", "g")
	tg := seedTag(t, db, 1)

	res, err := svc.CreateRecipe(ctx, validCreateRequest([]uint{beet.ID, cabbage.ID}, []uint{tg.ID}), author.ID)
	require.NoError(t, err)

	assert.NotZero(t, res.ID)
	assert.Equal(t, "Borscht", res.Name)
	assert.Equal(t, author.ID, res.Author.ID)
	assert.Len(t, res.Ingredients, 2)
	assert.Len(t, res.Tags, 1)
	assert.False(t, res.IsFavorited)
	assert.False(t, res.IsInShoppingCart)
}

func TestCreateRecipe_UploadsBase64Image(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	author := seedUser(t, db, "author@example.com")
	beet := seedIngredient(t, db, "beet", "g")
	tg := seedTag(t, db, 1)

	req := validCreateRequest([]uint{beet.ID}, []uint{tg.ID})
	req.Image = "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png-bytes"))

	res, err := svc.CreateRecipe(ctx, req, author.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/recipes/object.png", res.Image)
}

func TestCreateRecipe_ValidationFailures(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	author := seedUser(t, db, "author@example.com")
	beet := seedIngredient(t, db, "beet", "g")
	tg := seedTag(t, db, 1)

	cases := []struct {
		name   string
		mutate func(*domain.CreateRecipeRequest)
	}{
		{"empty ingredients", func(r *domain.CreateRecipeRequest) {
			r.Ingredients = []domain.IngredientAmount{}
		}},
		{"empty tags", func(r *domain.CreateRecipeRequest) {
			r.Tags = []uint{}
		}},
		{"repeated ingredient id", func(r *domain.CreateRecipeRequest) {
			r.Ingredients = []domain.IngredientAmount{
				{ID: beet.ID, Amount: 10},
				{ID: beet.ID, Amount: 20},
			}
		}},
		{"repeated tag id", func(r *domain.CreateRecipeRequest) {
			r.Tags = []uint{tg.ID, tg.ID}
		}},
		{"amount below minimum", func(r *domain.CreateRecipeRequest) {
			r.Ingredients[0].Amount = 0
		}},
		{"amount above maximum", func(r *domain.CreateRecipeRequest) {
			r.Ingredients[0].Amount = 32001
		}},
		{"cooking time out of bounds", func(r *domain.CreateRecipeRequest) {
			r.CookingTime = 32001
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validCreateRequest([]uint{beet.ID}, []uint{tg.ID})
			tc.mutate(&req)
			_, err := svc.CreateRecipe(ctx, req, author.ID)
			assert.True(t, domain.IsValidation(err), "expected validation error, got %v", err)
		})
	}
}

func TestCreateRecipe_UnknownRelations(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	author := seedUser(t, db, "author@example.com")
	beet := seedIngredient(t, db, "beet", "g")
	tg := seedTag(t, db, 1)

	_, err := svc.CreateRecipe(ctx, validCreateRequest([]uint{beet.ID, 9999}, []uint{tg.ID}), author.ID)
	assert.True(t, domain.IsNotFound(err))

	_, err = svc.CreateRecipe(ctx, validCreateRequest([]uint{beet.ID}, []uint{9999}), author.ID)
	assert.True(t, domain.IsNotFound(err))
}

func TestCreateRecipe_DuplicateNamePerAuthor(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	author := seedUser(t, db, "author@example.com")
	other := seedUser(t, db, "other@example.com")
	beet := seedIngredient(t, db, "beet", "g")
	tg := seedTag(t, db, 1)

	_, err := svc.CreateRecipe(ctx, validCreateRequest([]uint{beet.ID}, []uint{tg.ID}), author.ID)
	require.NoError(t, err)

	_, err = svc.CreateRecipe(ctx, validCreateRequest([]uint{beet.ID}, []uint{tg.ID}), author.ID)
	assert.True(t, domain.IsConflict(err))

	// Same name under a different author is legal.
	_, err = svc.CreateRecipe(ctx, validCreateRequest([]uint{beet.ID}, []uint{tg.ID}), other.ID)
	assert.NoError(t, err)
}

func TestUpdateRecipe_RequiresBothLists(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	author := seedUser(t, db, "author@example.com")
	beet := seedIngredient(t, db, "beet", "g")
	tg := seedTag(t, db, 1)

	created, err := svc.CreateRecipe(ctx, validCreateRequest([]uint{beet.ID}, []uint{tg.ID}), author.ID)
	require.NoError(t, err)

	_, err = svc.UpdateRecipe(ctx, created.ID, domain.UpdateRecipeRequest{
		Tags: []uint{tg.ID},
	}, author.ID)
	assert.True(t, domain.IsValidation(err))

	_, err = svc.UpdateRecipe(ctx, created.ID, domain.UpdateRecipeRequest{
		Ingredients: []domain.IngredientAmount{{ID: beet.ID, Amount: 50}},
	}, author.ID)
	assert.True(t, domain.IsValidation(err))
}

func TestUpdateRecipe_ReplacesComposition(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	author := seedUser(t, db, "author@example.com")
	beet := seedIngredient(t, db, "beet", "g")
	cabbage := seedIngredient(t, db, "cabbage", "g")
	tg1 := seedTag(t, db, 1)
	tg2 := seedTag(t, db, 2)

	created, err := svc.CreateRecipe(ctx, validCreateRequest([]uint{beet.ID}, []uint{tg1.ID}), author.ID)
	require.NoError(t, err)

	updated, err := svc.UpdateRecipe(ctx, created.ID, domain.UpdateRecipeRequest{
		Ingredients: []domain.IngredientAmount{{ID: cabbage.ID, Amount: 250}},
		Tags:        []uint{tg2.ID},
	}, author.ID)
	require.NoError(t, err)

	require.Len(t, updated.Ingredients, 1)
	assert.Equal(t, cabbage.ID, updated.Ingredients[0].ID)
	assert.Equal(t, 250, updated.Ingredients[0].Amount)
	require.Len(t, updated.Tags, 1)
	assert.Equal(t, tg2.ID, updated.Tags[0].ID)

	// Omitted scalars keep their stored values.
	assert.Equal(t, created.Name, updated.Name)
	assert.Equal(t, created.CookingTime, updated.CookingTime)
}

func TestUpdateRecipe_NotOwner(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	author := seedUser(t, db, "author@example.com")
	intruder := seedUser(t, db, "intruder@example.com")
	beet := seedIngredient(t, db, "beet", "g")
	tg := seedTag(t, db, 1)

	created, err := svc.CreateRecipe(ctx, validCreateRequest([]uint{beet.ID}, []uint{tg.ID}), author.ID)
	require.NoError(t, err)

	_, err = svc.UpdateRecipe(ctx, created.ID, domain.UpdateRecipeRequest{
		Ingredients: []domain.IngredientAmount{{ID: beet.ID, Amount: 10}},
		Tags:        []uint{tg.ID},
	}, intruder.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotAllowed)

	assert.ErrorIs(t, svc.DeleteRecipe(ctx, created.ID, intruder.ID), domain.ErrUserNotAllowed)
}

func TestDeleteRecipe_RemovesDependentRows(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	author := seedUser(t, db, "author@example.com")
	fan := seedUser(t, db, "fan@example.com")
	beet := seedIngredient(t, db, "beet", "g")
	tg := seedTag(t, db, 1)

	created, err := svc.CreateRecipe(ctx, validCreateRequest([]uint{beet.ID}, []uint{tg.ID}), author.ID)
	require.NoError(t, err)

	_, err = svc.FavoriteRecipe(ctx, created.ID, fan.ID)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, created.ID, fan.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteRecipe(ctx, created.ID, author.ID))

	_, err = svc.GetRecipeDetail(ctx, created.ID, 0)
	assert.True(t, domain.IsNotFound(err))

	items, err := svc.GetShoppingList(ctx, fan.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFavoriteRecipe_DuplicateAndMissing(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	author := seedUser(t, db, "author@example.com")
	fan := seedUser(t, db, "fan@example.com")
	beet := seedIngredient(t, db, "beet", "g")
	tg := seedTag(t, db, 1)

	created, err := svc.CreateRecipe(ctx, validCreateRequest([]uint{beet.ID}, []uint{tg.ID}), author.ID)
	require.NoError(t, err)

	short, err := svc.FavoriteRecipe(ctx, created.ID, fan.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, short.ID)
	assert.Equal(t, created.Name, short.Name)

	_, err = svc.FavoriteRecipe(ctx, created.ID, fan.ID)
	assert.True(t, domain.IsConflict(err))

	require.NoError(t, svc.UnfavoriteRecipe(ctx, created.ID, fan.ID))
	assert.True(t, domain.IsNotFound(svc.UnfavoriteRecipe(ctx, created.ID, fan.ID)))

	_, err = svc.FavoriteRecipe(ctx, 9999, fan.ID)
	assert.True(t, domain.IsNotFound(err))
}

func TestGetRecipes_AnonymousViewerFlagsAndFilters(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	author := seedUser(t, db, "author@example.com")
	fan := seedUser(t, db, "fan@example.com")
	beet := seedIngredient(t, db, "beet", "g")
	tg := seedTag(t, db, 1)

	created, err := svc.CreateRecipe(ctx, validCreateRequest([]uint{beet.ID}, []uint{tg.ID}), author.ID)
	require.NoError(t, err)
	_, err = svc.FavoriteRecipe(ctx, created.ID, fan.ID)
	require.NoError(t, err)

	// Anonymous viewer asking for a viewer-relative filter gets an empty
	// page, not an error.
	res, err := svc.GetRecipes(ctx, domain.RecipeFilter{IsFavorited: true}, 0)
	require.NoError(t, err)
	assert.Empty(t, res.Recipes)

	// The same filter with the fan signed in returns the recipe.
	res, err = svc.GetRecipes(ctx, domain.RecipeFilter{IsFavorited: true}, fan.ID)
	require.NoError(t, err)
	require.Len(t, res.Recipes, 1)
	assert.True(t, res.Recipes[0].IsFavorited)

	// Anonymous detail view keeps the viewer-relative flags false.
	detail, err := svc.GetRecipeDetail(ctx, created.ID, 0)
	require.NoError(t, err)
	assert.False(t, detail.IsFavorited)
	assert.False(t, detail.IsInShoppingCart)
}

func TestGetRecipes_FilterByTagAndAuthor(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	author := seedUser(t, db, "author@example.com")
	other := seedUser(t, db, "other@example.com")
	beet := seedIngredient(t, db, "beet", "g")
	tg1 := seedTag(t, db, 1)
	tg2 := seedTag(t, db, 2)

	req := validCreateRequest([]uint{beet.ID}, []uint{tg1.ID, tg2.ID})
	tagged, err := svc.CreateRecipe(ctx, req, author.ID)
	require.NoError(t, err)

	req = validCreateRequest([]uint{beet.ID}, []uint{tg2.ID})
	req.Name = "Salad"
	_, err = svc.CreateRecipe(ctx, req, other.ID)
	require.NoError(t, err)

	// A recipe matching several requested tags appears once.
	res, err := svc.GetRecipes(ctx, domain.RecipeFilter{TagSlugs: []string{tg1.Slug, tg2.Slug}}, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Total)

	res, err = svc.GetRecipes(ctx, domain.RecipeFilter{TagSlugs: []string{tg1.Slug}}, 0)
	require.NoError(t, err)
	require.Len(t, res.Recipes, 1)
	assert.Equal(t, tagged.ID, res.Recipes[0].ID)

	res, err = svc.GetRecipes(ctx, domain.RecipeFilter{AuthorID: other.ID}, 0)
	require.NoError(t, err)
	require.Len(t, res.Recipes, 1)
	assert.Equal(t, "Salad", res.Recipes[0].Name)
}

func TestGetShoppingList_SumsAcrossCart(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	author := seedUser(t, db, "author@example.com")
	buyer := seedUser(t, db, "buyer@example.com")
	beet := seedIngredient(t, db, "beet", "g")
	cabbage := seedIngredient(t, db, "cabbage", "g")
	tg := seedTag(t, db, 1)

	first := validCreateRequest(nil, []uint{tg.ID})
	first.Ingredients = []domain.IngredientAmount{
		{ID: beet.ID, Amount: 100},
		{ID: cabbage.ID, Amount: 300},
	}
	r1, err := svc.CreateRecipe(ctx, first, author.ID)
	require.NoError(t, err)

	second := validCreateRequest(nil, []uint{tg.ID})
	second.Name = "Beet salad"
	second.Ingredients = []domain.IngredientAmount{{ID: beet.ID, Amount: 150}}
	r2, err := svc.CreateRecipe(ctx, second, author.ID)
	require.NoError(t, err)

	_, err = svc.AddToCart(ctx, r1.ID, buyer.ID)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, r2.ID, buyer.ID)
	require.NoError(t, err)

	items, err := svc.GetShoppingList(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	totals := make(map[string]int, len(items))
	for _, item := range items {
		totals[item.Name] = item.TotalAmount
	}
	assert.Equal(t, 250, totals["beet"])
	assert.Equal(t, 300, totals["cabbage"])

	// Another user's cart stays empty.
	items, err = svc.GetShoppingList(ctx, author.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestGetShortLink(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	author := seedUser(t, db, "author@example.com")
	beet := seedIngredient(t, db, "beet", "g")
	tg := seedTag(t, db, 1)

	created, err := svc.CreateRecipe(ctx, validCreateRequest([]uint{beet.ID}, []uint{tg.ID}), author.ID)
	require.NoError(t, err)

	res, err := svc.GetShortLink(ctx, created.ID)
	require.NoError(t, err)
	assert.Contains(t, res.ShortLink, fmt.Sprintf("/s/%d", created.ID))

	_, err = svc.GetShortLink(ctx, 9999)
	assert.True(t, domain.IsNotFound(err))
}
