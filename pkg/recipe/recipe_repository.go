package recipe

import (
	"context"
	"errors"

	"github.com/PavelDubrovin93/foodgram/domain"
	"github.com/PavelDubrovin93/foodgram/entities"
	"github.com/PavelDubrovin93/foodgram/internal/utils"
	"gorm.io/gorm"
)

type (
	RecipeRepository interface {
		CreateRecipeWithRelations(ctx context.Context, recipe *entities.Recipe, tags []entities.Tag) error
		UpdateRecipeWithRelations(ctx context.Context, recipe *entities.Recipe, tags []entities.Tag) error
		GetRecipeByID(ctx context.Context, id uint) (*entities.Recipe, error)
		GetRecipes(ctx context.Context, filter domain.RecipeFilter, viewerID uint) ([]*entities.Recipe, int64, error)
		GetRecipesByAuthor(ctx context.Context, authorID uint, limit int) ([]*entities.Recipe, error)
		CountRecipesByAuthor(ctx context.Context, authorID uint) (int64, error)
		DeleteRecipe(ctx context.Context, id uint) error
		GetCartIngredientTotals(ctx context.Context, userID uint) ([]domain.ShoppingListItem, error)
	}

	recipeRepository struct {
		db *gorm.DB
	}
)

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

// CreateRecipeWithRelations persists the recipe row, its ingredient rows
// and its tag associations as one transaction. A failing step leaves no
// rows behind.
func (r *recipeRepository) CreateRecipeWithRelations(ctx context.Context, recipe *entities.Recipe, tags []entities.Tag) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows := recipe.Ingredients
		recipe.Ingredients = nil
		recipe.Tags = nil

		if err := tx.Create(recipe).Error; err != nil {
			if utils.IsDuplicateKeyError(err) {
				return domain.NewConflictError("name", "recipe with this name already exists for this author")
			}
			return err
		}

		for i := range rows {
			rows[i].RecipeID = recipe.ID
		}
		if err := tx.Create(&rows).Error; err != nil {
			if utils.IsDuplicateKeyError(err) {
				return domain.NewConflictError("ingredients", "ingredient already present in recipe")
			}
			return err
		}
		recipe.Ingredients = rows

		if err := tx.Model(recipe).Association("Tags").Replace(&tags); err != nil {
			return err
		}
		recipe.Tags = tags
		return nil
	})
}

// UpdateRecipeWithRelations replaces the whole composition: prior
// ingredient rows are discarded and recreated from recipe.Ingredients,
// the tag set is replaced, scalar fields are updated. Atomic.
func (r *recipeRepository) UpdateRecipeWithRelations(ctx context.Context, recipe *entities.Recipe, tags []entities.Tag) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&entities.RecipeIngredient{}).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"name":         recipe.Name,
			"text":         recipe.Text,
			"cooking_time": recipe.CookingTime,
			"image":        recipe.Image,
		}
		if err := tx.Model(&entities.Recipe{}).Where("id = ?", recipe.ID).Updates(updates).Error; err != nil {
			if utils.IsDuplicateKeyError(err) {
				return domain.NewConflictError("name", "recipe with this name already exists for this author")
			}
			return err
		}

		rows := recipe.Ingredients
		for i := range rows {
			rows[i].ID = 0
			rows[i].RecipeID = recipe.ID
		}
		if err := tx.Create(&rows).Error; err != nil {
			if utils.IsDuplicateKeyError(err) {
				return domain.NewConflictError("ingredients", "ingredient already present in recipe")
			}
			return err
		}
		recipe.Ingredients = rows

		if err := tx.Model(recipe).Association("Tags").Replace(&tags); err != nil {
			return err
		}
		recipe.Tags = tags
		return nil
	})
}

func (r *recipeRepository) GetRecipeByID(ctx context.Context, id uint) (*entities.Recipe, error) {
	var recipe entities.Recipe
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		Where("id = ?", id).
		First(&recipe).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("recipe")
		}
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) GetRecipes(ctx context.Context, filter domain.RecipeFilter, viewerID uint) ([]*entities.Recipe, int64, error) {
	build := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&entities.Recipe{})
		if filter.AuthorID != 0 {
			query = query.Where("recipes.author_id = ?", filter.AuthorID)
		}
		if len(filter.TagSlugs) > 0 {
			query = query.
				Joins("JOIN recipe_tags ON recipe_tags.recipe_id = recipes.id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", filter.TagSlugs)
		}
		if filter.IsFavorited {
			query = query.
				Joins("JOIN favorites ON favorites.recipe_id = recipes.id").
				Where("favorites.user_id = ?", viewerID)
		}
		if filter.IsInShoppingCart {
			query = query.
				Joins("JOIN cart_items ON cart_items.recipe_id = recipes.id").
				Where("cart_items.user_id = ?", viewerID)
		}
		return query
	}

	var count int64
	if err := build().Distinct("recipes.id").Count(&count).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var recipes []*entities.Recipe
	if err := build().
		Distinct("recipes.*").
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		Order("recipes.id desc").
		Offset(offset).
		Limit(filter.Limit).
		Find(&recipes).Error; err != nil {
		return nil, 0, err
	}

	return recipes, count, nil
}

func (r *recipeRepository) GetRecipesByAuthor(ctx context.Context, authorID uint, limit int) ([]*entities.Recipe, error) {
	var recipes []*entities.Recipe
	query := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

func (r *recipeRepository) CountRecipesByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.Recipe{}).
		Where("author_id = ?", authorID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteRecipe removes the recipe together with its owned relation rows.
// The cleanup is explicit rather than left to FK cascades so the
// behaviour holds on stores without enforced foreign keys.
func (r *recipeRepository) DeleteRecipe(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&entities.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&entities.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&entities.CartItem{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&entities.Recipe{ID: id}).Association("Tags").Clear(); err != nil {
			return err
		}

		res := tx.Delete(&entities.Recipe{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.NewNotFoundError("recipe")
		}
		return nil
	})
}

// GetCartIngredientTotals consolidates every ingredient of every recipe
// in the user's cart. Grouping is by (name, measurement_unit), so
// distinct ingredient rows sharing the display identity merge into one
// line.
func (r *recipeRepository) GetCartIngredientTotals(ctx context.Context, userID uint) ([]domain.ShoppingListItem, error) {
	var items []domain.ShoppingListItem
	if err := r.db.WithContext(ctx).
		Model(&entities.RecipeIngredient{}).
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS total_amount").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN cart_items ON cart_items.recipe_id = recipe_ingredients.recipe_id").
		Where("cart_items.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
