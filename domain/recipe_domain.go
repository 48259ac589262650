package domain

var (
	MessageSuccessGetRecipes      = "success get recipes"
	MessageSuccessGetRecipeDetail = "success get recipe detail"
	MessageSuccessCreateRecipe    = "recipe created successfully"
	MessageSuccessUpdateRecipe    = "recipe updated successfully"
	MessageSuccessDeleteRecipe    = "recipe deleted successfully"
	MessageSuccessFavorite        = "recipe added to favorites"
	MessageSuccessUnfavorite      = "recipe removed from favorites"
	MessageSuccessAddToCart       = "recipe added to shopping cart"
	MessageSuccessRemoveFromCart  = "recipe removed from shopping cart"
	MessageSuccessGetShortLink    = "success get short link"
	MessageSuccessGetShoppingList = "success get shopping list"

	MessageFailedGetRecipes      = "failed to get recipes"
	MessageFailedGetRecipeDetail = "failed to get recipe detail"
	MessageFailedCreateRecipe    = "failed to create recipe"
	MessageFailedUpdateRecipe    = "failed to update recipe"
	MessageFailedDeleteRecipe    = "failed to delete recipe"
	MessageFailedFavorite        = "failed to update favorites"
	MessageFailedCart            = "failed to update shopping cart"
	MessageFailedGetShortLink    = "failed to get short link"
	MessageFailedShoppingList    = "failed to build shopping list"
)

type (
	// IngredientAmount is one (ingredient id, amount) pair of a submitted
	// recipe composition.
	IngredientAmount struct {
		ID     uint `json:"id" validate:"required"`
		Amount int  `json:"amount" validate:"required,min=1,max=32000"`
	}

	CreateRecipeRequest struct {
		Name        string             `json:"name" validate:"required,max=200"`
		Text        string             `json:"text" validate:"required"`
		CookingTime int                `json:"cooking_time" validate:"required,min=1,max=32000"`
		Image       string             `json:"image" validate:"required"`
		Ingredients []IngredientAmount `json:"ingredients" validate:"required,dive"`
		Tags        []uint             `json:"tags" validate:"required"`
	}

	// UpdateRecipeRequest replaces the whole composition: both lists are
	// mandatory, scalar fields fall back to the stored values when omitted.
	UpdateRecipeRequest struct {
		Name        string             `json:"name" validate:"omitempty,max=200"`
		Text        string             `json:"text"`
		CookingTime int                `json:"cooking_time" validate:"omitempty,min=1,max=32000"`
		Image       string             `json:"image"`
		Ingredients []IngredientAmount `json:"ingredients" validate:"omitempty,dive"`
		Tags        []uint             `json:"tags"`
	}

	RecipeIngredientResponse struct {
		ID              uint   `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		Amount          int    `json:"amount"`
	}

	TagResponse struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
		Slug string `json:"slug"`
	}

	RecipeResponse struct {
		ID               uint                       `json:"id"`
		Tags             []TagResponse              `json:"tags"`
		Author           UserResponse               `json:"author"`
		Ingredients      []RecipeIngredientResponse `json:"ingredients"`
		IsFavorited      bool                       `json:"is_favorited"`
		IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
		Name             string                     `json:"name"`
		Image            string                     `json:"image,omitempty"`
		Text             string                     `json:"text"`
		CookingTime      int                        `json:"cooking_time"`
	}

	ShortRecipeResponse struct {
		ID          uint   `json:"id"`
		Name        string `json:"name"`
		Image       string `json:"image,omitempty"`
		CookingTime int    `json:"cooking_time"`
	}

	RecipeListResponse struct {
		Recipes []RecipeResponse `json:"recipes"`
		Total   int64            `json:"total"`
	}

	// RecipeFilter mirrors the listing query parameters. The boolean
	// filters are viewer-relative and require an authenticated viewer.
	RecipeFilter struct {
		AuthorID         uint
		TagSlugs         []string
		IsFavorited      bool
		IsInShoppingCart bool
		Page             int
		Limit            int
	}

	// ShoppingListItem is one consolidated line of the cart export,
	// grouped by ingredient display identity.
	ShoppingListItem struct {
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		TotalAmount     int    `json:"total_amount"`
	}

	ShortLinkResponse struct {
		ShortLink string `json:"short-link"`
	}
)
