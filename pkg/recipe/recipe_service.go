package recipe

import (
	"context"
	"fmt"

	"github.com/PavelDubrovin93/foodgram/domain"
	"github.com/PavelDubrovin93/foodgram/entities"
	"github.com/PavelDubrovin93/foodgram/internal/utils"
	"github.com/PavelDubrovin93/foodgram/internal/utils/storage"
	"github.com/PavelDubrovin93/foodgram/pkg/ingredient"
	"github.com/PavelDubrovin93/foodgram/pkg/membership"
	"github.com/PavelDubrovin93/foodgram/pkg/tag"
)

type (
	RecipeService interface {
		GetRecipes(ctx context.Context, filter domain.RecipeFilter, viewerID uint) (domain.RecipeListResponse, error)
		GetRecipeDetail(ctx context.Context, recipeID, viewerID uint) (domain.RecipeResponse, error)
		CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, authorID uint) (domain.RecipeResponse, error)
		UpdateRecipe(ctx context.Context, recipeID uint, req domain.UpdateRecipeRequest, callerID uint) (domain.RecipeResponse, error)
		DeleteRecipe(ctx context.Context, recipeID, callerID uint) error
		FavoriteRecipe(ctx context.Context, recipeID, userID uint) (domain.ShortRecipeResponse, error)
		UnfavoriteRecipe(ctx context.Context, recipeID, userID uint) error
		AddToCart(ctx context.Context, recipeID, userID uint) (domain.ShortRecipeResponse, error)
		RemoveFromCart(ctx context.Context, recipeID, userID uint) error
		GetShoppingList(ctx context.Context, userID uint) ([]domain.ShoppingListItem, error)
		GetShortLink(ctx context.Context, recipeID uint) (domain.ShortLinkResponse, error)
	}

	recipeService struct {
		recipeRepository     RecipeRepository
		ingredientRepository ingredient.IngredientRepository
		tagRepository        tag.TagRepository
		favorites            membership.Store[entities.Favorite]
		cart                 membership.Store[entities.CartItem]
		subscriptions        membership.Store[entities.Subscription]
		s3                   storage.AwsS3
	}
)

func NewRecipeService(
	recipeRepository RecipeRepository,
	ingredientRepository ingredient.IngredientRepository,
	tagRepository tag.TagRepository,
	favorites membership.Store[entities.Favorite],
	cart membership.Store[entities.CartItem],
	subscriptions membership.Store[entities.Subscription],
	s3 storage.AwsS3,
) RecipeService {
	return &recipeService{
		recipeRepository:     recipeRepository,
		ingredientRepository: ingredientRepository,
		tagRepository:        tagRepository,
		favorites:            favorites,
		cart:                 cart,
		subscriptions:        subscriptions,
		s3:                   s3,
	}
}

// validateComposition runs the in-memory checks on a submitted ingredient
// and tag list before anything touches storage: non-empty lists, no
// repeated ids, amounts within bounds.
func validateComposition(ingredients []domain.IngredientAmount, tagIDs []uint) error {
	if len(ingredients) == 0 {
		return domain.NewValidationError("ingredients", "list must not be empty")
	}
	seen := make(map[uint]struct{}, len(ingredients))
	for _, item := range ingredients {
		if item.Amount < domain.MinAmount || item.Amount > domain.MaxAmount {
			return domain.NewValidationError("amount", "must be between 1 and 32000")
		}
		if _, ok := seen[item.ID]; ok {
			return domain.NewValidationError("ingredients", "ingredient ids must not repeat")
		}
		seen[item.ID] = struct{}{}
	}

	if len(tagIDs) == 0 {
		return domain.NewValidationError("tags", "list must not be empty")
	}
	tagSeen := make(map[uint]struct{}, len(tagIDs))
	for _, id := range tagIDs {
		if _, ok := tagSeen[id]; ok {
			return domain.NewValidationError("tags", "tag ids must not repeat")
		}
		tagSeen[id] = struct{}{}
	}
	return nil
}

// resolveRelations checks every referenced ingredient id exists and
// loads the tag rows, failing with not-found when any id is unknown.
func (s *recipeService) resolveRelations(ctx context.Context, ingredients []domain.IngredientAmount, tagIDs []uint) ([]entities.Tag, error) {
	ids := make([]uint, 0, len(ingredients))
	for _, item := range ingredients {
		ids = append(ids, item.ID)
	}

	found, err := s.ingredientRepository.GetIngredientsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(found) != len(ids) {
		return nil, domain.NewNotFoundError("ingredient")
	}

	foundTags, err := s.tagRepository.GetTagsByIDs(ctx, tagIDs)
	if err != nil {
		return nil, err
	}
	if len(foundTags) != len(tagIDs) {
		return nil, domain.NewNotFoundError("tag")
	}
	tags := make([]entities.Tag, 0, len(foundTags))
	for _, t := range foundTags {
		tags = append(tags, *t)
	}
	return tags, nil
}

func (s *recipeService) resolveImage(ctx context.Context, image string) (string, error) {
	if !storage.IsBase64Payload(image) {
		return image, nil
	}
	objectKey, err := s.s3.UploadBase64(ctx, image, "recipes")
	if err != nil {
		return "", domain.NewValidationError("image", "invalid image payload")
	}
	return s.s3.GetPublicLinkKey(objectKey), nil
}

func (s *recipeService) CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, authorID uint) (domain.RecipeResponse, error) {
	if req.CookingTime < domain.MinCookingTime || req.CookingTime > domain.MaxCookingTime {
		return domain.RecipeResponse{}, domain.NewValidationError("cooking_time", "must be between 1 and 32000")
	}
	if err := validateComposition(req.Ingredients, req.Tags); err != nil {
		return domain.RecipeResponse{}, err
	}

	tags, err := s.resolveRelations(ctx, req.Ingredients, req.Tags)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	imageURL, err := s.resolveImage(ctx, req.Image)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	rows := make([]entities.RecipeIngredient, 0, len(req.Ingredients))
	for _, item := range req.Ingredients {
		rows = append(rows, entities.RecipeIngredient{
			IngredientID: item.ID,
			Amount:       item.Amount,
		})
	}

	newRecipe := &entities.Recipe{
		AuthorID:    authorID,
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		Image:       imageURL,
		Ingredients: rows,
	}

	if err := s.recipeRepository.CreateRecipeWithRelations(ctx, newRecipe, tags); err != nil {
		return domain.RecipeResponse{}, err
	}

	return s.GetRecipeDetail(ctx, newRecipe.ID, authorID)
}

func (s *recipeService) UpdateRecipe(ctx context.Context, recipeID uint, req domain.UpdateRecipeRequest, callerID uint) (domain.RecipeResponse, error) {
	existing, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	if existing.AuthorID != callerID {
		return domain.RecipeResponse{}, domain.ErrUserNotAllowed
	}

	// A partial update lacking either list would silently empty the
	// relation under replace semantics, so both are mandatory.
	if req.Ingredients == nil {
		return domain.RecipeResponse{}, domain.NewValidationError("ingredients", "field is required")
	}
	if req.Tags == nil {
		return domain.RecipeResponse{}, domain.NewValidationError("tags", "field is required")
	}
	if err := validateComposition(req.Ingredients, req.Tags); err != nil {
		return domain.RecipeResponse{}, err
	}

	tags, err := s.resolveRelations(ctx, req.Ingredients, req.Tags)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	name := req.Name
	if name == "" {
		name = existing.Name
	}
	text := req.Text
	if text == "" {
		text = existing.Text
	}
	cookingTime := req.CookingTime
	if cookingTime == 0 {
		cookingTime = existing.CookingTime
	}
	if cookingTime < domain.MinCookingTime || cookingTime > domain.MaxCookingTime {
		return domain.RecipeResponse{}, domain.NewValidationError("cooking_time", "must be between 1 and 32000")
	}

	imageURL := existing.Image
	if req.Image != "" {
		imageURL, err = s.resolveImage(ctx, req.Image)
		if err != nil {
			return domain.RecipeResponse{}, err
		}
	}

	rows := make([]entities.RecipeIngredient, 0, len(req.Ingredients))
	for _, item := range req.Ingredients {
		rows = append(rows, entities.RecipeIngredient{
			IngredientID: item.ID,
			Amount:       item.Amount,
		})
	}

	updated := &entities.Recipe{
		ID:          existing.ID,
		AuthorID:    existing.AuthorID,
		Name:        name,
		Text:        text,
		CookingTime: cookingTime,
		Image:       imageURL,
		Ingredients: rows,
	}

	if err := s.recipeRepository.UpdateRecipeWithRelations(ctx, updated, tags); err != nil {
		return domain.RecipeResponse{}, err
	}

	return s.GetRecipeDetail(ctx, recipeID, callerID)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, recipeID, callerID uint) error {
	existing, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		return err
	}
	if existing.AuthorID != callerID {
		return domain.ErrUserNotAllowed
	}
	return s.recipeRepository.DeleteRecipe(ctx, recipeID)
}

func (s *recipeService) GetRecipeDetail(ctx context.Context, recipeID, viewerID uint) (domain.RecipeResponse, error) {
	r, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	return s.toRecipeResponse(ctx, r, viewerID)
}

func (s *recipeService) GetRecipes(ctx context.Context, filter domain.RecipeFilter, viewerID uint) (domain.RecipeListResponse, error) {
	// Anonymous viewers asking for viewer-relative filters get an empty
	// page, not an error.
	if (filter.IsFavorited || filter.IsInShoppingCart) && viewerID == 0 {
		return domain.RecipeListResponse{Recipes: []domain.RecipeResponse{}}, nil
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}

	recipes, count, err := s.recipeRepository.GetRecipes(ctx, filter, viewerID)
	if err != nil {
		return domain.RecipeListResponse{}, err
	}

	result := make([]domain.RecipeResponse, 0, len(recipes))
	for _, r := range recipes {
		res, err := s.toRecipeResponse(ctx, r, viewerID)
		if err != nil {
			return domain.RecipeListResponse{}, err
		}
		result = append(result, res)
	}

	return domain.RecipeListResponse{Recipes: result, Total: count}, nil
}

func (s *recipeService) FavoriteRecipe(ctx context.Context, recipeID, userID uint) (domain.ShortRecipeResponse, error) {
	r, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		return domain.ShortRecipeResponse{}, err
	}
	if _, err := s.favorites.Add(ctx, userID, recipeID); err != nil {
		return domain.ShortRecipeResponse{}, err
	}
	return toShortRecipeResponse(r), nil
}

func (s *recipeService) UnfavoriteRecipe(ctx context.Context, recipeID, userID uint) error {
	if _, err := s.recipeRepository.GetRecipeByID(ctx, recipeID); err != nil {
		return err
	}
	return s.favorites.Remove(ctx, userID, recipeID)
}

func (s *recipeService) AddToCart(ctx context.Context, recipeID, userID uint) (domain.ShortRecipeResponse, error) {
	r, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		return domain.ShortRecipeResponse{}, err
	}
	if _, err := s.cart.Add(ctx, userID, recipeID); err != nil {
		return domain.ShortRecipeResponse{}, err
	}
	return toShortRecipeResponse(r), nil
}

func (s *recipeService) RemoveFromCart(ctx context.Context, recipeID, userID uint) error {
	if _, err := s.recipeRepository.GetRecipeByID(ctx, recipeID); err != nil {
		return err
	}
	return s.cart.Remove(ctx, userID, recipeID)
}

func (s *recipeService) GetShoppingList(ctx context.Context, userID uint) ([]domain.ShoppingListItem, error) {
	return s.recipeRepository.GetCartIngredientTotals(ctx, userID)
}

func (s *recipeService) GetShortLink(ctx context.Context, recipeID uint) (domain.ShortLinkResponse, error) {
	r, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		return domain.ShortLinkResponse{}, err
	}
	return domain.ShortLinkResponse{
		ShortLink: fmt.Sprintf("%s/s/%d", utils.GetConfig("APP_URL"), r.ID),
	}, nil
}

func (s *recipeService) toRecipeResponse(ctx context.Context, r *entities.Recipe, viewerID uint) (domain.RecipeResponse, error) {
	ingredients := make([]domain.RecipeIngredientResponse, 0, len(r.Ingredients))
	for _, row := range r.Ingredients {
		res := domain.RecipeIngredientResponse{
			ID:     row.IngredientID,
			Amount: row.Amount,
		}
		if row.Ingredient != nil {
			res.Name = row.Ingredient.Name
			res.MeasurementUnit = row.Ingredient.MeasurementUnit
		}
		ingredients = append(ingredients, res)
	}

	tags := make([]domain.TagResponse, 0, len(r.Tags))
	for _, t := range r.Tags {
		tags = append(tags, domain.TagResponse{ID: t.ID, Name: t.Name, Slug: t.Slug})
	}

	response := domain.RecipeResponse{
		ID:          r.ID,
		Tags:        tags,
		Ingredients: ingredients,
		Name:        r.Name,
		Image:       r.Image,
		Text:        r.Text,
		CookingTime: r.CookingTime,
	}

	if r.Author != nil {
		response.Author = domain.UserResponse{
			ID:        r.Author.ID,
			Email:     r.Author.Email,
			Username:  r.Author.Username,
			FirstName: r.Author.FirstName,
			LastName:  r.Author.LastName,
			Avatar:    r.Author.Avatar,
		}
	}

	// Viewer-relative flags stay false for anonymous viewers.
	if viewerID != 0 {
		isFavorited, err := s.favorites.Exists(ctx, viewerID, r.ID)
		if err != nil {
			return domain.RecipeResponse{}, err
		}
		response.IsFavorited = isFavorited

		inCart, err := s.cart.Exists(ctx, viewerID, r.ID)
		if err != nil {
			return domain.RecipeResponse{}, err
		}
		response.IsInShoppingCart = inCart

		if r.Author != nil && r.Author.ID != viewerID {
			isSubscribed, err := s.subscriptions.Exists(ctx, viewerID, r.Author.ID)
			if err != nil {
				return domain.RecipeResponse{}, err
			}
			response.Author.IsSubscribed = isSubscribed
		}
	}

	return response, nil
}

func toShortRecipeResponse(r *entities.Recipe) domain.ShortRecipeResponse {
	return domain.ShortRecipeResponse{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		CookingTime: r.CookingTime,
	}
}
