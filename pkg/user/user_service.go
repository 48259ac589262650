package user

import (
	"context"

	"github.com/PavelDubrovin93/foodgram/domain"
	"github.com/PavelDubrovin93/foodgram/entities"
	"github.com/PavelDubrovin93/foodgram/internal/utils/storage"
	"github.com/PavelDubrovin93/foodgram/pkg/jwt"
	"github.com/PavelDubrovin93/foodgram/pkg/membership"
	"github.com/PavelDubrovin93/foodgram/pkg/recipe"
	"golang.org/x/crypto/bcrypt"
)

type (
	UserService interface {
		Register(ctx context.Context, req domain.RegisterRequest) (domain.UserResponse, error)
		Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error)
		Me(ctx context.Context, userID uint) (domain.UserResponse, error)
		GetUserDetail(ctx context.Context, userID, viewerID uint) (domain.UserResponse, error)
		SetAvatar(ctx context.Context, userID uint, req domain.SetAvatarRequest) (domain.SetAvatarResponse, error)
		DeleteAvatar(ctx context.Context, userID uint) error
		Subscribe(ctx context.Context, subscriberID, subscribedToID uint, recipesLimit int) (domain.SubscriptionResponse, error)
		Unsubscribe(ctx context.Context, subscriberID, subscribedToID uint) error
		GetSubscriptions(ctx context.Context, userID uint, page, limit, recipesLimit int) (domain.SubscriptionListResponse, error)
	}

	userService struct {
		userRepository   UserRepository
		recipeRepository recipe.RecipeRepository
		subscriptions    membership.Store[entities.Subscription]
		jwtService       jwt.JWTService
		s3               storage.AwsS3
	}
)

func NewUserService(
	userRepository UserRepository,
	recipeRepository recipe.RecipeRepository,
	subscriptions membership.Store[entities.Subscription],
	jwtService jwt.JWTService,
	s3 storage.AwsS3,
) UserService {
	return &userService{
		userRepository:   userRepository,
		recipeRepository: recipeRepository,
		subscriptions:    subscriptions,
		jwtService:       jwtService,
		s3:               s3,
	}
}

func (s *userService) Register(ctx context.Context, req domain.RegisterRequest) (domain.UserResponse, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.UserResponse{}, err
	}

	newUser := &entities.User{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  string(hashed),
	}
	if err := s.userRepository.RegisterUser(ctx, newUser); err != nil {
		return domain.UserResponse{}, err
	}

	return toUserResponse(newUser, false), nil
}

func (s *userService) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	u, err := s.userRepository.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return domain.LoginResponse{}, domain.ErrCredentialsInvalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)); err != nil {
		return domain.LoginResponse{}, domain.ErrCredentialsInvalid
	}
	return domain.LoginResponse{AuthToken: s.jwtService.GenerateTokenUser(u.ID)}, nil
}

func (s *userService) Me(ctx context.Context, userID uint) (domain.UserResponse, error) {
	u, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		return domain.UserResponse{}, err
	}
	return toUserResponse(u, false), nil
}

func (s *userService) GetUserDetail(ctx context.Context, userID, viewerID uint) (domain.UserResponse, error) {
	u, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		return domain.UserResponse{}, err
	}

	isSubscribed := false
	if viewerID != 0 && viewerID != userID {
		isSubscribed, err = s.subscriptions.Exists(ctx, viewerID, userID)
		if err != nil {
			return domain.UserResponse{}, err
		}
	}
	return toUserResponse(u, isSubscribed), nil
}

func (s *userService) SetAvatar(ctx context.Context, userID uint, req domain.SetAvatarRequest) (domain.SetAvatarResponse, error) {
	u, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		return domain.SetAvatarResponse{}, err
	}

	if !storage.IsBase64Payload(req.Avatar) {
		return domain.SetAvatarResponse{}, domain.NewValidationError("avatar", "invalid image payload")
	}
	objectKey, err := s.s3.UploadBase64(ctx, req.Avatar, "avatars")
	if err != nil {
		return domain.SetAvatarResponse{}, domain.NewValidationError("avatar", "invalid image payload")
	}

	u.Avatar = s.s3.GetPublicLinkKey(objectKey)
	if err := s.userRepository.UpdateUser(ctx, u); err != nil {
		return domain.SetAvatarResponse{}, err
	}
	return domain.SetAvatarResponse{Avatar: u.Avatar}, nil
}

func (s *userService) DeleteAvatar(ctx context.Context, userID uint) error {
	u, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	u.Avatar = ""
	return s.userRepository.UpdateUser(ctx, u)
}

func (s *userService) Subscribe(ctx context.Context, subscriberID, subscribedToID uint, recipesLimit int) (domain.SubscriptionResponse, error) {
	author, err := s.userRepository.GetUserByID(ctx, subscribedToID)
	if err != nil {
		return domain.SubscriptionResponse{}, err
	}

	if _, err := s.subscriptions.Add(ctx, subscriberID, subscribedToID); err != nil {
		return domain.SubscriptionResponse{}, err
	}

	return s.buildSubscriptionEntry(ctx, author, recipesLimit)
}

func (s *userService) Unsubscribe(ctx context.Context, subscriberID, subscribedToID uint) error {
	if _, err := s.userRepository.GetUserByID(ctx, subscribedToID); err != nil {
		return err
	}
	return s.subscriptions.Remove(ctx, subscriberID, subscribedToID)
}

func (s *userService) GetSubscriptions(ctx context.Context, userID uint, page, limit, recipesLimit int) (domain.SubscriptionListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	authors, count, err := s.userRepository.GetSubscribedAuthors(ctx, userID, page, limit)
	if err != nil {
		return domain.SubscriptionListResponse{}, err
	}

	entries := make([]domain.SubscriptionResponse, 0, len(authors))
	for _, author := range authors {
		entry, err := s.buildSubscriptionEntry(ctx, author, recipesLimit)
		if err != nil {
			return domain.SubscriptionListResponse{}, err
		}
		entries = append(entries, entry)
	}

	return domain.SubscriptionListResponse{Subscriptions: entries, Total: count}, nil
}

func (s *userService) buildSubscriptionEntry(ctx context.Context, author *entities.User, recipesLimit int) (domain.SubscriptionResponse, error) {
	recipes, err := s.recipeRepository.GetRecipesByAuthor(ctx, author.ID, recipesLimit)
	if err != nil {
		return domain.SubscriptionResponse{}, err
	}
	count, err := s.recipeRepository.CountRecipesByAuthor(ctx, author.ID)
	if err != nil {
		return domain.SubscriptionResponse{}, err
	}

	shortRecipes := make([]domain.ShortRecipeResponse, 0, len(recipes))
	for _, r := range recipes {
		shortRecipes = append(shortRecipes, domain.ShortRecipeResponse{
			ID:          r.ID,
			Name:        r.Name,
			Image:       r.Image,
			CookingTime: r.CookingTime,
		})
	}

	return domain.SubscriptionResponse{
		UserResponse: toUserResponse(author, true),
		RecipesCount: count,
		Recipes:      shortRecipes,
	}, nil
}

func toUserResponse(u *entities.User, isSubscribed bool) domain.UserResponse {
	return domain.UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: isSubscribed,
		Avatar:       u.Avatar,
	}
}
