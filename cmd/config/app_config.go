package config

import (
	"os"
	"time"

	"github.com/PavelDubrovin93/foodgram/entities"
	"github.com/PavelDubrovin93/foodgram/internal/api/handlers"
	"github.com/PavelDubrovin93/foodgram/internal/api/routes"
	"github.com/PavelDubrovin93/foodgram/internal/middleware"
	"github.com/PavelDubrovin93/foodgram/internal/utils"
	"github.com/PavelDubrovin93/foodgram/internal/utils/storage"
	"github.com/PavelDubrovin93/foodgram/pkg/ingredient"
	"github.com/PavelDubrovin93/foodgram/pkg/jwt"
	"github.com/PavelDubrovin93/foodgram/pkg/membership"
	"github.com/PavelDubrovin93/foodgram/pkg/recipe"
	"github.com/PavelDubrovin93/foodgram/pkg/tag"
	"github.com/PavelDubrovin93/foodgram/pkg/user"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"
)

func NewApp(db *gorm.DB) (*fiber.App, error) {
	utils.InitValidator()
	app := fiber.New(fiber.Config{
		EnablePrintRoutes: true,
	})
	middlewares := middleware.NewMiddleware()
	validator := utils.Validate

	// setting up logging and limiter
	err := os.MkdirAll("./logs", os.ModePerm)
	if err != nil {
		log.Fatalf("error creating logs directory: %v", err)
	}
	file, err := os.OpenFile(
		"./logs/app.log",
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		log.Fatalf("error opening file: %v", err)
	}
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Europe/Moscow",
		Output:     file,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Second,
	}))

	// utils
	s3 := storage.NewAwsS3()

	// Repository
	userRepository := user.NewUserRepository(db)
	ingredientRepository := ingredient.NewIngredientRepository(db)
	tagRepository := tag.NewTagRepository(db)
	recipeRepository := recipe.NewRecipeRepository(db)

	// Pair relations
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

	// Service
	jwtService := jwt.NewJWTService()
	ingredientService := ingredient.NewIngredientService(ingredientRepository)
	tagService := tag.NewTagService(tagRepository)
	recipeService := recipe.NewRecipeService(
		recipeRepository,
		ingredientRepository,
		tagRepository,
		favorites,
		cart,
		subscriptions,
		s3,
	)
	userService := user.NewUserService(
		userRepository,
		recipeRepository,
		subscriptions,
		jwtService,
		s3,
	)

	// Handler
	userHandler := handlers.NewUserHandler(userService, validator)
	ingredientHandler := handlers.NewIngredientHandler(ingredientService)
	tagHandler := handlers.NewTagHandler(tagService)
	recipeHandler := handlers.NewRecipeHandler(recipeService, validator)

	// routes
	routesConfig := routes.Config{
		App:               app,
		UserHandler:       userHandler,
		IngredientHandler: ingredientHandler,
		TagHandler:        tagHandler,
		RecipeHandler:     recipeHandler,
		Middleware:        middlewares,
		JWTService:        jwtService,
	}
	routesConfig.Setup()
	return app, nil
}
