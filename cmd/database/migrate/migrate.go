package migration

import (
	"fmt"
	"log"

	"github.com/PavelDubrovin93/foodgram/entities"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\";")

	tables := []interface{}{
		&entities.User{},
		&entities.Subscription{},
		&entities.Ingredient{},
		&entities.Tag{},
		&entities.Recipe{},
		&entities.RecipeIngredient{},
		&entities.Favorite{},
		&entities.CartItem{},
	}
	for _, table := range tables {
		if err := db.AutoMigrate(table); err != nil {
			log.Fatalf("Error migrating database: %v", err)
			return err
		}
	}

	fmt.Println("Database migration complete")
	return nil
}
