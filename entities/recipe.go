package entities

import (
	"time"
)

type Recipe struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	AuthorID    uint      `gorm:"uniqueIndex:idx_recipe_name_author" json:"author_id"`
	Name        string    `gorm:"size:200;uniqueIndex:idx_recipe_name_author" json:"name"`
	Text        string    `gorm:"type:text" json:"text"`
	CookingTime int       `json:"cooking_time"`
	Image       string    `json:"image,omitempty"`
	CreatedAt   time.Time `gorm:"type:timestamp" json:"created_at"`

	Author      *User              `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
	Tags        []Tag              `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE" json:"-"`
}

// RecipeIngredient carries the per-pairing amount; one ingredient appears
// at most once per recipe.
type RecipeIngredient struct {
	ID           uint `gorm:"primarykey" json:"id"`
	RecipeID     uint `gorm:"uniqueIndex:idx_recipe_ingredient" json:"recipe_id"`
	IngredientID uint `gorm:"uniqueIndex:idx_recipe_ingredient" json:"ingredient_id"`
	Amount       int  `json:"amount"`

	Recipe     *Recipe     `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
	Ingredient *Ingredient `gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE" json:"-"`
}

type Favorite struct {
	ID       uint `gorm:"primarykey" json:"id"`
	UserID   uint `gorm:"uniqueIndex:idx_favorite_pair" json:"user_id"`
	RecipeID uint `gorm:"uniqueIndex:idx_favorite_pair" json:"recipe_id"`

	User   *User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Recipe *Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
	Timestamp
}

type CartItem struct {
	ID       uint `gorm:"primarykey" json:"id"`
	UserID   uint `gorm:"uniqueIndex:idx_cart_pair" json:"user_id"`
	RecipeID uint `gorm:"uniqueIndex:idx_cart_pair" json:"recipe_id"`

	User   *User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Recipe *Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
	Timestamp
}
