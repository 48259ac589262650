package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"log"
	"os"

	"github.com/PavelDubrovin93/foodgram/cmd/config"
	migration "github.com/PavelDubrovin93/foodgram/cmd/database/migrate"
	"github.com/PavelDubrovin93/foodgram/entities"
	"github.com/PavelDubrovin93/foodgram/internal/utils"
	"github.com/PavelDubrovin93/foodgram/pkg/ingredient"
)

// Loads the ingredient catalog from a CSV of "name,measurement_unit"
// rows, the format the frontend fixtures ship in.
func main() {
	path := flag.String("ingredients", "data/ingredients.csv", "path to the ingredients CSV file")
	flag.Parse()

	utils.LoadConfig()

	db, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	if err := migration.Migrate(db); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}

	file, err := os.Open(*path)
	if err != nil {
		log.Fatalf("Error opening %s: %v", *path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = 2

	var rows []*entities.Ingredient
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("Error reading %s: %v", *path, err)
		}
		rows = append(rows, &entities.Ingredient{
			Name:            record[0],
			MeasurementUnit: record[1],
		})
	}

	repo := ingredient.NewIngredientRepository(db)
	if err := repo.BulkCreateIngredients(context.Background(), rows); err != nil {
		log.Fatalf("Error seeding ingredients: %v", err)
	}
	log.Printf("Seeded %d ingredients", len(rows))
}
