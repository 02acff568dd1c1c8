// Package seed generates demo data for local development.
package seed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/url"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/recipeshare/backend/internal/models"
	"github.com/pageza/recipeshare/backend/internal/service"
)

var (
	adjectives   = []string{"Spicy", "Creamy", "Zesty", "Savory", "Crispy", "Smoky", "Tangy", "Sweet", "Hearty", "Fresh"}
	cuisines     = []string{"Italian", "Mexican", "Thai", "Indian", "French", "American", "Japanese", "Greek", "Spanish", "Korean"}
	dishes       = []string{"Pasta", "Salad", "Soup", "Curry", "Stir Fry", "Tacos", "Sandwich", "Stew", "Noodles", "Rice Bowl"}
	ingredients  = []string{"Chicken", "Beef", "Pork", "Tofu", "Mushrooms", "Onion", "Garlic", "Tomato", "Bell Pepper", "Carrot", "Zucchini", "Spinach", "Basil", "Cheese", "Eggs", "Milk", "Cream", "Butter", "Olive Oil", "Rice", "Pasta", "Noodles", "Beans", "Lentils", "Chili"}
	steps        = []string{"Prep ingredients", "Heat pan", "Add oil", "Sauté aromatics", "Add protein", "Stir in veggies", "Season generously", "Simmer until tender", "Adjust seasoning", "Plate and garnish"}
	categories   = []string{"breakfast", "lunch", "dinner"}
	difficulties = []string{"easy", "medium", "hard"}
)

// maxAge bounds how far back seeded creation times go
const maxAge = 60 * 24 * time.Hour

// Recipes builds n unowned recipes with random titles, ingredients and steps.
// Their averages are random and they carry no rating rows.
func Recipes(rng *rand.Rand, n int, now time.Time) []models.Recipe {
	recipes := make([]models.Recipe, 0, n)
	for i := 0; i < n; i++ {
		title := fmt.Sprintf("%s %s %s", pick(rng, adjectives), pick(rng, cuisines), pick(rng, dishes))

		pool := append([]string(nil), ingredients...)
		rng.Shuffle(len(pool), func(a, b int) { pool[a], pool[b] = pool[b], pool[a] })
		ings := pool[:between(rng, 5, 9)]

		instr := make([]string, between(rng, 4, 7))
		for j := range instr {
			instr[j] = fmt.Sprintf("%d. %s", j+1, pick(rng, steps))
		}

		imageSeed := url.PathEscape(fmt.Sprintf("%s-%d-%d", strings.ToLower(strings.ReplaceAll(title, " ", "-")), i, now.UnixMilli()))
		cookingTime := between(rng, 5, 120)

		r := models.Recipe{
			Title:        title,
			Category:     pick(rng, categories),
			Difficulty:   pick(rng, difficulties),
			CookingTime:  &cookingTime,
			Ingredients:  ings,
			Instructions: instr,
			ImageURL:     "https://picsum.photos/seed/" + imageSeed + "/800/600",
			ThumbURL:     "https://picsum.photos/seed/" + imageSeed + "/480/360",
			AvgRating:    float64(rng.IntN(51)) / 10,
			CreatedAt:    now.Add(-time.Duration(rng.Int64N(int64(maxAge)))),
		}
		embedding := service.EmbedRecipe(&r)
		r.Embedding = &embedding
		recipes = append(recipes, r)
	}
	return recipes
}

// InsertRecipes writes recipes in batches
func InsertRecipes(ctx context.Context, db *gorm.DB, recipes []models.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}
	return db.WithContext(ctx).Omit(clause.Associations).CreateInBatches(recipes, 100).Error
}

// DemoUser describes an account created by Users
type DemoUser struct {
	Name     string
	Email    string
	Verified bool
}

// DemoUsers is a mix of verified and unverified accounts
var DemoUsers = []DemoUser{
	{Name: "John Doe", Email: "john.doe@example.com", Verified: true},
	{Name: "Jane Smith", Email: "jane.smith@example.com", Verified: true},
	{Name: "Bob Wilson", Email: "bob.wilson@example.com", Verified: false},
	{Name: "Test Verified", Email: "verified@example.com", Verified: true},
	{Name: "Test Unverified", Email: "unverified@example.com", Verified: false},
}

// InsertUsers creates the demo accounts with password, skipping emails
// that already exist. It returns the number of accounts created.
func InsertUsers(ctx context.Context, db *gorm.DB, users []DemoUser, password string, cost int) (int, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	created := 0
	for _, u := range users {
		user := models.User{
			Name:            u.Name,
			Email:           service.NormalizeEmail(u.Email),
			PasswordHash:    string(hash),
			IsEmailVerified: u.Verified,
		}
		res := db.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
			Create(&user)
		if res.Error != nil {
			return created, fmt.Errorf("create %s: %w", u.Email, res.Error)
		}
		created += int(res.RowsAffected)
	}
	return created, nil
}

func pick(rng *rand.Rand, list []string) string {
	return list[rng.IntN(len(list))]
}

// between returns a random int in [lo, hi]
func between(rng *rand.Rand, lo, hi int) int {
	return lo + rng.IntN(hi-lo+1)
}
