package api

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipeshare/backend/internal/middleware"
	"github.com/pageza/recipeshare/backend/internal/service"
	"github.com/pageza/recipeshare/backend/internal/types"
)

const (
	defaultSimilarLimit = 6
	maxSimilarLimit     = 24
)

type RecipeHandler struct {
	recipes         service.IRecipeService
	recommendations service.IRecommendationService
	auth            Auth
	maxUpload       int64
}

func NewRecipeHandler(recipes service.IRecipeService, recommendations service.IRecommendationService, auth Auth, maxUpload int64) *RecipeHandler {
	return &RecipeHandler{
		recipes:         recipes,
		recommendations: recommendations,
		auth:            auth,
		maxUpload:       maxUpload,
	}
}

func (h *RecipeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	recipes := rg.Group("/recipes")

	public := h.auth.Identify(recipes)
	{
		public.GET("", h.ListRecipes)
		public.GET("/:id", h.GetRecipe)
		public.GET("/:id/similar", h.SimilarRecipes)
	}

	protected := h.auth.Protect(recipes)
	{
		protected.GET("/recommendations", h.Recommendations)
		protected.POST("", h.CreateRecipe)
		protected.PUT("/:id", h.UpdateRecipe)
		protected.DELETE("/:id", h.DeleteRecipe)
		protected.POST("/:id/favorite", h.FavoriteRecipe)
		protected.DELETE("/:id/favorite", h.UnfavoriteRecipe)
		protected.POST("/:id/rating", h.RateRecipe)
	}
}

// ListRecipes serves GET /recipes?q=&category=&sort=
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	list, err := h.recipes.List(c.Request.Context(), types.ListQuery{
		Q:        c.Query("q"),
		Category: c.Query("category"),
		Sort:     c.Query("sort"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ItemsResponse{Items: service.ToViews(list, middleware.Viewer(c))})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := pathID(c, "id", errNotFound)
	if !ok {
		return
	}

	recipe, err := h.recipes.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, service.ToView(recipe, middleware.Viewer(c)))
}

// SimilarRecipes serves GET /recipes/:id/similar?limit=
func (h *RecipeHandler) SimilarRecipes(c *gin.Context) {
	id, ok := pathID(c, "id", errNotFound)
	if !ok {
		return
	}

	limit := defaultSimilarLimit
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			respondError(c, errInvalidLimit)
			return
		}
		limit = min(n, maxSimilarLimit)
	}

	list, err := h.recipes.Similar(c.Request.Context(), id, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ItemsResponse{Items: service.ToViews(list, middleware.Viewer(c))})
}

// Recommendations returns a bare array, unlike the other listings
func (h *RecipeHandler) Recommendations(c *gin.Context) {
	viewer := middleware.Viewer(c)
	list, err := h.recommendations.For(c.Request.Context(), *viewer)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, service.ToViews(list, viewer))
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	in, upload, err := readRecipeInput(c, h.maxUpload)
	if err != nil {
		respondError(c, err)
		return
	}

	recipe, err := h.recipes.Create(c.Request.Context(), userID, in, upload)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, CreatedResponse{ID: recipe.ID.String()})
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := pathID(c, "id", errNotFound)
	if !ok {
		return
	}
	userID, _ := middleware.UserID(c)

	in, upload, err := readRecipeInput(c, h.maxUpload)
	if err != nil {
		respondError(c, err)
		return
	}

	recipe, err := h.recipes.Update(c.Request.Context(), id, userID, in, upload)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, service.ToView(recipe, &userID))
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := pathID(c, "id", errNotFound)
	if !ok {
		return
	}
	userID, _ := middleware.UserID(c)

	if err := h.recipes.Delete(c.Request.Context(), id, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, OKResponse{OK: true})
}

func (h *RecipeHandler) FavoriteRecipe(c *gin.Context) {
	id, ok := pathID(c, "id", errNotFound)
	if !ok {
		return
	}
	userID, _ := middleware.UserID(c)

	if err := h.recipes.AddFavorite(c.Request.Context(), id, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, OKResponse{OK: true})
}

func (h *RecipeHandler) UnfavoriteRecipe(c *gin.Context) {
	id, ok := pathID(c, "id", errNotFound)
	if !ok {
		return
	}
	userID, _ := middleware.UserID(c)

	if err := h.recipes.RemoveFavorite(c.Request.Context(), id, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, OKResponse{OK: true})
}

// RateRecipe accepts {"value": n} where n is a number or numeric string
func (h *RecipeHandler) RateRecipe(c *gin.Context) {
	id, ok := pathID(c, "id", errNotFound)
	if !ok {
		return
	}
	userID, _ := middleware.UserID(c)

	var req struct {
		Value any `json:"value"`
	}
	if !bindJSON(c, &req) {
		return
	}
	value, ok := ratingValue(req.Value)
	if !ok {
		respondError(c, service.ErrInvalidRating)
		return
	}

	if err := h.recipes.Rate(c.Request.Context(), id, userID, value); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, OKResponse{OK: true})
}

// ratingValue converts a decoded JSON value into a whole-star rating
func ratingValue(v any) (int, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		parsed, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if f != math.Trunc(f) || f < service.MinRating || f > service.MaxRating {
		return 0, false
	}
	return int(f), true
}
