package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipeshare/backend/internal/middleware"
	"github.com/pageza/recipeshare/backend/internal/service"
	"github.com/pageza/recipeshare/backend/internal/types"
)

// UserHandler serves the signed-in user's account and their recipe lists
type UserHandler struct {
	users   service.IUserService
	recipes service.IRecipeService
	auth    Auth
}

func NewUserHandler(users service.IUserService, recipes service.IRecipeService, auth Auth) *UserHandler {
	return &UserHandler{users: users, recipes: recipes, auth: auth}
}

func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	me := h.auth.Protect(rg.Group("/users/me"))
	{
		me.GET("", h.GetMe)
		me.PUT("", h.UpdateMe)
		me.DELETE("", h.DeleteMe)
		me.GET("/recipes", h.MyRecipes)
		me.GET("/favorites", h.MyFavorites)
	}
}

func (h *UserHandler) GetMe(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	user, err := h.users.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userView(user))
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var req types.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userView(user))
}

func (h *UserHandler) DeleteMe(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	if err := h.users.DeleteAccount(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, OKResponse{OK: true})
}

func (h *UserHandler) MyRecipes(c *gin.Context) {
	viewer := middleware.Viewer(c)

	list, err := h.recipes.ListOwned(c.Request.Context(), *viewer)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ItemsResponse{Items: service.ToViews(list, viewer)})
}

func (h *UserHandler) MyFavorites(c *gin.Context) {
	viewer := middleware.Viewer(c)

	list, err := h.recipes.ListFavorites(c.Request.Context(), *viewer)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ItemsResponse{Items: service.ToViews(list, viewer)})
}
