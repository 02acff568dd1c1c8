package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipeshare/backend/internal/middleware"
	"github.com/pageza/recipeshare/backend/internal/models"
	"github.com/pageza/recipeshare/backend/internal/service"
	"github.com/pageza/recipeshare/backend/internal/types"
)

type CommentHandler struct {
	comments service.ICommentService
	auth     Auth
}

func NewCommentHandler(comments service.ICommentService, auth Auth) *CommentHandler {
	return &CommentHandler{comments: comments, auth: auth}
}

func (h *CommentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	comments := rg.Group("/comments")
	comments.GET("/recipe/:id", h.ListComments)

	protected := h.auth.Protect(comments)
	{
		protected.POST("/recipe/:id", h.CreateComment)
		protected.DELETE("/:id", h.DeleteComment)
	}
}

// ListComments returns the recipe's comments newest first. An unknown
// recipe simply has none.
func (h *CommentHandler) ListComments(c *gin.Context) {
	recipeID, ok := pathID(c, "id", errNotFound)
	if !ok {
		return
	}

	comments, err := h.comments.ListForRecipe(c.Request.Context(), recipeID)
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]types.CommentView, len(comments))
	for i := range comments {
		views[i] = commentView(&comments[i])
	}
	c.JSON(http.StatusOK, views)
}

func (h *CommentHandler) CreateComment(c *gin.Context) {
	recipeID, ok := pathID(c, "id", errNotFound)
	if !ok {
		return
	}
	userID, _ := middleware.UserID(c)

	var req types.CommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.comments.Create(c.Request.Context(), recipeID, userID, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, commentView(comment))
}

func (h *CommentHandler) DeleteComment(c *gin.Context) {
	commentID, ok := pathID(c, "id", service.ErrCommentNotFound)
	if !ok {
		return
	}
	userID, _ := middleware.UserID(c)

	if err := h.comments.Delete(c.Request.Context(), commentID, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, OKResponse{OK: true})
}

func commentView(cm *models.Comment) types.CommentView {
	return types.CommentView{
		ID:        cm.ID,
		RecipeID:  cm.RecipeID,
		Text:      cm.Text,
		CreatedAt: cm.CreatedAt,
		User:      userView(&cm.User),
	}
}
