package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pageza/recipeshare/backend/internal/apperrors"
)

var (
	errInvalidBody  = apperrors.Validation("Invalid request body")
	errNotFound     = apperrors.NotFound("Not found")
	errInvalidLimit = apperrors.Validation("limit must be a positive number")
)

// respondError writes err as {"message": ...} with its mapped status. Extra
// fields on domain errors are merged into the body. Anything that is not a
// domain error is logged and reported as a generic 500.
func respondError(c *gin.Context, err error) {
	logger := zerolog.Ctx(c.Request.Context())

	appErr, ok := apperrors.As(err)
	if !ok || appErr.Code == apperrors.CodeInternal {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
	}
	if !ok {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	body := gin.H{"message": appErr.Message}
	for k, v := range appErr.Fields {
		body[k] = v
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus(), body)
}

// bindJSON decodes the request body into dst, answering 400 on malformed input
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, errInvalidBody)
		return false
	}
	return true
}

// pathID parses the named path parameter. Malformed ids answer with
// notFound since no such resource can exist.
func pathID(c *gin.Context, name string, notFound error) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondError(c, notFound)
		return uuid.Nil, false
	}
	return id, true
}
