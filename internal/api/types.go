package api

import "github.com/pageza/recipeshare/backend/internal/types"

// ItemsResponse wraps recipe listings
type ItemsResponse struct {
	Items []types.RecipeView `json:"items"`
}

// OKResponse acknowledges a mutation with no other payload
type OKResponse struct {
	OK bool `json:"ok"`
}

// MessageResponse carries a human-readable confirmation
type MessageResponse struct {
	Message string `json:"message"`
}

// CreatedResponse returns the id of a newly created resource
type CreatedResponse struct {
	ID string `json:"id"`
}
