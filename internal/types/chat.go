package types

import (
	"github.com/go-playground/validator/v10"
)

// ChatMessage is a single turn of the assistant conversation.
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

// ChatRequest is a user message plus whatever page context the widget supplies.
type ChatRequest struct {
	Message string         `json:"message" validate:"required,max=4000"`
	History []ChatMessage  `json:"history,omitempty" validate:"max=50,dive"`
	Context map[string]any `json:"context,omitempty"`
}

// ChatResponse is the assistant reply rendered verbatim by the widget.
type ChatResponse struct {
	Reply    string `json:"reply"`
	Model    string `json:"model,omitempty"`
	Fallback bool   `json:"fallback"`
}

// Validate validates the ChatRequest using the validator.
func (r *ChatRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
