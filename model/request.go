// file: model/request.go

package model

// RegisterRequest defines the payload for creating a new user.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Name     string `json:"name" validate:"max=100"`
}

// LoginRequest defines the payload for user authentication.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest is shared by the refresh and logout endpoints.
// Presence of the token is checked by the session service so both
// endpoints report a missing token the same way.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type CreateHistoryRequest struct {
	Sources []Source   `json:"sources" validate:"required,min=1,dive"`
	Summary string     `json:"summary" validate:"required,min=10"`
	Quiz    []QuizItem `json:"quiz" validate:"omitempty,dive"`
}
