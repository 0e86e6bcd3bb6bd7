package model

import "time"

type AuthResponse struct {
	User         PublicUser `json:"user"`
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
}

type RefreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

type UserResponse struct {
	User PublicUser `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}

type HistoryResponse struct {
	History *HistoryEntry `json:"history"`
}

type HistoryListResponse struct {
	History []*HistoryEntry `json:"history"`
}
