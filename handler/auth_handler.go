package handler

import (
	"errors"
	"net/http"
	"studylab-api/common"
	"studylab-api/logger"
	"studylab-api/model"
	"studylab-api/service"
)

type AuthHandler struct {
	service *service.AuthService
}

func NewAuthHandler(service *service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Register godoc
// @Summary      Register a new user
// @Description  Creates an account and returns the user with a fresh token pair.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body model.RegisterRequest true "Registration details"
// @Success      201  {object}  model.AuthResponse
// @Failure      400  {object}  common.AppError
// @Failure      409  {object}  common.AppError
// @Router       /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RegisterRequest
	if appErr := common.ValidateAndDecode(w, r, &req); appErr != nil {
		return appErr
	}

	res, err := h.service.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		return authError(err)
	}

	common.WriteJSON(w, http.StatusCreated, model.AuthResponse{
		User:         res.User,
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
	})
	return nil
}

// Login godoc
// @Summary      Log in
// @Description  Verifies credentials and opens a new session.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body model.LoginRequest true "Credentials"
// @Success      200  {object}  model.AuthResponse
// @Failure      400  {object}  common.AppError
// @Failure      401  {object}  common.AppError
// @Router       /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.LoginRequest
	if appErr := common.ValidateAndDecode(w, r, &req); appErr != nil {
		return appErr
	}

	res, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		return authError(err)
	}

	logger.Log.WithField("user_id", res.User.ID).Info("User logged in")
	common.WriteJSON(w, http.StatusOK, model.AuthResponse{
		User:         res.User,
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
	})
	return nil
}

// Refresh godoc
// @Summary      Refresh the access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body model.RefreshRequest true "Refresh token"
// @Success      200  {object}  model.RefreshResponse
// @Failure      400  {object}  common.AppError
// @Failure      401  {object}  common.AppError
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RefreshRequest
	if appErr := common.DecodeJSON(w, r, &req); appErr != nil {
		return appErr
	}

	res, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		return authError(err)
	}

	common.WriteJSON(w, http.StatusOK, model.RefreshResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
	})
	return nil
}

// Logout godoc
// @Summary      Log out
// @Description  Revokes the given refresh token. Succeeds even if the token is unknown.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body model.RefreshRequest true "Refresh token"
// @Success      200  {object}  model.MessageResponse
// @Failure      400  {object}  common.AppError
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RefreshRequest
	if appErr := common.DecodeJSON(w, r, &req); appErr != nil {
		return appErr
	}

	if err := h.service.Logout(r.Context(), req.RefreshToken); err != nil {
		return authError(err)
	}

	common.WriteJSON(w, http.StatusOK, model.MessageResponse{Message: "Logged out"})
	return nil
}

// Me godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  model.UserResponse
// @Failure      401  {object}  common.AppError
// @Router       /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) *common.AppError {
	user, ok := UserFromContext(r.Context())
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Unauthorized", nil)
	}
	common.WriteJSON(w, http.StatusOK, model.UserResponse{User: user})
	return nil
}

// authError maps session errors to fixed status and message pairs.
func authError(err error) *common.AppError {
	switch {
	case errors.Is(err, service.ErrValidation):
		return common.NewAppError(http.StatusBadRequest, "Validation failed", err)
	case errors.Is(err, service.ErrDuplicateEmail):
		return common.NewAppError(http.StatusConflict, "Email already registered", err)
	case errors.Is(err, service.ErrInvalidCredentials):
		return common.NewAppError(http.StatusUnauthorized, "Invalid credentials", err)
	case errors.Is(err, service.ErrMissingToken):
		return common.NewAppError(http.StatusBadRequest, "Missing refreshToken", err)
	case errors.Is(err, service.ErrInvalidToken):
		return common.NewAppError(http.StatusUnauthorized, "Invalid or expired refresh token", err)
	case errors.Is(err, service.ErrRevokedToken):
		return common.NewAppError(http.StatusUnauthorized, "Revoked token", err)
	default:
		return common.NewAppError(http.StatusInternalServerError, "Internal server error", err)
	}
}
