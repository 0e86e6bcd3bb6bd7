package handler

import (
	"errors"
	"net/http"
	"studylab-api/common"
	"studylab-api/logger"
	"studylab-api/model"
	"studylab-api/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type HistoryHandler struct {
	service *service.HistoryService
}

func NewHistoryHandler(service *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{service: service}
}

// Create godoc
// @Summary      Save a study session
// @Tags         history
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body model.CreateHistoryRequest true "Study session"
// @Success      201  {object}  model.HistoryResponse
// @Failure      400  {object}  common.AppError
// @Failure      401  {object}  common.AppError
// @Router       /history [post]
func (h *HistoryHandler) Create(w http.ResponseWriter, r *http.Request) *common.AppError {
	user, ok := UserFromContext(r.Context())
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Unauthorized", nil)
	}

	var req model.CreateHistoryRequest
	if appErr := common.ValidateAndDecode(w, r, &req); appErr != nil {
		return appErr
	}

	entry, err := h.service.Create(r.Context(), user.ID, req)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return common.NewAppError(http.StatusBadRequest, "Validation failed", err)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not save history", err)
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id":    user.ID,
		"history_id": entry.ID,
	}).Info("History entry created")
	common.WriteJSON(w, http.StatusCreated, model.HistoryResponse{History: entry})
	return nil
}

// List godoc
// @Summary      List study sessions
// @Description  Returns up to 100 entries, newest first.
// @Tags         history
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  model.HistoryListResponse
// @Failure      401  {object}  common.AppError
// @Router       /history [get]
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) *common.AppError {
	user, ok := UserFromContext(r.Context())
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Unauthorized", nil)
	}

	entries, err := h.service.List(r.Context(), user.ID)
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not retrieve history", err)
	}

	common.WriteJSON(w, http.StatusOK, model.HistoryListResponse{History: entries})
	return nil
}

// Get godoc
// @Summary      Get a study session
// @Tags         history
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "History ID"
// @Success      200  {object}  model.HistoryResponse
// @Failure      400  {object}  common.AppError
// @Failure      404  {object}  common.AppError
// @Router       /history/{id} [get]
func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) *common.AppError {
	user, ok := UserFromContext(r.Context())
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Unauthorized", nil)
	}
	id, appErr := historyID(r)
	if appErr != nil {
		return appErr
	}

	entry, err := h.service.Get(r.Context(), user.ID, id)
	if err != nil {
		if errors.Is(err, service.ErrHistoryNotFound) {
			return common.NewAppError(http.StatusNotFound, "Not found", nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not retrieve history", err)
	}

	common.WriteJSON(w, http.StatusOK, model.HistoryResponse{History: entry})
	return nil
}

// Delete godoc
// @Summary      Delete a study session
// @Tags         history
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "History ID"
// @Success      200  {object}  model.MessageResponse
// @Failure      400  {object}  common.AppError
// @Failure      404  {object}  common.AppError
// @Router       /history/{id} [delete]
func (h *HistoryHandler) Delete(w http.ResponseWriter, r *http.Request) *common.AppError {
	user, ok := UserFromContext(r.Context())
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Unauthorized", nil)
	}
	id, appErr := historyID(r)
	if appErr != nil {
		return appErr
	}

	if err := h.service.Delete(r.Context(), user.ID, id); err != nil {
		if errors.Is(err, service.ErrHistoryNotFound) {
			return common.NewAppError(http.StatusNotFound, "Not found", nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not delete history", err)
	}

	common.WriteJSON(w, http.StatusOK, model.MessageResponse{Message: "Deleted"})
	return nil
}

func historyID(r *http.Request) (uuid.UUID, *common.AppError) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		appErr := common.NewAppError(http.StatusBadRequest, "Validation failed", err)
		appErr.Details = []common.FieldError{{Field: "id", Message: "must be a valid id"}}
		return uuid.Nil, appErr
	}
	return id, nil
}
