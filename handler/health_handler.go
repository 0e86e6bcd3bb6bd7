package handler

import (
	"net/http"
	"studylab-api/common"
	"studylab-api/model"
	"time"
)

// HealthCheck godoc
// @Summary      Show the status of server
// @Description  get the status of server
// @Tags         health
// @Produce      json
// @Success      200  {object}  model.HealthResponse
// @Router       /health [get]
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	common.WriteJSON(w, http.StatusOK, model.HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC(),
	})
}
