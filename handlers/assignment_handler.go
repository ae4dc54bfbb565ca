package handlers

import (
	"context"
	"net/http"
	"time"

	middleware "pmes/middlewares"
	"pmes/models"
	service "pmes/services"
	"pmes/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AssignmentHandler struct {
	service service.AssignmentService
}

func NewAssignmentHandler(service service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{
		service: service,
	}
}

type assignMeasureRequest struct {
	MeasureID string  `json:"measureId" validate:"required"`
	WorkerID  string  `json:"workerId" validate:"required"`
	Target    float64 `json:"target" validate:"required"`
	Year      int     `json:"year" validate:"required"`
	Quarter   string  `json:"quarter" validate:"required"`
}

func (h *AssignmentHandler) AssignMeasure(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.HandleMessageResponse(w, "Unauthorized: User not authenticated", http.StatusUnauthorized)
		return
	}

	var req assignMeasureRequest
	if err := utils.DecodeAndValidate(w, r, &req); err != nil {
		return
	}

	measureID, err := primitive.ObjectIDFromHex(req.MeasureID)
	if err != nil {
		utils.HandleMessageResponse(w, "Invalid measureId format", http.StatusBadRequest)
		return
	}
	workerID, err := primitive.ObjectIDFromHex(req.WorkerID)
	if err != nil {
		utils.HandleMessageResponse(w, "Invalid workerId format", http.StatusBadRequest)
		return
	}
	quarter, ok := models.ParseQuarter(req.Quarter)
	if !ok {
		utils.HandleMessageResponse(w, "Invalid quarter", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, err := h.service.AssignMeasure(ctx, actorID, service.AssignMeasureInput{
		MeasureID: measureID,
		WorkerID:  workerID,
		Target:    req.Target,
		Year:      req.Year,
		Quarter:   quarter,
	})
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, result)
}
