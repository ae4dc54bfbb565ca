package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	middleware "pmes/middlewares"
	"pmes/models"
	service "pmes/services"
	"pmes/utils"
)

type WorkerPlanHandler struct {
	service service.WorkerPlanService
}

func NewWorkerPlanHandler(service service.WorkerPlanService) *WorkerPlanHandler {
	return &WorkerPlanHandler{
		service: service,
	}
}

func (h *WorkerPlanHandler) GetWorkerPlans(w http.ResponseWriter, r *http.Request) {
	query, err := parsePlanQuery(r.URL.Query())
	if err != nil {
		utils.HandleMessageResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	callerID, _ := middleware.GetUserIDFromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	rows, err := h.service.GetWorkerPlans(ctx, callerID, query)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, rows)
}

func (h *WorkerPlanHandler) GetCeoWorkerPlans(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.HandleMessageResponse(w, "Access denied", http.StatusForbidden)
		return
	}

	query, err := parsePlanQuery(r.URL.Query())
	if err != nil {
		utils.HandleMessageResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	rows, err := h.service.GetCeoWorkerPlans(ctx, callerID, query)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, rows)
}

func parsePlanQuery(values url.Values) (service.PlanQuery, error) {
	query := service.PlanQuery{
		WorkerID: objectIDOrZero(values.Get("workerId")),
		KpiID:    objectIDOrZero(values.Get("kpiId")),
	}
	if raw := values.Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return query, errBadQuery("Invalid year")
		}
		query.Year = year
	}
	if raw := values.Get("quarter"); raw != "" {
		quarter, ok := models.ParseQuarter(raw)
		if !ok {
			return query, errBadQuery("Invalid quarter")
		}
		query.Quarter = quarter
	}
	return query, nil
}

type errBadQuery string

func (e errBadQuery) Error() string { return string(e) }
