package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	middleware "pmes/middlewares"
	"pmes/models"
	service "pmes/services"
	"pmes/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	maxMultipartMemory = 32 << 20
	maxReportFileSize  = 10 << 20
)

type PerformanceHandler struct {
	service service.PerformanceService
}

func NewPerformanceHandler(service service.PerformanceService) *PerformanceHandler {
	return &PerformanceHandler{
		service: service,
	}
}

func (h *PerformanceHandler) SubmitPerformance(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		utils.HandleMessageResponse(w, "Failed to parse multipart form", http.StatusBadRequest)
		return
	}

	// The worker comes from the token when present, the form otherwise.
	workerID, _ := middleware.GetUserIDFromContext(r.Context())
	if workerID.IsZero() {
		workerID = objectIDOrZero(r.FormValue("workerId"))
	}

	measureID := objectIDOrZero(r.FormValue("measureId"))
	kpiID := objectIDOrZero(r.FormValue("kpiId"))
	sectorID := objectIDOrZero(r.FormValue("sectorId"))
	subsectorID := objectIDOrZero(r.FormValue("subsectorId"))
	year, _ := strconv.Atoi(r.FormValue("year"))

	rawValue := r.FormValue("value")
	if workerID.IsZero() || measureID.IsZero() || kpiID.IsZero() || year == 0 ||
		rawValue == "" || r.FormValue("quarter") == "" {
		utils.HandleMessageResponse(w, "Missing required fields", http.StatusBadRequest)
		return
	}

	value, err := strconv.ParseFloat(rawValue, 64)
	if err != nil {
		utils.HandleMessageResponse(w, "Invalid value", http.StatusBadRequest)
		return
	}
	quarter, ok := models.ParseQuarter(r.FormValue("quarter"))
	if !ok {
		utils.HandleMessageResponse(w, "Invalid quarter", http.StatusBadRequest)
		return
	}
	confirmed := strings.EqualFold(r.FormValue("confirmed"), "true")

	input := service.SubmitPerformanceInput{
		WorkerID:    workerID,
		MeasureID:   measureID,
		KpiID:       kpiID,
		SectorID:    sectorID,
		SubsectorID: subsectorID,
		Year:        year,
		Quarter:     quarter,
		Value:       value,
		Description: r.FormValue("description"),
		Confirmed:   confirmed,
	}

	if file, header, err := r.FormFile("file"); err == nil {
		file.Close()
		if header.Size > maxReportFileSize {
			utils.HandleMessageResponse(w, "File size too large (max 10MB)", http.StatusBadRequest)
			return
		}
		input.Upload = header
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	result, err := h.service.Submit(ctx, input)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":         "Worker performance submitted successfully",
		"performance":     result.Performance,
		"performanceFile": result.PerformanceFile,
	})
}

func (h *PerformanceHandler) GetPerformanceFiles(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := models.FileFilter{
		WorkerID: objectIDOrZero(query.Get("workerId")),
		KpiID:    objectIDOrZero(query.Get("kpiId")),
	}
	if raw := query.Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			utils.HandleMessageResponse(w, "Invalid year", http.StatusBadRequest)
			return
		}
		filter.Year = year
	}
	if raw := query.Get("quarter"); raw != "" {
		quarter, ok := models.ParseQuarter(raw)
		if !ok {
			utils.HandleMessageResponse(w, "Invalid quarter", http.StatusBadRequest)
			return
		}
		filter.Quarter = quarter
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	files, err := h.service.ListFiles(ctx, filter)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, files)
}

func objectIDOrZero(hex string) primitive.ObjectID {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID
	}
	return id
}
