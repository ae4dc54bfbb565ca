package routes

import (
	"net/http"

	"pmes/handlers"
	"pmes/middlewares"
)

// SetupRoutes wires the HTTP surface. Assignment and CEO views require a
// token; performance submission accepts one but can also identify the
// worker from the form.
func SetupRoutes(
	assignments *handlers.AssignmentHandler,
	performance *handlers.PerformanceHandler,
	workerPlans *handlers.WorkerPlanHandler,
	jwtSecret string,
	uploadDir string,
) *http.ServeMux {
	mux := http.NewServeMux()

	auth := middlewares.JWTMiddleware(jwtSecret)
	optionalAuth := middlewares.OptionalJWTMiddleware(jwtSecret)

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("online server"))
	})

	mux.Handle("POST /api/measure-assignment", auth(http.HandlerFunc(assignments.AssignMeasure)))

	mux.Handle("POST /api/worker-performance/submit-performance", optionalAuth(http.HandlerFunc(performance.SubmitPerformance)))
	mux.Handle("GET /api/worker-performance/files", http.HandlerFunc(performance.GetPerformanceFiles))

	mux.Handle("GET /api/worker-plans", optionalAuth(http.HandlerFunc(workerPlans.GetWorkerPlans)))
	mux.Handle("GET /api/worker-plans/ceo", auth(http.HandlerFunc(workerPlans.GetCeoWorkerPlans)))

	// Stored evidence files are served back under the same relative paths
	// their records carry.
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir))))

	return mux
}
