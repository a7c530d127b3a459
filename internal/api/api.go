package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/rpaixao/a11y-analyzer/internal/auth"
	"github.com/rpaixao/a11y-analyzer/internal/db"
	"github.com/rpaixao/a11y-analyzer/internal/scanner"
	"github.com/rpaixao/a11y-analyzer/internal/urlutil"
)

// NewRouter wires the HTTP surface onto the core services. Status mapping:
// validation failures are 400, lookups that miss are 404, everything else
// the core reports is 500.
func NewRouter(scans *scanner.Service, conn *db.Connection, users *auth.Service, allowedOrigins []string) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}))
	r.Use(middleware.Logger)

	// Scan a URL and return the finished report
	r.Post("/api/scan", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			URL string `json:"url"`
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.URL == "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "URL is required"})
			return
		}

		report, err := scans.Scan(r.Context(), body.URL)
		if err != nil {
			w.WriteHeader(scanStatus(err))
			json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}
		json.NewEncoder(w).Encode(report)
	})

	// Fetch one report by id or by url
	r.Get("/api/reports/{idOrUrl}", func(w http.ResponseWriter, r *http.Request) {
		idOrURL, _ := url.PathUnescape(chi.URLParam(r, "idOrUrl"))
		w.Header().Set("Content-Type", "application/json")

		report, err := scans.Lookup(idOrURL)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(map[string]string{"error": "Report not found"})
				return
			}
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "Failed to fetch report"})
			return
		}
		json.NewEncoder(w).Encode(report)
	})

	// Paginated report listing, newest first
	r.Get("/api/reports", func(w http.ResponseWriter, r *http.Request) {
		skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
		limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
		if err != nil {
			limit = 10
		}

		reports, err := conn.ListReports(skip, limit)
		w.Header().Set("Content-Type", "application/json")
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "Failed to fetch reports"})
			return
		}
		json.NewEncoder(w).Encode(reports)
	})

	// Lightweight recent-scans projection for the dashboard
	r.Get("/api/recent-scans", func(w http.ResponseWriter, r *http.Request) {
		limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
		if err != nil {
			limit = 5
		}

		scansOut, err := conn.RecentScans(limit)
		w.Header().Set("Content-Type", "application/json")
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "Failed to fetch recent scans"})
			return
		}
		json.NewEncoder(w).Encode(scansOut)
	})

	// Bulk delete by id set, idempotent
	r.Delete("/api/scans", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			IDs []string `json:"ids"`
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "A list of ids is required"})
			return
		}

		deleted, err := conn.DeleteReportsByIDs(body.IDs)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "Failed to delete scans"})
			return
		}
		json.NewEncoder(w).Encode(map[string]int{"deleted": deleted})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	r.Post("/api/signup", func(w http.ResponseWriter, r *http.Request) {
		email, password, ok := credentials(w, r)
		if !ok {
			return
		}
		if err := users.Register(email, password); err != nil {
			if errors.Is(err, db.ErrUserExists) {
				w.WriteHeader(http.StatusConflict)
				json.NewEncoder(w).Encode(map[string]string{"error": "User already exists"})
				return
			}
			if errors.Is(err, auth.ErrInvalidInput) {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
				return
			}
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "Failed to register user"})
			return
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"message": "User registered successfully"})
	})

	r.Post("/api/signin", func(w http.ResponseWriter, r *http.Request) {
		email, password, ok := credentials(w, r)
		if !ok {
			return
		}
		verified, err := users.Verify(email, password)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "Failed to verify credentials"})
			return
		}
		if !verified {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Invalid credentials"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"message": "Login successful", "email": email})
	})

	return r
}

// scanStatus maps a scan failure to its HTTP status: only bad input is the
// caller's fault.
func scanStatus(err error) int {
	if errors.Is(err, urlutil.ErrInvalidURL) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func credentials(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" || body.Password == "" {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Email and password are required"})
		return "", "", false
	}
	return body.Email, body.Password, true
}
