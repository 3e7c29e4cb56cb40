package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"trust-bot/trust"
	"trust-bot/utils"

	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Server exposes the staff dashboard API over the coordinator. It is a
// thin translation layer: every quick-action button maps onto exactly
// one coordinator entry point.
type Server struct {
	coordinator *trust.Coordinator
	token       string
	dbPath      string
	httpServer  *http.Server
}

func New(addr string, coordinator *trust.Coordinator, token, dbPath string) *Server {
	s := &Server{
		coordinator: coordinator,
		token:       token,
		dbPath:      dbPath,
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api/guilds/{guildID}/users/{userID}").Subrouter()
	api.Use(s.authMiddleware)
	api.HandleFunc("/trust", s.handleSnapshot).Methods(http.MethodGet)
	api.HandleFunc("/warn", s.handleWarn).Methods(http.MethodPost)
	api.HandleFunc("/mute", s.handleMute).Methods(http.MethodPost)
	api.HandleFunc("/unmute", s.handleUnmute).Methods(http.MethodPost)
	api.HandleFunc("/trust/reset", s.handleResetTrust).Methods(http.MethodPost)
	api.HandleFunc("/history/reset", s.handleResetHistory).Methods(http.MethodPost)
	api.HandleFunc("/infractions/{infractionID}", s.handleRemoveInfraction).Methods(http.MethodDelete)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Start runs the HTTP server in its own goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("Dashboard API listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Dashboard API stopped: %v", err)
		}
	}()
}

func (s *Server) Close() error {
	return s.httpServer.Close()
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token == "" || r.Header.Get("Authorization") != "Bearer "+s.token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

type actionRequest struct {
	Moderator  string `json:"moderator"`
	Reason     string `json:"reason"`
	DurationMs int64  `json:"durationMs"`
	Confirm    bool   `json:"confirm"`
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	snapshot, err := s.coordinator.GetUserSnapshot(vars["guildID"], vars["userID"])
	if err != nil {
		log.Printf("Failed to build snapshot for dashboard: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "storage"})
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleWarn(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	req, ok := decodeAction(w, r)
	if !ok {
		return
	}
	writeResult(w, s.coordinator.HandleManualWarn(vars["guildID"], vars["userID"], req.Moderator, req.Reason))
}

func (s *Server) handleMute(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	req, ok := decodeAction(w, r)
	if !ok {
		return
	}
	writeResult(w, s.coordinator.HandleManualMute(vars["guildID"], vars["userID"], req.Moderator, req.DurationMs, req.Reason))
}

func (s *Server) handleUnmute(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	req, ok := decodeAction(w, r)
	if !ok {
		return
	}
	writeResult(w, s.coordinator.HandleUnmute(vars["guildID"], vars["userID"], req.Moderator, req.Reason))
}

func (s *Server) handleResetTrust(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	req, ok := decodeAction(w, r)
	if !ok {
		return
	}
	writeResult(w, s.coordinator.HandleResetTrust(vars["guildID"], vars["userID"], req.Moderator, req.Reason))
}

func (s *Server) handleResetHistory(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	req, ok := decodeAction(w, r)
	if !ok {
		return
	}
	// The wipe is irreversible; the dashboard must send explicit
	// confirmation with the request.
	if !req.Confirm {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "confirmation required"})
		return
	}
	writeResult(w, s.coordinator.HandleResetHistory(vars["guildID"], vars["userID"], req.Moderator, req.Reason))
}

func (s *Server) handleRemoveInfraction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	req, ok := decodeAction(w, r)
	if !ok {
		return
	}
	infractionID, err := strconv.ParseInt(vars["infractionID"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid infraction id"})
		return
	}
	writeResult(w, s.coordinator.HandleRemoveInfraction(vars["guildID"], vars["userID"], req.Moderator, infractionID))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	cpuPercent, _ := cpu.Percent(0, false)
	vm, _ := mem.VirtualMemory()

	health := map[string]interface{}{
		"status":      "ok",
		"dbSizeBytes": utils.DBFileSize(s.dbPath),
	}
	if len(cpuPercent) > 0 {
		health["cpuPercent"] = cpuPercent[0]
	}
	if vm != nil {
		health["memPercent"] = vm.UsedPercent
	}
	writeJSON(w, http.StatusOK, health)
}

func decodeAction(w http.ResponseWriter, r *http.Request) (actionRequest, bool) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return actionRequest{}, false
	}
	if req.Moderator == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "moderator is required"})
		return actionRequest{}, false
	}
	return req, true
}

func writeResult(w http.ResponseWriter, result trust.ActionResult) {
	status := http.StatusOK
	if !result.OK {
		switch result.Error {
		case trust.ErrCodeValidation:
			status = http.StatusBadRequest
		default:
			status = http.StatusInternalServerError
		}
	}
	writeJSON(w, status, result)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode dashboard response: %v", err)
	}
}
