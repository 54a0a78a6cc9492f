package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/prezboard/engine/modules/utilization/domain/period"
	"github.com/prezboard/engine/modules/utilization/services"
)

// OpsController exposes the operational surface: health, cache
// diagnostics and cache refresh. Computation itself is not served over
// HTTP.
type OpsController struct {
	svc *services.UtilizationService
	log *logrus.Logger
}

func NewOpsController(svc *services.UtilizationService, log *logrus.Logger) *OpsController {
	return &OpsController{svc: svc, log: log}
}

func (c *OpsController) Register(r *mux.Router) {
	r.HandleFunc("/health", c.health).Methods(http.MethodGet)
	r.HandleFunc("/cache/status", c.cacheStatus).Methods(http.MethodGet)
	r.HandleFunc("/cache/refresh", c.cacheRefresh).Methods(http.MethodPost)
}

func (c *OpsController) health(w http.ResponseWriter, r *http.Request) {
	c.respond(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}

func (c *OpsController) cacheStatus(w http.ResponseWriter, r *http.Request) {
	c.respond(w, http.StatusOK, c.svc.CacheStatus(r.Context()))
}

// cacheRefresh flushes cached results so the next request recomputes
// from fresh source data. Optional query parameters narrow the flush to
// one department, view and period token.
func (c *OpsController) cacheRefresh(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	scope := q.Get("department")
	token := q.Get("period")
	var view period.View
	if v := q.Get("view"); v != "" {
		view = period.ParseView(v)
	}

	removed := c.svc.InvalidateCache(r.Context(), scope, token, view)
	c.log.WithFields(logrus.Fields{
		"scope":   scope,
		"view":    view,
		"token":   token,
		"removed": removed,
	}).Info("cache refresh requested")
	c.respond(w, http.StatusOK, map[string]any{"removed": removed})
}

func (c *OpsController) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		c.log.WithError(err).Warn("response encoding failed")
	}
}
