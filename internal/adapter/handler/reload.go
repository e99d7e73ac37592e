package handler

import (
	"errors"
	"net/http"

	"github.com/qj0r9j0vc2/alert-insights/internal/domain/logger"
	"github.com/qj0r9j0vc2/alert-insights/internal/infrastructure/config"
)

// Reload outcomes reported in the response body.
const (
	reloadApplied         = "reloaded"
	reloadRestartRequired = "restart_required"
	reloadFailed          = "failed"
)

// reloadResponse reports the outcome and the logging settings now in effect.
type reloadResponse struct {
	Status        string `json:"status"`
	Message       string `json:"message,omitempty"`
	LoggingLevel  string `json:"logging_level"`
	LoggingFormat string `json:"logging_format"`
}

// ReloadHandler re-reads the config file on demand.
// Only logging settings apply live; other changes are reported as needing a restart.
type ReloadHandler struct {
	configManager *config.ConfigManager
	logger        logger.Logger
}

// NewReloadHandler creates a new reload handler.
func NewReloadHandler(cm *config.ConfigManager, log logger.Logger) *ReloadHandler {
	if log == nil {
		log = logger.Nop{}
	}
	return &ReloadHandler{configManager: cm, logger: log}
}

// ServeHTTP handles POST /-/reload
func (h *ReloadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status, code := reloadApplied, http.StatusOK
	var message string

	err := h.configManager.TryReload()
	switch {
	case err == nil:
	case errors.Is(err, config.ErrRequiresRestart):
		// Reloadable keys were still applied.
		status, message = reloadRestartRequired, err.Error()
	default:
		h.logger.Error("manual reload failed", "error", err)
		status, code, message = reloadFailed, http.StatusInternalServerError, err.Error()
	}

	current := h.configManager.Current()
	writeJSON(w, code, reloadResponse{
		Status:        status,
		Message:       message,
		LoggingLevel:  current.Logging.Level,
		LoggingFormat: current.Logging.Format,
	})
}
