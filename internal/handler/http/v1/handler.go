package v1

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"
	"github.com/shenikar/flood_dispatch_system/internal/config"
	"github.com/shenikar/flood_dispatch_system/internal/models"
	"github.com/shenikar/flood_dispatch_system/internal/service"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	incidentService service.IncidentService
	logger          *logrus.Logger
	validate        *validator.Validate
	cfg             *config.Config
	limiter         *RateLimiter
}

func NewHandler(incidentService service.IncidentService, logger *logrus.Logger, cfg *config.Config) *Handler {
	return &Handler{
		incidentService: incidentService,
		logger:          logger,
		validate:        validator.New(),
		cfg:             cfg,
		limiter:         NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, clockwork.NewRealClock(), logger),
	}
}

// @Summary Get dashboard snapshot
// @Description Get incidents, the dispatch log and resource pools in one snapshot
// @Tags Dashboard
// @Produce json
// @Success 200 {object} SnapshotResponse
// @Router /dashboard [get]
func (h *Handler) getDashboard(c *gin.Context) {
	snap := h.incidentService.GetSnapshot(c.Request.Context())
	c.JSON(http.StatusOK, ModelToSnapshotResponse(snap))
}

// @Summary Apply a dashboard action
// @Description Apply create_incident, update_incident or delete_incident and return the resulting snapshot. Unknown ids leave the snapshot unchanged.
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param action body DashboardActionRequest true "Tagged action"
// @Success 200 {object} SnapshotResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 429 {object} map[string]string "Too many requests"
// @Router /dashboard [post]
func (h *Handler) postDashboard(c *gin.Context) {
	var input DashboardActionRequest
	log := h.logger.WithField("method", "postDashboard")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	log = log.WithField("action", input.Action)

	strict := h.incidentService.StrictValidation()
	if strict {
		if err := h.validate.Struct(input); err != nil {
			log.WithError(err).Warn("Validation failed")
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	ctx := c.Request.Context()
	var (
		snap models.Snapshot
		err  error
	)
	switch input.Action {
	case ActionCreateIncident:
		snap, err = h.incidentService.CreateIncident(ctx, DTOToIncidentInput(input.Data, input.Severe))
	case ActionUpdateIncident:
		snap, err = h.incidentService.UpdateIncidentStatus(ctx, input.ID, models.IncidentStatus(input.Status))
	case ActionDeleteIncident:
		snap, err = h.incidentService.DeleteIncident(ctx, input.ID)
	default:
		if strict {
			log.Warn("Rejected unknown dashboard action")
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Errorf("action %q: %w", input.Action, service.ErrUnknownAction).Error()})
			return
		}
		log.Debug("Ignoring unknown dashboard action")
		snap = h.incidentService.GetSnapshot(ctx)
	}
	if err != nil {
		h.respondError(c, log, err)
		return
	}

	c.JSON(http.StatusOK, ModelToSnapshotResponse(snap))
}

// @Summary Get a list of incidents
// @Description Get all incidents, newest first
// @Tags Incidents
// @Produce json
// @Success 200 {array} IncidentResponse
// @Router /incidents [get]
func (h *Handler) listIncidents(c *gin.Context) {
	snap := h.incidentService.GetSnapshot(c.Request.Context())
	c.JSON(http.StatusOK, ModelsToIncidentResponses(snap.Incidents))
}

// @Summary Create a new incident
// @Description Register a new incident with status New. Requires API key when keys are configured.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param incident body CreateIncidentRequest true "Incident creation request"
// @Success 201 {object} SnapshotResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 429 {object} map[string]string "Too many requests"
// @Router /incidents [post]
func (h *Handler) createIncident(c *gin.Context) {
	var input CreateIncidentRequest
	log := h.logger.WithField("method", "createIncident")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if h.incidentService.StrictValidation() {
		if err := h.validate.Struct(input); err != nil {
			log.WithError(err).Warn("Validation failed")
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	snap, err := h.incidentService.CreateIncident(c.Request.Context(), DTOToIncidentInput(input.IncidentData, nil))
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, ModelToSnapshotResponse(snap))
}

// @Summary Update incident status
// @Description Move an incident to New, Assigned or Resolved. Assigned dispatches a unit, Resolved releases one.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Incident ID"
// @Param status body UpdateStatusRequest true "Target status"
// @Success 200 {object} SnapshotResponse
// @Failure 400 {object} map[string]string "Invalid request body or status"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 429 {object} map[string]string "Too many requests"
// @Router /incidents/{id}/status [patch]
func (h *Handler) updateIncidentStatus(c *gin.Context) {
	id := c.Param("id")
	log := h.logger.WithField("method", "updateIncidentStatus").WithField("id", id)

	var input UpdateStatusRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap, err := h.incidentService.UpdateIncidentStatus(c.Request.Context(), id, models.IncidentStatus(input.Status))
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToSnapshotResponse(snap))
}

// @Summary Archive an incident
// @Description Remove an incident from the ledger. Dispatches and resources are not touched.
// @Tags Incidents
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Incident ID"
// @Success 200 {object} SnapshotResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 429 {object} map[string]string "Too many requests"
// @Router /incidents/{id} [delete]
func (h *Handler) deleteIncident(c *gin.Context) {
	id := c.Param("id")
	log := h.logger.WithField("method", "deleteIncident").WithField("id", id)

	snap, err := h.incidentService.DeleteIncident(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToSnapshotResponse(snap))
}

// @Summary Get the dispatch log
// @Description Get all dispatches, newest first
// @Tags Dispatches
// @Produce json
// @Success 200 {array} DispatchResponse
// @Router /dispatches [get]
func (h *Handler) listDispatches(c *gin.Context) {
	snap := h.incidentService.GetSnapshot(c.Request.Context())
	c.JSON(http.StatusOK, ModelsToDispatchResponses(snap.Dispatches))
}

// @Summary Get resource pools
// @Description Get available and total units per resource pool
// @Tags Resources
// @Produce json
// @Success 200 {object} ResourcesResponse
// @Router /resources [get]
func (h *Handler) getResources(c *gin.Context) {
	snap := h.incidentService.GetSnapshot(c.Request.Context())
	c.JSON(http.StatusOK, ModelToResourcesResponse(snap.Resources))
}

// @Summary Get application health status
// @Description Get health status of the application and its event sink
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	if err := h.incidentService.CheckEventSink(c.Request.Context()); err != nil {
		h.logger.WithError(err).Warn("Health check degraded")
		c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "degraded", EventSink: "unavailable", Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", EventSink: "ok"})
}

// respondError отображает ошибки сервиса в HTTP-статусы
func (h *Handler) respondError(c *gin.Context, log *logrus.Entry, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidIncident),
		errors.Is(err, service.ErrUnknownAction):
		log.WithError(err).Warn("Request rejected by service")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.WithError(err).Error("Service call failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
