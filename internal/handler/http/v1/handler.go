package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shenikar/ems_dispatch_system/internal/config"
	"github.com/shenikar/ems_dispatch_system/internal/eventbus"
	"github.com/shenikar/ems_dispatch_system/internal/models"
	"github.com/shenikar/ems_dispatch_system/internal/service"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	ingest    service.IngestGateway
	incidents service.IncidentService
	fleet     service.FleetService
	assigner  service.Assigner
	bus       *eventbus.Bus
	logger    *logrus.Logger
	validate  *validator.Validate
	cfg       *config.Config
}

func NewHandler(
	ingest service.IngestGateway,
	incidents service.IncidentService,
	fleet service.FleetService,
	assigner service.Assigner,
	bus *eventbus.Bus,
	logger *logrus.Logger,
	cfg *config.Config,
) *Handler {
	return &Handler{
		ingest:    ingest,
		incidents: incidents,
		fleet:     fleet,
		assigner:  assigner,
		bus:       bus,
		logger:    logger,
		validate:  validator.New(),
		cfg:       cfg,
	}
}

// operatorActor извлекает идентификатор оператора из заголовка запроса
func operatorActor(c *gin.Context) models.Actor {
	ref := c.GetHeader("X-Operator-ID")
	if ref == "" {
		ref = "unknown"
	}
	return models.OperatorActor(ref)
}

// @Summary Submit a hardware request
// @Description Accept one device transmission (alert/cancel/heartbeat/status). The request is archived even when rejected.
// @Tags Hardware
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body HardwareRequestDTO true "Hardware request"
// @Success 200 {object} HardwareResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /hardware/requests [post]
func (h *Handler) submitHardwareRequest(c *gin.Context) {
	var input HardwareRequestDTO
	log := h.logger.WithField("method", "submitHardwareRequest")

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

	result, err := h.ingest.SubmitHardwareRequest(c.Request.Context(), service.SubmitCommand{
		DeviceUID:  input.DeviceUID,
		Kind:       models.RequestKind(input.Kind),
		Latitude:   input.Latitude,
		Longitude:  input.Longitude,
		RawPayload: input.Payload,
	})
	if err != nil {
		// Отклонение команды - штатный ответ устройству, не сбой
		if errors.Is(err, service.ErrUnknownDevice) || errors.Is(err, service.ErrInactiveDevice) {
			c.JSON(http.StatusOK, HardwareResponse{Accepted: false, Reason: result.Reason})
			return
		}
		log.WithError(err).Error("Failed to process hardware request")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, HardwareResponse{
		Accepted:   result.Accepted,
		IncidentID: result.IncidentID,
		Reason:     result.Reason,
	})
}

// @Summary Create an incident manually
// @Description Create a manual-mode incident from the operator console. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param incident body CreateIncidentRequest true "Incident creation request"
// @Success 201 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents [post]
func (h *Handler) createIncident(c *gin.Context) {
	var input CreateIncidentRequest
	log := h.logger.WithField("method", "createIncident")

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

	incident, err := h.incidents.CreateIncident(c.Request.Context(), service.CreateIncidentCommand{
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		Mode:      models.ModeManual,
		Actor:     operatorActor(c),
		Note:      input.Note,
	})
	if err != nil {
		log.WithError(err).Error("Failed to create incident in service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusCreated, ModelToIncidentResponse(incident))
}

// @Summary Get a list of incidents
// @Description Get a paginated list of all incidents. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Number of items per page" default(10)
// @Success 200 {array} IncidentResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents [get]
func (h *Handler) listIncidents(c *gin.Context) {
	log := h.logger.WithField("method", "listIncidents")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "10"))

	incidents, err := h.incidents.ListIncidents(c.Request.Context(), page, pageSize)
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, ModelsToIncidentResponses(incidents))
}

// @Summary Get incident by ID
// @Description Get a single incident by its ID. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Incident ID"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid incident ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Incident not found"
// @Router /incidents/{id} [get]
func (h *Handler) getIncident(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid incident ID"})
		return
	}
	log := h.logger.WithField("method", "getIncident").WithField("id", id)

	incident, err := h.incidents.GetIncident(c.Request.Context(), id)
	if err != nil {
		log.WithError(err).Warn("Failed to get incident from service")
		c.JSON(http.StatusNotFound, gin.H{"error": "incident not found"})
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// @Summary Get incident audit log
// @Description Get the append-only audit trail of an incident, ordered by time. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Incident ID"
// @Success 200 {array} IncidentLogResponse
// @Failure 400 {object} map[string]string "Invalid incident ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents/{id}/logs [get]
func (h *Handler) listIncidentLogs(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid incident ID"})
		return
	}
	log := h.logger.WithField("method", "listIncidentLogs").WithField("id", id)

	entries, err := h.incidents.ListLogs(c.Request.Context(), id)
	if err != nil {
		log.WithError(err).Error("Failed to list incident logs from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, ModelsToLogResponses(entries))
}

// @Summary Cancel a pending incident
// @Description Cancel an incident during its confirmation window. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Incident ID"
// @Param request body CancelIncidentRequest false "Cancel request"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid incident ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 409 {object} map[string]string "Incident is no longer pending"
// @Router /incidents/{id}/cancel [post]
func (h *Handler) cancelIncident(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid incident ID"})
		return
	}
	log := h.logger.WithField("method", "cancelIncident").WithField("id", id)

	var input CancelIncidentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			log.WithError(err).Warn("Failed to bind JSON")
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	incident, err := h.incidents.CancelIncident(c.Request.Context(), id, operatorActor(c), input.Note)
	if err != nil {
		h.respondServiceError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// @Summary Manually assign an ambulance and a hospital
// @Description Operator override: assign the given ambulance/hospital pair to the incident through the normal reservation discipline. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Incident ID"
// @Param request body ManualAssignRequest true "Manual assignment request"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Incident, ambulance or hospital not found"
// @Failure 409 {object} map[string]string "Reservation conflict or invalid transition"
// @Router /incidents/{id}/assign [post]
func (h *Handler) manualAssign(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid incident ID"})
		return
	}
	log := h.logger.WithField("method", "manualAssign").WithField("id", id)

	var input ManualAssignRequest
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

	incident, err := h.assigner.ManualAssign(c.Request.Context(), id, input.AmbulanceID, input.HospitalID, operatorActor(c))
	if err != nil {
		h.respondServiceError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// @Summary Mark an incident as in progress
// @Description Crew arrived on scene, transport to the hospital started. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Incident ID"
// @Success 200 {object} IncidentResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 409 {object} map[string]string "Invalid transition"
// @Router /incidents/{id}/progress [post]
func (h *Handler) progressIncident(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid incident ID"})
		return
	}
	log := h.logger.WithField("method", "progressIncident").WithField("id", id)

	incident, err := h.incidents.ProgressIncident(c.Request.Context(), id, operatorActor(c))
	if err != nil {
		h.respondServiceError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// @Summary Complete an incident
// @Description Finish the incident and release the ambulance back to available. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Incident ID"
// @Success 200 {object} IncidentResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 409 {object} map[string]string "Invalid transition"
// @Router /incidents/{id}/complete [post]
func (h *Handler) completeIncident(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid incident ID"})
		return
	}
	log := h.logger.WithField("method", "completeIncident").WithField("id", id)

	incident, err := h.incidents.CompleteIncident(c.Request.Context(), id, operatorActor(c))
	if err != nil {
		h.respondServiceError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// @Summary List ambulances
// @Description Get all ambulances with their positions and statuses. Requires API key.
// @Tags Ambulances
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} AmbulanceResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /ambulances [get]
func (h *Handler) listAmbulances(c *gin.Context) {
	log := h.logger.WithField("method", "listAmbulances")

	ambulances, err := h.fleet.ListAmbulances(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to list ambulances from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, ModelsToAmbulanceResponses(ambulances))
}

// @Summary Update ambulance position
// @Description Accept a simulated movement update for an ambulance. Requires API key.
// @Tags Ambulances
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Ambulance ID"
// @Param request body UpdatePositionRequest true "Position update"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /ambulances/{id}/position [put]
func (h *Handler) updateAmbulancePosition(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ambulance ID"})
		return
	}
	log := h.logger.WithField("method", "updateAmbulancePosition").WithField("id", id)

	var input UpdatePositionRequest
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

	if err := h.fleet.UpdatePosition(c.Request.Context(), id, input.Latitude, input.Longitude); err != nil {
		log.WithError(err).Error("Failed to update ambulance position")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update ambulance position"})
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Update ambulance status
// @Description Operator status change (available/busy/offline). An ambulance held by an active incident cannot be changed. Requires API key.
// @Tags Ambulances
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Ambulance ID"
// @Param request body UpdateAmbulanceStatusRequest true "Status update"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Ambulance not found"
// @Failure 409 {object} map[string]string "Ambulance is reserved"
// @Router /ambulances/{id}/status [put]
func (h *Handler) updateAmbulanceStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ambulance ID"})
		return
	}
	log := h.logger.WithField("method", "updateAmbulanceStatus").WithField("id", id)

	var input UpdateAmbulanceStatusRequest
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

	if err := h.fleet.UpdateStatus(c.Request.Context(), id, models.AmbulanceStatus(input.Status)); err != nil {
		h.respondServiceError(c, log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondServiceError отображает ошибки доменного слоя в HTTP-статусы
func (h *Handler) respondServiceError(c *gin.Context, log *logrus.Entry, err error) {
	switch {
	case errors.Is(err, service.ErrIncidentNotFound),
		errors.Is(err, service.ErrAmbulanceNotFound),
		errors.Is(err, service.ErrHospitalNotFound):
		log.WithError(err).Warn("Entity not found")
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrReservationConflict):
		log.WithError(err).Warn("Conflicting state change rejected")
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.WithError(err).Error("Service call failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
