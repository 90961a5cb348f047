package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	auth := APIKeyAuthMiddleware(h.cfg, h.logger)

	// Приём команд от носимых устройств
	hardware := api.Group("/hardware", auth)
	{
		hardware.POST("/requests", h.submitHardwareRequest)
	}

	// Жизненный цикл инцидентов
	incidents := api.Group("/incidents", auth)
	{
		incidents.POST("", h.createIncident)
		incidents.GET("", h.listIncidents)
		incidents.GET("/:id", h.getIncident)
		incidents.GET("/:id/logs", h.listIncidentLogs)
		incidents.POST("/:id/cancel", h.cancelIncident)
		incidents.POST("/:id/assign", h.manualAssign)
		incidents.POST("/:id/progress", h.progressIncident)
		incidents.POST("/:id/complete", h.completeIncident)
	}

	// Парк машин скорой помощи
	ambulances := api.Group("/ambulances", auth)
	{
		ambulances.GET("", h.listAmbulances)
		ambulances.PUT("/:id/position", h.updateAmbulancePosition)
		ambulances.PUT("/:id/status", h.updateAmbulanceStatus)
	}

	// Подписка на события в реальном времени
	events := api.Group("/events", auth)
	{
		events.GET("/stream", h.streamEvents)
		events.GET("/ws", h.streamEventsWS)
	}

	// Маршрут Health-check
	api.GET("/system/health", h.healthCheck)
}
