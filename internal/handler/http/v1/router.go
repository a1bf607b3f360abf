package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	// Изменяющие маршруты защищены ключом и лимитом запросов
	write := []gin.HandlerFunc{APIKeyAuthMiddleware(h.cfg, h.logger), h.limiter.Middleware()}

	// Дашборд: снимок и тегированные действия
	api.GET("/dashboard", h.getDashboard)
	api.POST("/dashboard", append(write, h.postDashboard)...)

	incidents := api.Group("/incidents")
	{
		incidents.GET("", h.listIncidents)
		incidents.POST("", append(write, h.createIncident)...)
		incidents.PATCH("/:id/status", append(write, h.updateIncidentStatus)...)
		incidents.DELETE("/:id", append(write, h.deleteIncident)...)
	}

	api.GET("/dispatches", h.listDispatches)
	api.GET("/resources", h.getResources)

	// Маршрут Health-check
	api.GET("/system/health", h.healthCheck)
}
