package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	incidents := api.Group("/incidents")
	{
		incidents.GET("", h.listIncidents)
		incidents.GET("/:id", h.getIncident)
		incidents.GET("/:id/dispatch-log", h.getDispatchLog)
		incidents.GET("/:id/updates", h.getTimeline)
		incidents.POST("/:id/updates", APIKeyAuthMiddleware(h.cfg, h.logger), h.addNote)
		// Назначение юнитов только по API-ключу
		incidents.POST("/:id/assignments", APIKeyAuthMiddleware(h.cfg, h.logger), h.assignUnits)
	}

	units := api.Group("/units")
	{
		units.GET("", h.listUnits)
		units.GET("/:id", h.getUnit)
	}

	api.GET("/board/stats", h.getStats)
	api.POST("/auth/login", h.login)

	// Маршрут Health-check
	api.GET("/system/health", h.healthCheck)
}
