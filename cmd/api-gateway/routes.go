package main

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/middleware"
	"github.com/noah-isme/timetable-api/internal/models"
)

func registerRoutes(api *gin.RouterGroup, h handlers) {
	admins := middleware.RequireRoles(models.RoleMainAdmin, models.RoleDeptAdmin)
	mainAdmin := middleware.RequireRoles(models.RoleMainAdmin)

	api.GET("/departments", h.departments.List)
	api.POST("/departments", mainAdmin, h.departments.Create)

	dept := api.Group("/departments/:id", middleware.DepartmentScope("id"))
	dept.GET("", h.departments.Get)
	dept.PUT("", admins, h.departments.Update)
	dept.DELETE("", mainAdmin, h.departments.Delete)

	dept.GET("/subjects", h.subjects.List)
	dept.POST("/subjects", admins, h.subjects.Create)
	dept.GET("/classrooms", h.classrooms.List)
	dept.POST("/classrooms", admins, h.classrooms.Create)
	dept.GET("/staff", h.staff.List)
	dept.POST("/staff", admins, h.staff.Create)
	dept.GET("/constraints", h.constraints.List)
	dept.GET("/constraints/effective", h.constraints.Effective)
	dept.POST("/constraints/defaults", admins, h.constraints.InstallDefaults)
	dept.POST("/roster/import", admins, h.roster.Import)

	dept.POST("/timetable/generate", admins, h.timetable.Generate)
	dept.GET("/timetable", h.timetable.View)
	dept.GET("/timetable/runs", h.timetable.ListRuns)
	api.GET("/timetable-runs/:id", h.timetable.GetRun)

	api.GET("/subjects/:id", h.subjects.Get)
	api.PUT("/subjects/:id", admins, h.subjects.Update)
	api.DELETE("/subjects/:id", admins, h.subjects.Delete)

	api.GET("/classrooms/:id", h.classrooms.Get)
	api.PUT("/classrooms/:id", admins, h.classrooms.Update)
	api.DELETE("/classrooms/:id", admins, h.classrooms.Delete)

	api.GET("/staff/:id", h.staff.Get)
	api.PUT("/staff/:id", admins, h.staff.Update)
	api.DELETE("/staff/:id", admins, h.staff.Delete)
	api.POST("/staff/:id/subjects", h.staff.SelectSubjects)
	api.POST("/staff/:id/unlock", admins, h.staff.Unlock)

	api.POST("/constraints", admins, h.constraints.Create)
	api.PUT("/constraints/:id", admins, h.constraints.Update)
	api.DELETE("/constraints/:id", admins, h.constraints.Delete)
}
