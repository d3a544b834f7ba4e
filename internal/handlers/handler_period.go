package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/ledgerhq/ledgercore/internal/core/ports/services"
	"github.com/ledgerhq/ledgercore/internal/dto"
	"github.com/ledgerhq/ledgercore/internal/middleware"
)

// registerPeriodRoutes mounts the accounting-period endpoints of spec §6.
func registerPeriodRoutes(rg *gin.RouterGroup, periodSvc portssvc.PeriodSvc) {
	rg.POST("/periods", createPeriod(periodSvc))
	rg.GET("/periods", listPeriods(periodSvc))
	rg.GET("/periods/:periodID", getPeriod(periodSvc))
	rg.PATCH("/periods/:periodID", updatePeriod(periodSvc))
	rg.POST("/periods/:periodID/transition", transitionPeriod(periodSvc))
}

// createPeriod godoc
// @Summary Open a new accounting period
// @Tags periods
// @Accept json
// @Produce json
// @Param request body dto.CreatePeriodRequest true "Period to open"
// @Success 201 {object} dto.PeriodResponse
// @Router /periods [post]
func createPeriod(periodSvc portssvc.PeriodSvc) gin.HandlerFunc {
	return func(c *gin.Context) {
		organizationID, _ := middleware.GetOrganizationIDFromContext(c)
		actorID, _ := middleware.GetActorIDFromContext(c)

		var req dto.CreatePeriodRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_FAILED", "message": err.Error()})
			return
		}

		period, err := periodSvc.CreatePeriod(c.Request.Context(), organizationID, req, actorID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, dto.ToPeriodResponse(period))
	}
}

// listPeriods godoc
// @Summary List accounting periods
// @Tags periods
// @Produce json
// @Success 200 {object} dto.ListPeriodsResponse
// @Router /periods [get]
func listPeriods(periodSvc portssvc.PeriodSvc) gin.HandlerFunc {
	return func(c *gin.Context) {
		organizationID, _ := middleware.GetOrganizationIDFromContext(c)

		resp, err := periodSvc.ListPeriods(c.Request.Context(), organizationID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// getPeriod godoc
// @Summary Get an accounting period by ID
// @Tags periods
// @Produce json
// @Param periodID path string true "Period ID"
// @Success 200 {object} dto.PeriodResponse
// @Router /periods/{periodID} [get]
func getPeriod(periodSvc portssvc.PeriodSvc) gin.HandlerFunc {
	return func(c *gin.Context) {
		organizationID, _ := middleware.GetOrganizationIDFromContext(c)
		periodID := c.Param("periodID")

		period, err := periodSvc.GetPeriodByID(c.Request.Context(), organizationID, periodID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.ToPeriodResponse(period))
	}
}

// updatePeriod godoc
// @Summary Edit an open accounting period's name or date range
// @Tags periods
// @Accept json
// @Produce json
// @Param periodID path string true "Period ID"
// @Param request body dto.UpdatePeriodRequest true "Fields to change"
// @Success 200 {object} dto.PeriodResponse
// @Router /periods/{periodID} [patch]
func updatePeriod(periodSvc portssvc.PeriodSvc) gin.HandlerFunc {
	return func(c *gin.Context) {
		organizationID, _ := middleware.GetOrganizationIDFromContext(c)
		actorID, _ := middleware.GetActorIDFromContext(c)
		periodID := c.Param("periodID")

		var req dto.UpdatePeriodRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_FAILED", "message": err.Error()})
			return
		}

		period, err := periodSvc.UpdatePeriod(c.Request.Context(), organizationID, periodID, req, actorID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.ToPeriodResponse(period))
	}
}

// transitionPeriod godoc
// @Summary Transition an accounting period's status
// @Tags periods
// @Accept json
// @Produce json
// @Param periodID path string true "Period ID"
// @Param request body dto.TransitionPeriodRequest true "Target status"
// @Success 200 {object} dto.PeriodResponse
// @Router /periods/{periodID}/transition [post]
func transitionPeriod(periodSvc portssvc.PeriodSvc) gin.HandlerFunc {
	return func(c *gin.Context) {
		organizationID, _ := middleware.GetOrganizationIDFromContext(c)
		actorID, _ := middleware.GetActorIDFromContext(c)
		periodID := c.Param("periodID")

		var req dto.TransitionPeriodRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_FAILED", "message": err.Error()})
			return
		}

		period, err := periodSvc.TransitionPeriod(c.Request.Context(), organizationID, periodID, req, actorID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.ToPeriodResponse(period))
	}
}
