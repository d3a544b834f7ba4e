package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/ledgerhq/ledgercore/internal/core/ports/services"
	"github.com/ledgerhq/ledgercore/internal/dto"
	"github.com/ledgerhq/ledgercore/internal/middleware"
)

// registerJournalRoutes mounts the journal and hash-chain endpoints of
// spec §6.
func registerJournalRoutes(rg *gin.RouterGroup, journalSvc portssvc.JournalSvcFacade, postingSvc portssvc.PostingSvc, hashSvc portssvc.HashSvc) {
	rg.POST("/journals", createJournal(journalSvc))
	rg.POST("/journals/validate-import", validateJournalImport(journalSvc))
	rg.GET("/journals/next-number", getNextJournalNumber(journalSvc))
	rg.GET("/journals/by-date-range", listJournalsByDateRange(journalSvc))
	rg.GET("/journals/by-ext-uid/:extUID", getJournalByExtUID(journalSvc))
	rg.GET("/journals/:journalID", getJournal(journalSvc))
	rg.GET("/periods/:periodID/journals", listJournals(journalSvc))
	rg.PATCH("/journals/:journalID", updateJournal(journalSvc))
	rg.DELETE("/journals/:journalID", deleteJournal(journalSvc))
	rg.POST("/journals/:journalID/post", postJournal(postingSvc))
	rg.POST("/journals/:journalID/reverse", reverseJournal(postingSvc))
	rg.GET("/journals/:journalID/verify", verifyJournal(hashSvc))
	rg.GET("/chain/verify", verifyChain(hashSvc))
}

// createJournal godoc
// @Summary Create a draft journal
// @Tags journals
// @Accept json
// @Produce json
// @Param request body dto.CreateJournalRequest true "Draft journal"
// @Success 201 {object} dto.JournalResponse
// @Router /journals [post]
func createJournal(journalSvc portssvc.JournalSvcFacade) gin.HandlerFunc {
	return func(c *gin.Context) {
		organizationID, _ := middleware.GetOrganizationIDFromContext(c)
		actorID, _ := middleware.GetActorIDFromContext(c)

		var req dto.CreateJournalRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_FAILED", "message": err.Error()})
			return
		}

		journal, err := journalSvc.CreateDraftJournal(c.Request.Context(), organizationID, req, actorID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, dto.ToJournalResponse(journal))
	}
}

// validateJournalImport godoc
// @Summary Validate a journal for import without persisting it
// @Tags journals
// @Accept json
// @Produce json
// @Param request body dto.CreateJournalRequest true "Journal to validate"
// @Success 204
// @Router /journals/validate-import [post]
func validateJournalImport(journalSvc portssvc.JournalSvcFacade) gin.HandlerFunc {
	return func(c *gin.Context) {
		organizationID, _ := middleware.GetOrganizationIDFromContext(c)

		var req dto.CreateJournalRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_FAILED", "message": err.Error()})
			return
		}

		if err := journalSvc.ValidateForImport(c.Request.Context(), organizationID, req); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// getNextJournalNumber godoc
// @Summary Get the next journal number in a series
// @Tags journals
// @Produce json
// @Param prefix query string false "Series prefix, defaults to JRN-{currentYear}"
// @Success 200 {object} dto.NextJournalNumberResponse
// @Router /journals/next-number [get]
func getNextJournalNumber(journalSvc portssvc.JournalSvcFacade) gin.HandlerFunc {
	return func(c *gin.Context) {
		organizationID, _ := middleware.GetOrganizationIDFromContext(c)

		var params dto.NextJournalNumberParams
		if err := c.ShouldBindQuery(&params); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_FAILED", "message": err.Error()})
			return
		}

		number, err := journalSvc.GetNextJournalNumber(c.Request.Context(), organizationID, params.Prefix)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NextJournalNumberResponse{JournalNumber: number})
	}
}

// listJournalsByDateRange godoc
// @Summary List journals whose posting date falls within a range
// @Tags journals
// @Produce json
// @Param startDate query string true "Range start (RFC3339)"
// @Param endDate query string true "Range end (RFC3339)"
// @Param limit query int false "Page size"
// @Param nextToken query string false "Pagination cursor"
// @Success 200 {object} dto.ListJournalsResponse
// @Router /journals/by-date-range [get]
func listJournalsByDateRange(journalSvc portssvc.JournalSvcFacade) gin.HandlerFunc {
	return func(c *gin.Context) {
		organizationID, _ := middleware.GetOrganizationIDFromContext(c)

		var params dto.ListJournalsByDateRangeParams
		if err := c.ShouldBindQuery(&params); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_FAILED", "message": err.Error()})
			return
		}

		resp, err := journalSvc.ListJournalsByDateRange(c.Request.Context(), organizationID, params.StartDate, params.EndDate,
			dto.ListJournalsParams{Limit: params.Limit, NextToken: params.NextToken})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// getJournalByExtUID godoc
// @Summary Get a journal by its caller-supplied external unique id
// @Tags journals
// @Produce json
// @Param extUID path string true "External unique id"
// @Success 200 {object} dto.JournalResponse
// @Router /journals/by-ext-uid/{extUID} [get]
func getJournalByExtUID(journalSvc portssvc.JournalSvcFacade) gin.HandlerFunc {
	return func(c *gin.Context) {
		organizationID, _ := middleware.GetOrganizationIDFromContext(c)
		extUID := c.Param("extUID")

		journal, err := journalSvc.GetJournalByExtUID(c.Request.Context(), organizationID, extUID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.ToJournalResponse(journal))
	}
}

// getJournal godoc
// @Summary Get a journal by ID
// @Tags journals
// @Produce json
// @Param journalID path string true "Journal ID"
// @Success 200 {object} dto.JournalResponse
// @Router /journals/{journalID} [get]
func getJournal(journalSvc portssvc.JournalSvcFacade) gin.HandlerFunc {
	return func(c *gin.Context) {
		organizationID, _ := middleware.GetOrganizationIDFromContext(c)
		journalID := c.Param("journalID")

		journal, err := journalSvc.GetJournalByID(c.Request.Context(), organizationID, journalID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.ToJournalResponse(journal))
	}
}

// listJournals godoc
// @Summary List journals within a period
// @Tags journals
// @Produce json
// @Param periodID path string true "Period ID"
// @Param limit query int false "Page size"
// @Param nextToken query string false "Pagination cursor"
// @Success 200 {object} dto.ListJournalsResponse
// @Router /periods/{periodID}/journals [get]
func listJournals(journalSvc portssvc.JournalSvcFacade) gin.HandlerFunc {
	return func(c *gin.Context) {
		organizationID, _ := middleware.GetOrganizationIDFromContext(c)
		periodID := c.Param("periodID")

		var params dto.ListJournalsParams
		if err := c.ShouldBindQuery(&params); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_FAILED", "message": err.Error()})
			return
		}

		resp, err := journalSvc.ListJournals(c.Request.Context(), organizationID, periodID, params)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// updateJournal godoc
// @Summary Update a draft journal
// @Tags journals
// @Accept json
// @Produce json
// @Param journalID path string true "Journal ID"
// @Param request body dto.UpdateJournalRequest true "Fields to update"
// @Success 200 {object} dto.JournalResponse
// @Router /journals/{journalID} [patch]
func updateJournal(journalSvc portssvc.JournalSvcFacade) gin.HandlerFunc {
	return func(c *gin.Context) {
		organizationID, _ := middleware.GetOrganizationIDFromContext(c)
		actorID, _ := middleware.GetActorIDFromContext(c)
		journalID := c.Param("journalID")

		var req dto.UpdateJournalRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_FAILED", "message": err.Error()})
			return
		}

		journal, err := journalSvc.UpdateDraftJournal(c.Request.Context(), organizationID, journalID, req, actorID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.ToJournalResponse(journal))
	}
}

// deleteJournal godoc
// @Summary Delete a draft journal
// @Tags journals
// @Param journalID path string true "Journal ID"
// @Success 204
// @Router /journals/{journalID} [delete]
func deleteJournal(journalSvc portssvc.JournalSvcFacade) gin.HandlerFunc {
	return func(c *gin.Context) {
		organizationID, _ := middleware.GetOrganizationIDFromContext(c)
		actorID, _ := middleware.GetActorIDFromContext(c)
		journalID := c.Param("journalID")

		if err := journalSvc.DeleteDraftJournal(c.Request.Context(), organizationID, journalID, actorID); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// postJournal godoc
// @Summary Post a draft journal, extending the hash chain
// @Tags journals
// @Produce json
// @Param journalID path string true "Journal ID"
// @Success 200 {object} dto.JournalResponse
// @Router /journals/{journalID}/post [post]
func postJournal(postingSvc portssvc.PostingSvc) gin.HandlerFunc {
	return func(c *gin.Context) {
		organizationID, _ := middleware.GetOrganizationIDFromContext(c)
		actorID, _ := middleware.GetActorIDFromContext(c)
		journalID := c.Param("journalID")

		journal, err := postingSvc.PostJournal(c.Request.Context(), organizationID, journalID, actorID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.ToJournalResponse(journal))
	}
}

// reverseJournal godoc
// @Summary Reverse a posted journal with a mirror posting
// @Tags journals
// @Accept json
// @Produce json
// @Param journalID path string true "Journal ID"
// @Param request body dto.ReverseJournalRequest true "Reversal details"
// @Success 201 {object} dto.JournalResponse
// @Router /journals/{journalID}/reverse [post]
func reverseJournal(postingSvc portssvc.PostingSvc) gin.HandlerFunc {
	return func(c *gin.Context) {
		organizationID, _ := middleware.GetOrganizationIDFromContext(c)
		actorID, _ := middleware.GetActorIDFromContext(c)
		journalID := c.Param("journalID")

		var req dto.ReverseJournalRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_FAILED", "message": err.Error()})
			return
		}

		mirror, err := postingSvc.ReverseJournal(c.Request.Context(), organizationID, journalID, actorID, portssvc.ReverseJournalRequest{
			Description:  req.Description,
			ReversalDate: req.ReversalDate,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, dto.ToJournalResponse(mirror))
	}
}

// verifyJournal godoc
// @Summary Verify a single journal's hash against its persisted fields
// @Tags hash-chain
// @Produce json
// @Param journalID path string true "Journal ID"
// @Success 200 {object} map[string]bool
// @Router /journals/{journalID}/verify [get]
func verifyJournal(hashSvc portssvc.HashSvc) gin.HandlerFunc {
	return func(c *gin.Context) {
		organizationID, _ := middleware.GetOrganizationIDFromContext(c)
		journalID := c.Param("journalID")

		valid, err := hashSvc.VerifyJournal(c.Request.Context(), organizationID, journalID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"valid": valid})
	}
}

// verifyChain godoc
// @Summary Verify the entire posted-journal hash chain for the organization
// @Tags hash-chain
// @Produce json
// @Success 200 {object} services.ChainVerificationResult
// @Router /chain/verify [get]
func verifyChain(hashSvc portssvc.HashSvc) gin.HandlerFunc {
	return func(c *gin.Context) {
		organizationID, _ := middleware.GetOrganizationIDFromContext(c)

		result, err := hashSvc.VerifyOrganizationChain(c.Request.Context(), organizationID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
