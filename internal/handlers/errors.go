package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ledgerhq/ledgercore/internal/apperrors"
)

// statusForCode maps the apperrors taxonomy to the HTTP status spec §7
// expects at the RPC boundary.
func statusForCode(code apperrors.AppErrorCode) int {
	switch code {
	case apperrors.CodeValidationFailed:
		return http.StatusBadRequest
	case apperrors.CodeEntityNotFound:
		return http.StatusNotFound
	case apperrors.CodeBusinessRuleViolation, apperrors.CodePeriodClosed, apperrors.CodeJournalAlreadyPosted,
		apperrors.CodeUnbalancedJournal, apperrors.CodeInvalidHashChain:
		return http.StatusConflict
	case apperrors.CodeIdempotencyConflict:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the canonical error envelope for any error surfaced
// by a service call: {code, message, details} for apperrors.AppError,
// a generic 500 for anything else.
func respondError(c *gin.Context, err error) {
	var ae *apperrors.AppError
	if errors.As(err, &ae) {
		c.JSON(statusForCode(ae.Code), gin.H{
			"code":    ae.Code,
			"message": ae.Message,
			"details": ae.Details,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"code":    "INTERNAL_ERROR",
		"message": err.Error(),
	})
}
