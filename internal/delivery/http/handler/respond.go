package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainCargo "cargo-transport/internal/domain/cargo"
	domainDevice "cargo-transport/internal/domain/device"
	domainDirectory "cargo-transport/internal/domain/directory"
	"cargo-transport/internal/logger"
	appErrors "cargo-transport/pkg/errors"
	"cargo-transport/pkg/utils"
)

// respondError maps a service error to an HTTP status and error code.
// Unexpected errors are logged server-side and surface as an opaque 500 so
// internals never leak to clients.
func respondError(c *gin.Context, err error) {
	switch {
	case isNotFound(err):
		utils.ErrorResponseWithCode(c, http.StatusNotFound, appErrors.CodeNotFound, err.Error())
	case errors.Is(err, appErrors.ErrVersionConflict):
		utils.ErrorResponseWithCode(c, http.StatusConflict, appErrors.CodeConflict, err.Error())
	case isInvariantViolation(err):
		utils.ErrorResponseWithCode(c, http.StatusUnprocessableEntity, appErrors.CodeInvariantViolation, err.Error())
	case isValidation(err):
		utils.ErrorResponseWithCode(c, http.StatusBadRequest, appErrors.CodeValidation, err.Error())
	default:
		logger.Error("Unhandled service error",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		utils.ErrorResponseWithCode(c, http.StatusInternalServerError, appErrors.CodeInternal, "internal error")
	}
}

func isNotFound(err error) bool {
	if appErrors.CodeOf(err) == appErrors.CodeNotFound {
		return true
	}
	for _, sentinel := range []error{
		domainCargo.ErrCargoNotFound,
		domainDevice.ErrDeviceNotFound,
		domainDirectory.ErrClientNotFound,
		domainDirectory.ErrDispatcherNotFound,
		domainDirectory.ErrRouteNotFound,
		domainDirectory.ErrVehicleNotFound,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func isInvariantViolation(err error) bool {
	if appErrors.CodeOf(err) == appErrors.CodeInvariantViolation {
		return true
	}
	for _, sentinel := range []error{
		domainCargo.ErrCargoInTransit,
		domainDevice.ErrDeviceAssigned,
		domainDevice.ErrDeviceOwnedElsewhere,
		domainDirectory.ErrClientInUse,
		domainDirectory.ErrDispatcherInUse,
		domainDirectory.ErrRouteInUse,
		domainDirectory.ErrVehicleInUse,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func isValidation(err error) bool {
	if appErrors.CodeOf(err) == appErrors.CodeValidation {
		return true
	}
	for _, sentinel := range []error{
		appErrors.ErrInvalidInput,
		domainCargo.ErrInvalidStatus,
		domainDevice.ErrInvalidType,
		domainDevice.ErrCoordinatesOutOfRange,
		domainDirectory.ErrDuplicatePlate,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
