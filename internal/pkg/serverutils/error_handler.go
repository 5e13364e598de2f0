package serverutils

import (
	"errors"

	"notekeep-be/internal/ordering"
	"notekeep-be/internal/pkg/logger"
	"notekeep-be/internal/repository/contract"
	"notekeep-be/internal/rules"
	"notekeep-be/internal/service"
	"notekeep-be/pkg/database"

	"github.com/gofiber/fiber/v2"
)

type classified struct {
	code    int
	reason  string
	message string
}

// Classify maps an error returned by a handler to its HTTP status and body.
func Classify(err error) (code int, reason, message string) {
	c := classify(err)
	return c.code, c.reason, c.message
}

func classify(err error) classified {
	var ve *rules.ValidationError
	if errors.As(err, &ve) {
		return classified{fiber.StatusBadRequest, string(ve.Reason), ve.Message}
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return classified{fe.Code, "", fe.Message}
	}

	switch {
	case errors.Is(err, ordering.ErrIndexOutOfRange):
		return classified{fiber.StatusUnprocessableEntity, "INDEX_OUT_OF_RANGE", err.Error()}
	case errors.Is(err, ordering.ErrStateInconsistency):
		return classified{fiber.StatusConflict, "STATE_INCONSISTENCY", err.Error()}
	case errors.Is(err, ordering.ErrUnknownSequence):
		return classified{fiber.StatusBadRequest, "UNKNOWN_SEQUENCE", err.Error()}
	case errors.Is(err, service.ErrNoteNotFound), errors.Is(err, contract.ErrNoteNotFound):
		return classified{fiber.StatusNotFound, "", "Note not found"}
	case errors.Is(err, service.ErrReorderInProgress):
		return classified{fiber.StatusConflict, "REORDER_IN_PROGRESS", err.Error()}
	case database.IsTransient(err):
		return classified{fiber.StatusServiceUnavailable, "", "Service temporarily unavailable, please retry"}
	}
	return classified{fiber.StatusInternalServerError, "", "Internal server error"}
}

// ErrorHandlerMiddleware turns handler errors into BaseResponse bodies.
// Server side failures are logged with the original error; clients only see
// a generic message for them.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		c := classify(err)
		if c.code >= fiber.StatusInternalServerError {
			log.Error("HTTP", "Request failed", map[string]interface{}{
				"method": ctx.Method(),
				"path":   ctx.Path(),
				"status": c.code,
				"error":  err.Error(),
			})
		}

		return ctx.Status(c.code).JSON(RejectedResponse(c.code, c.reason, c.message))
	}
}
