package serverutils

import (
	"errors"

	"notes-intelligence-be/internal/repository/contract"
	"notes-intelligence-be/pkg/ingest"
	"notes-intelligence-be/pkg/llm"
	"notes-intelligence-be/pkg/pipeline"
	"notes-intelligence-be/pkg/style"

	"github.com/gofiber/fiber/v2"
)

const (
	ErrTypeIngestion  = "INGESTION_FAILED"
	ErrTypeGeneration = "GENERATION_FAILED"
	ErrTypeLearning   = "STYLE_LEARNING_FAILED"
	ErrTypeValidation = "VALIDATION_FAILED"
	ErrTypeNotFound   = "NOT_FOUND"
	ErrTypeInternal   = "INTERNAL_ERROR"
)

// Classify maps an error to its HTTP status and error type.
func Classify(err error) (int, string) {
	var (
		extractionErr *ingest.ExtractionError
		generationErr *llm.GenerationError
		validationErr *ValidationError
		fiberErr      *fiber.Error
	)

	switch {
	case errors.As(err, &validationErr):
		return fiber.StatusBadRequest, ErrTypeValidation
	case errors.Is(err, contract.ErrNotFound):
		return fiber.StatusNotFound, ErrTypeNotFound
	case errors.As(err, &extractionErr):
		return fiber.StatusUnprocessableEntity, ErrTypeIngestion
	case errors.Is(err, style.ErrLearnExhausted):
		return fiber.StatusUnprocessableEntity, ErrTypeLearning
	case errors.As(err, &generationErr):
		return fiber.StatusBadGateway, ErrTypeGeneration
	case errors.As(err, &fiberErr):
		return fiberErr.Code, ""
	default:
		return fiber.StatusInternalServerError, ErrTypeInternal
	}
}

// ErrorHandler renders every error returned by a handler as an ErrorBody.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	code, errType := Classify(err)
	body := ErrorBody{Code: code, Message: err.Error(), ErrorType: errType}

	var stageErr *pipeline.StageError
	if errors.As(err, &stageErr) {
		body.Details = fiber.Map{"stage": stageErr.Stage}
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		body.Details = validationErr.Fields
	}

	return ctx.Status(code).JSON(body)
}
