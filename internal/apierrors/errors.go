package apierrors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/cloud-ru/finplan-go/internal/calculations"
	"github.com/cloud-ru/finplan-go/internal/export"
	"github.com/cloud-ru/finplan-go/internal/storage"
	"github.com/cloud-ru/finplan-go/internal/tools"
)

// APIError структурированная ошибка API
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error реализует интерфейс error
func (e *APIError) Error() string {
	return e.Message
}

// Render реализует render.Renderer
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError поле, не прошедшее проверку
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New создает APIError
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails создает APIError с деталями
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

var (
	ErrInvalidRequest    = New(http.StatusBadRequest, "INVALID_REQUEST", "Некорректный формат запроса")
	ErrNotFound          = New(http.StatusNotFound, "NOT_FOUND", "Ресурс не найден")
	ErrRateLimitExceeded = New(http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Превышен лимит запросов")
	ErrTimeout           = New(http.StatusGatewayTimeout, "TIMEOUT", "Превышено время обработки запроса")
	ErrInternalServer    = New(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Внутренняя ошибка сервера")
)

// InvalidRequestWithError ошибка формата запроса с текстом исходной ошибки
func InvalidRequestWithError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, "INVALID_REQUEST", "Некорректный формат запроса", err.Error())
}

// ErrValidation ошибка валидации конкретного поля
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED", "Ошибка валидации запроса", ValidationError{
		Field:   field,
		Message: message,
	})
}

// NotFoundError ресурс не найден
func NotFoundError(resource string) *APIError {
	return NewWithDetails(http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("не найдено: %s", resource), resource)
}

// FromError сопоставляет ошибку слоя расчетов или хранилища с ответом API
func FromError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var se *calculations.ScenarioError
	switch {
	case errors.As(err, &se):
		return ErrValidation(se.Field, se.Reason)
	case errors.Is(err, calculations.ErrInvalidScenario):
		return NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED", "Ошибка валидации запроса", err.Error())
	case errors.Is(err, tools.ErrInvalidParams), errors.Is(err, storage.ErrInvalidRecord),
		errors.Is(err, export.ErrUnsupportedFormat):
		return InvalidRequestWithError(err)
	case errors.Is(err, tools.ErrUnknownTool):
		return NewWithDetails(http.StatusNotFound, "TOOL_NOT_FOUND", "Инструмент не найден", err.Error())
	case errors.Is(err, export.ErrNothingToExport):
		return NewWithDetails(http.StatusUnprocessableEntity, "NOTHING_TO_EXPORT", "Результат не содержит таблиц для выгрузки", err.Error())
	case errors.Is(err, storage.ErrNotFound):
		return NotFoundError("record")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ErrTimeout
	}
	return ErrInternalServer
}

// ErrorResponse единый формат ответа с ошибкой
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error"`
	TraceID string    `json:"trace_id,omitempty"`
}

// NewErrorResponse оборачивает APIError в ответ
func NewErrorResponse(err *APIError) *ErrorResponse {
	return &ErrorResponse{
		Success: false,
		Error:   err,
	}
}

// Render реализует render.Renderer
func (e *ErrorResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return e.Error.Render(w, r)
}

// ErrorHandler централизованная обработка ошибок
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler создает обработчик ошибок
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger.With(slog.String("component", "error_handler")),
	}
}

// HandleError логирует ошибку и отвечает клиенту в едином формате.
// Ошибки валидации пишутся с уровнем warn, остальные с уровнем error.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	reqID := middleware.GetReqID(r.Context())
	apiErr := FromError(err)

	level := slog.LevelWarn
	if apiErr.StatusCode >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.String("error_code", apiErr.ErrorCode),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	resp := NewErrorResponse(apiErr)
	resp.TraceID = reqID
	if renderErr := render.Render(w, r, resp); renderErr != nil {
		h.logger.ErrorContext(r.Context(), "failed to render error", slog.String("error", renderErr.Error()))
	}
}
