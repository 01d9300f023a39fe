package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/cloud-ru/finplan-go/internal/apierrors"
	"github.com/cloud-ru/finplan-go/internal/export"
	"github.com/cloud-ru/finplan-go/internal/metrics"
	"github.com/cloud-ru/finplan-go/internal/storage"
	"github.com/cloud-ru/finplan-go/internal/tools"
)

// maxBodyBytes предел размера тела запроса
const maxBodyBytes = 1 << 20

// CalculationHandler запускает инструменты и сохраняет результаты
type CalculationHandler struct {
	registry     *tools.Registry
	store        storage.Store
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewCalculationHandler создает обработчик расчетов
func NewCalculationHandler(registry *tools.Registry, store storage.Store, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *CalculationHandler {
	return &CalculationHandler{
		registry:     registry,
		store:        store,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("handler", "calculation")),
	}
}

// RegisterRoutes регистрирует маршруты расчетов
func (h *CalculationHandler) RegisterRoutes(r chi.Router) {
	r.Get("/tools", h.ListTools)
	r.Post("/calculations/{tool}", h.Calculate)
	r.Post("/calculations/{tool}/export", h.Export)
	r.Post("/users/{userID}/calculations/{tool}", h.CalculateAndSave)
	r.Get("/users/{userID}/records", h.ListRecords)
	r.Get("/records/{id}", h.GetRecord)
}

// SavedCalculation ответ на расчет с сохранением
type SavedCalculation struct {
	Record storage.Record `json:"record"`
	Result interface{}    `json:"result"`
}

// ListTools GET /api/v1/tools, список инструментов
func (h *CalculationHandler) ListTools(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"tools": h.registry.List(),
	})
}

// Calculate POST /api/v1/calculations/{tool}
func (h *CalculationHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	result, _, err := h.run(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

// Export POST /api/v1/calculations/{tool}/export?format=xlsx|csv
func (h *CalculationHandler) Export(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, _, err := h.run(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	tables, err := export.Tables(result)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	tool := chi.URLParam(r, "tool")
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, tool, format))

	if format == export.FormatCSV {
		err = export.WriteCSV(w, tables)
	} else {
		err = export.WriteXLSX(w, tables)
	}
	if err != nil {
		// Заголовки уже отправлены, остается только залогировать
		h.logger.ErrorContext(r.Context(), "export failed",
			slog.String("tool", tool),
			slog.String("error", err.Error()))
	}
}

// CalculateAndSave POST /api/v1/users/{userID}/calculations/{tool}, расчет с сохранением
func (h *CalculationHandler) CalculateAndSave(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, params, err := h.run(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	tool, _ := h.registry.Lookup(chi.URLParam(r, "tool"))
	rec, err := h.save(r, userID, tool, params, result)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "calculation saved",
		slog.Int64("user_id", userID),
		slog.String("tool", tool.Name),
		slog.String("record_id", rec.ID.String()))

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, SavedCalculation{Record: rec, Result: result})
}

// ListRecords GET /api/v1/users/{userID}/records?kind=, новые записи первыми
func (h *CalculationHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	kind := storage.Kind(r.URL.Query().Get("kind"))
	if kind != "" && !kind.Valid() {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("kind", fmt.Sprintf("unknown kind %q", kind)))
		return
	}

	records, err := h.store.ListByUser(r.Context(), userID, kind)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"records": records,
		"count":   len(records),
	})
}

// GetRecord GET /api/v1/records/{id}
func (h *CalculationHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("id", "значение должно быть UUID"))
		return
	}

	rec, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, rec)
}

// run разбирает тело запроса и вызывает инструмент из URL
func (h *CalculationHandler) run(r *http.Request) (interface{}, map[string]interface{}, error) {
	params := map[string]interface{}{}
	if err := render.DecodeJSON(http.MaxBytesReader(nil, r.Body, maxBodyBytes), &params); err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, apierrors.InvalidRequestWithError(err)
	}

	result, err := h.registry.Call(r.Context(), chi.URLParam(r, "tool"), params)
	if err != nil {
		return nil, nil, err
	}
	return result, params, nil
}

func (h *CalculationHandler) save(r *http.Request, userID int64, tool tools.Tool, params map[string]interface{}, result interface{}) (storage.Record, error) {
	input, err := json.Marshal(params)
	if err != nil {
		return storage.Record{}, fmt.Errorf("marshal input: %w", err)
	}

	short := result
	if s, ok := result.(tools.Summarizer); ok {
		short = s.Summary()
	}
	summary, err := json.Marshal(short)
	if err != nil {
		return storage.Record{}, fmt.Errorf("marshal summary: %w", err)
	}

	rec, err := h.store.Create(r.Context(), storage.Record{
		UserID:  userID,
		Kind:    tool.Kind,
		Tool:    tool.Name,
		Input:   input,
		Summary: summary,
	})
	if err != nil {
		return storage.Record{}, err
	}
	metrics.RecordsStored.WithLabelValues(string(rec.Kind)).Inc()
	return rec, nil
}

func parseUserID(r *http.Request) (int64, error) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || userID <= 0 {
		return 0, apierrors.ErrValidation("userID", "значение должно быть положительным целым")
	}
	return userID, nil
}
