// Package read реализует HTTP-обработчик для получения записи гостевой книги по ID.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/guestbook/internal/http/response"
	"github.com/magabrotheeeer/guestbook/internal/lib/sl"
	"github.com/magabrotheeeer/guestbook/internal/models"
	"github.com/magabrotheeeer/guestbook/internal/storage/repository"
)

// Handler обрабатывает запросы на получение записи по идентификатору.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения записи.
type Service interface {
	Read(ctx context.Context, id int64) (*models.Entry, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить запись
// @Description Возвращает запись гостевой книги по ID.
// @Tags Entries
// @Produce  json
// @Param id path int true "ID записи"
// @Success 200 {object} response.Response "Запись"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 404 {object} response.ErrorResponse "Запись не найдена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /entries/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.entry.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		log.Info("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid id"))
		return
	}

	entry, err := h.service.Read(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			log.Info("entry not found", slog.Int64("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("entry not found"))
			return
		}
		log.Error("failed to read entry", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read entry"))
		return
	}

	log.Info("success to read entry", slog.Int64("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"entry": entry,
	}))
}
