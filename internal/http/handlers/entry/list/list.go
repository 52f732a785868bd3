// Package list реализует HTTP-обработчик для получения последних записей гостевой книги.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/guestbook/internal/http/response"
	"github.com/magabrotheeeer/guestbook/internal/lib/sl"
	"github.com/magabrotheeeer/guestbook/internal/services/guestbook"
)

// Handler обрабатывает запросы на получение списка записей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики получения списка записей.
type Service interface {
	List(ctx context.Context, limit int) (guestbook.Listing, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Последние записи
// @Description Возвращает последние записи, новые первыми, и общее количество записей.
// @Tags Entries
// @Produce  json
// @Param limit query int false "Количество записей (по умолчанию 20, не более 100)"
// @Success 200 {object} response.Response "Список записей"
// @Failure 400 {object} response.ErrorResponse "Некорректный limit"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /entries [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.entry.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var limit int
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil {
			log.Info("failed to parse limit", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid limit"))
			return
		}
	}

	res, err := h.service.List(r.Context(), limit)
	if err != nil {
		log.Error("failed to list entries", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list"))
		return
	}

	log.Info("list entries", slog.Int("count", len(res.Entries)), slog.Int("total", res.Total))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"list_count": len(res.Entries),
		"total":      res.Total,
		"entries":    res.Entries,
	}))
}
