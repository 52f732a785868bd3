// Package create реализует HTTP-обработчик для добавления записи в гостевую книгу.
//
// Handler принимает JSON с полями name, mail и text, проверяет их, вызывает сервис
// и возвращает созданную запись вместе с присвоенным ID.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/guestbook/internal/http/response"
	"github.com/magabrotheeeer/guestbook/internal/lib/sl"
	"github.com/magabrotheeeer/guestbook/internal/lib/validate"
	"github.com/magabrotheeeer/guestbook/internal/metrics"
	"github.com/magabrotheeeer/guestbook/internal/models"
)

// Handler управляет HTTP-запросами на создание записей.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики гостевой книги
	validate *validator.Validate // Валидатор входящих данных
}

// Service описывает интерфейс бизнес-логики создания записи.
type Service interface {
	Create(ctx context.Context, req models.EntryRequest) (*models.Entry, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validate.New(),
	}
}

// ServeHTTP godoc
// @Summary Добавить запись
// @Description Проверяет имя, почту и текст, сохраняет запись и возвращает ее с присвоенным ID.
// @Tags Entries
// @Accept  json
// @Produce  json
// @Param request body models.EntryRequest true "Данные новой записи"
// @Success 201 {object} response.Response "Запись создана"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.Response "Ошибка валидации"
// @Failure 429 {object} response.ErrorResponse "Слишком много запросов"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при создании записи"
// @Router /entries [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.entry.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Debug("request body decoded", slog.String("name", req.Name))

	if err := h.validate.Struct(req); err != nil {
		verr := validate.FirstViolation(err)
		if verr == nil {
			log.Error("validator failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
			return
		}
		metrics.RecordValidationFailure(verr.Field)
		log.Info("validation failed", slog.String("field", verr.Field), sl.Err(verr))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.FieldError(verr.Field, verr.Error()))
		return
	}

	entry, err := h.service.Create(r.Context(), req)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			log.Info("entry rejected", slog.String("field", verr.Field), sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.FieldError(verr.Field, verr.Error()))
			return
		}
		log.Error("failed to create entry", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create entry"))
		return
	}

	log.Info("entry created", slog.String("id", entry.ID().String()))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"entry": entry,
	}))
}
