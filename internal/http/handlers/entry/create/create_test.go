package create

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/guestbook/internal/models"
)

// MockService реализует интерфейс create.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, req models.EntryRequest) (*models.Entry, error) {
	args := m.Called(ctx, req)
	if res := args.Get(0); res != nil {
		return res.(*models.Entry), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestCreateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	created, err := models.RehydrateEntry(42, "Alice", "alice@example.com", "Hello!",
		time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	validReq := models.EntryRequest{Name: "Alice", Mail: "alice@example.com", Text: "Hello!"}

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   []string
	}{
		{
			name: "успешное создание записи",
			body: `{"name":"Alice","mail":"alice@example.com","text":"Hello!"}`,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, validReq).Return(created, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   []string{`"status":"OK"`, `"id":42`, `"mail":"alice@example.com"`},
		},
		{
			name:           "некорректный JSON",
			body:           `{"name":`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   []string{`{"status":"Error","error":"invalid request body"}`},
		},
		{
			name:           "пустые поля",
			body:           `{"name":"  ","mail":"","text":"Hi"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   []string{`{"status":"Error","error":"Name must not be null or empty!","fields":["name"]}`},
		},
		{
			name:           "все поля некорректны, возвращается первая ошибка",
			body:           `{"name":"","mail":"not-an-email","text":" "}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   []string{`{"status":"Error","error":"Name must not be null or empty!","fields":["name"]}`},
		},
		{
			name:           "пустая почта раньше текста",
			body:           `{"name":"Bob","mail":" ","text":""}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   []string{`{"status":"Error","error":"Mail must not be null or empty!","fields":["mail"]}`},
		},
		{
			name:           "неверный формат почты",
			body:           `{"name":"Bob","mail":"not-an-email","text":"Hi"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   []string{`{"status":"Error","error":"Mail must have a valid format!","fields":["mail"]}`},
		},
		{
			name:           "пустой текст",
			body:           `{"name":"Bob","mail":"bob@example.com","text":"\t"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   []string{`{"status":"Error","error":"Text must not be null or empty!","fields":["text"]}`},
		},
		{
			name: "сервис отклонил запись",
			body: `{"name":"Alice","mail":"alice@example.com","text":"Hello!"}`,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, validReq).
					Return(nil, &models.ValidationError{Field: models.FieldText, Err: models.ErrEmptyText})
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   []string{`"error":"Text must not be null or empty!"`, `"fields":["text"]`},
		},
		{
			name: "ошибка сервиса",
			body: `{"name":"Alice","mail":"alice@example.com","text":"Hello!"}`,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, validReq).Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   []string{`{"status":"Error","error":"could not create entry"}`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/entries", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			for _, want := range tt.expectedBody {
				assert.Contains(t, w.Body.String(), want)
			}

			mockService.AssertExpectations(t)
			if len(mockService.ExpectedCalls) == 0 {
				mockService.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			}
		})
	}
}
