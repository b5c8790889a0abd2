package register_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pokedex_service/internal/auth"
	"pokedex_service/internal/http_server/handlers/register"
	"pokedex_service/internal/lib/api/validation"
	sl "pokedex_service/internal/lib/logger"
	"pokedex_service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRegisterer struct {
	mock.Mock
}

func (m *mockRegisterer) RegisterNewUser(ctx context.Context, email, pass string) (string, error) {
	args := m.Called(ctx, email, pass)
	return args.String(0), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) SendMessage(ctx context.Context, msg models.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func TestRegisterHandler(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		regErr      error
		publishErr  error
		callsAuth   bool
		wantStatus  int
		wantMessage string
		wantError   string
	}{
		{
			name:        "success",
			body:        `{"email":"ash@kanto.com","password":"pikachu"}`,
			callsAuth:   true,
			wantStatus:  http.StatusOK,
			wantMessage: "ash@kanto.com created successfully",
		},
		{
			name:        "publish failure does not fail registration",
			body:        `{"email":"ash@kanto.com","password":"pikachu"}`,
			callsAuth:   true,
			publishErr:  errors.New("broker down"),
			wantStatus:  http.StatusOK,
			wantMessage: "ash@kanto.com created successfully",
		},
		{
			name:       "duplicate email",
			body:       `{"email":"ash@kanto.com","password":"pikachu"}`,
			callsAuth:  true,
			regErr:     fmt.Errorf("auth.RegisterNewUser: %w", auth.ErrUserExists),
			wantStatus: http.StatusConflict,
			wantError:  "Email already exists",
		},
		{
			name:       "storage failure",
			body:       `{"email":"ash@kanto.com","password":"pikachu"}`,
			callsAuth:  true,
			regErr:     errors.New("connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "Internal error",
		},
		{
			name:       "missing password",
			body:       `{"email":"ash@kanto.com"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "field password is a required field",
		},
		{
			name:       "malformed json",
			body:       `{"email":`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Failed to decode request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(mockRegisterer)
			pub := new(mockPublisher)

			if tt.callsAuth {
				users.On("RegisterNewUser", mock.Anything, "ash@kanto.com", "pikachu").
					Return("user-1", tt.regErr).Once()
			}
			if tt.callsAuth && tt.regErr == nil {
				pub.On("SendMessage", mock.Anything, mock.MatchedBy(func(msg models.Message) bool {
					return msg.Email == "ash@kanto.com"
				})).Return(tt.publishErr).Once()
			}

			h := register.New(sl.NewDiscardLogger(), validation.New(), users, pub)

			req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()

			h.ServeHTTP(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)

			var body register.Response
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))

			assert.Equal(t, tt.wantMessage, body.Message)
			assert.Equal(t, tt.wantError, body.Error)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "user-1", body.UserID)
			}

			users.AssertExpectations(t)
			pub.AssertExpectations(t)
		})
	}
}

func TestRegisterHandler_LongPassword(t *testing.T) {
	longPass := strings.Repeat("p", 100)

	users := new(mockRegisterer)
	users.On("RegisterNewUser", mock.Anything, "ash@kanto.com", longPass).Return("user-1", nil).Once()

	pub := new(mockPublisher)
	pub.On("SendMessage", mock.Anything, mock.Anything).Return(nil).Once()

	h := register.New(sl.NewDiscardLogger(), validation.New(), users, pub)

	body := fmt.Sprintf(`{"email":"ash@kanto.com","password":%q}`, longPass)
	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	users.AssertExpectations(t)
}
