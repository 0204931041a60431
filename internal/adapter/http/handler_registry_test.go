package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/kompas/kompas/internal/domain"
)

func newRegistryRouter(auth *AuthMiddleware) *mux.Router {
	router := mux.NewRouter()
	NewRegistryHandler(domain.NewRegistry(), auth).RegisterRoutes(router)
	return router
}

func doGet(t *testing.T, router *mux.Router, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestListEntities(t *testing.T) {
	router := newRegistryRouter(NewAuthMiddleware("", false))

	recorder := doGet(t, router, "/api/v1/registry/entities", "")
	assert.Equal(t, http.StatusOK, recorder.Code)

	var response struct {
		Status bool                `json:"status"`
		Data   []domain.EntityInfo `json:"data"`
	}
	err := json.Unmarshal(recorder.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.True(t, response.Status)
	assert.Len(t, response.Data, 7)
	assert.Equal(t, domain.EntityOpportunity, response.Data[0].Code)
}

func TestListOperations(t *testing.T) {
	router := newRegistryRouter(NewAuthMiddleware("", false))

	recorder := doGet(t, router, "/api/v1/registry/entities/OPPORTUNITY/operations", "")
	assert.Equal(t, http.StatusOK, recorder.Code)

	var response struct {
		Data []domain.OperationInfo `json:"data"`
	}
	err := json.Unmarshal(recorder.Body.Bytes(), &response)
	assert.NoError(t, err)

	codes := make([]domain.Operation, 0, len(response.Data))
	for _, op := range response.Data {
		codes = append(codes, op.Code)
	}
	assert.Contains(t, codes, domain.OperationWon)
	assert.Contains(t, codes, domain.OperationLost)

	recorder = doGet(t, router, "/api/v1/registry/entities/SPACESHIP/operations", "")
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestListValueFields(t *testing.T) {
	router := newRegistryRouter(NewAuthMiddleware("", false))

	recorder := doGet(t, router, "/api/v1/registry/entities/OPPORTUNITY/value-fields?unit=CURRENCY", "")
	assert.Equal(t, http.StatusOK, recorder.Code)

	var response struct {
		Data []domain.ValueField `json:"data"`
	}
	err := json.Unmarshal(recorder.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Len(t, response.Data, 2)
	for _, f := range response.Data {
		assert.Equal(t, domain.KindAmount, f.Kind)
	}

	// unit is mandatory
	recorder = doGet(t, router, "/api/v1/registry/entities/OPPORTUNITY/value-fields", "")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = doGet(t, router, "/api/v1/registry/entities/SPACESHIP/value-fields?unit=COUNT", "")
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestRegistryRoutesRequireAuth(t *testing.T) {
	secret := "test-secret"
	router := newRegistryRouter(NewAuthMiddleware(secret, true))

	recorder := doGet(t, router, "/api/v1/registry/entities", "")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder = doGet(t, router, "/api/v1/registry/entities", "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "admin"}).SignedString([]byte(secret))
	assert.NoError(t, err)

	recorder = doGet(t, router, "/api/v1/registry/entities", token)
	assert.Equal(t, http.StatusOK, recorder.Code)
}
