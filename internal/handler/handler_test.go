package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"ton-shipping/internal/domain/model"
	"ton-shipping/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newContext(method, target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	rec := httptest.NewRecorder()
	return e.NewContext(httptest.NewRequest(method, target, nil), rec), rec
}

func TestWriteError(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		code    int
		body    string
		wantLog bool
	}{
		{
			name: "validation with details",
			err:  usecase.NewValidationError("receiver_name is required", "packages must contain at least 1 item(s)"),
			code: http.StatusBadRequest,
			body: `{"error":"validation error","details":["receiver_name is required","packages must contain at least 1 item(s)"]}`,
		},
		{
			name: "conflict",
			err:  usecase.NewHTTPError(http.StatusConflict, "shipment was modified by another user"),
			code: http.StatusConflict,
			body: `{"error":"shipment was modified by another user"}`,
		},
		{
			name:    "wrapped 5xx hides cause",
			err:     &usecase.HTTPError{Status: 500, Kind: usecase.KindInternal, Message: "db error", Err: errors.New("pq: connection refused")},
			code:    http.StatusInternalServerError,
			body:    `{"error":"db error"}`,
			wantLog: true,
		},
		{
			name: "echo error",
			err:  echo.ErrStatusRequestEntityTooLarge,
			code: http.StatusRequestEntityTooLarge,
			body: `{"error":"Request Entity Too Large"}`,
		},
		{
			name:    "plain error",
			err:     errors.New("boom"),
			code:    http.StatusInternalServerError,
			body:    `{"error":"internal error"}`,
			wantLog: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			core, logs := observer.New(zap.ErrorLevel)
			c, rec := newContext(http.MethodGet, "/")

			require.NoError(t, writeError(c, zap.New(core), tc.err))

			assert.Equal(t, tc.code, rec.Code)
			assert.JSONEq(t, tc.body, rec.Body.String())
			assert.Equal(t, tc.wantLog, logs.Len() > 0)
		})
	}
}

func TestParamID(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/")
	c.SetParamNames("id", "doc_id")
	c.SetParamValues("42", "-1")

	id, err := paramID(c, "id")
	assert.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = paramID(c, "doc_id")
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
	assert.Equal(t, []string{"invalid doc_id"}, he.Details)
}

func TestQueryHelpers(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/?page=3&verified=false&user=abc")

	page, err := queryInt(c, "page", 1)
	assert.NoError(t, err)
	assert.Equal(t, 3, page)

	limit, err := queryInt(c, "limit", 20)
	assert.NoError(t, err)
	assert.Equal(t, 20, limit)

	verified, err := queryBoolPtr(c, "verified")
	assert.NoError(t, err)
	require.NotNil(t, verified)
	assert.False(t, *verified)

	_, err = queryInt64Ptr(c, "user")
	assert.Error(t, err)
}

func TestVocabulary(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/meta/vocabulary")

	require.NoError(t, Vocabulary(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body vocabularyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Statuses)
	assert.Equal(t, model.ShipmentStatusRegistered, body.Statuses[0].Value)
	assert.Equal(t, "secondary", body.Statuses[0].Color)
	assert.Contains(t, body.DocumentTypes, model.DocumentTypeBillOfLading)
	assert.Len(t, body.ShipmentTypes, 3)
}
