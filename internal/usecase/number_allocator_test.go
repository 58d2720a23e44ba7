package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"ton-shipping/internal/domain/model"
	"ton-shipping/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestFormatSequenceNumber(t *testing.T) {
	assert.Equal(t, "TON-2026-000001", usecase.FormatSequenceNumber("TON", 2026, 1))
	assert.Equal(t, "INV-2027-000123", usecase.FormatSequenceNumber("INV", 2027, 123))
	assert.Equal(t, "TON-2026-999999", usecase.FormatSequenceNumber("TON", 2026, 999999))
}

func TestNumberAllocator_TrackingNumber_UsesCurrentYear(t *testing.T) {
	r := newTxReposMock()
	r.sequences.On("Next", mock.Anything, model.SequenceScopeTracking, 2026).Return(int64(17), nil)

	a := usecase.NewNumberAllocator(fixedClock{testNow})
	tn, err := a.TrackingNumber(context.Background(), r)

	assert.NoError(t, err)
	assert.Equal(t, "TON-2026-000017", tn)
	r.sequences.AssertExpectations(t)
}

func TestNumberAllocator_InvoiceNumber_SeparateScope(t *testing.T) {
	r := newTxReposMock()
	r.sequences.On("Next", mock.Anything, model.SequenceScopeInvoice, 2026).Return(int64(1), nil)

	a := usecase.NewNumberAllocator(fixedClock{testNow})
	no, err := a.InvoiceNumber(context.Background(), r)

	assert.NoError(t, err)
	assert.Equal(t, "INV-2026-000001", no)
}

func TestNumberAllocator_Exhausted(t *testing.T) {
	r := newTxReposMock()
	r.sequences.On("Next", mock.Anything, model.SequenceScopeTracking, 2026).Return(int64(1000000), nil)

	a := usecase.NewNumberAllocator(fixedClock{testNow})
	_, err := a.TrackingNumber(context.Background(), r)

	assertErrContains(t, err, "sequence exhausted for 2026")
	he, ok := usecase.AsHTTPError(err)
	if assert.True(t, ok) {
		assert.Equal(t, http.StatusConflict, he.Status)
	}
}

func TestNumberAllocator_DBError(t *testing.T) {
	r := newTxReposMock()
	r.sequences.On("Next", mock.Anything, model.SequenceScopeTracking, 2026).Return(int64(0), errors.New("conn reset"))

	a := usecase.NewNumberAllocator(fixedClock{testNow})
	_, err := a.TrackingNumber(context.Background(), r)

	assert.True(t, usecase.IsKind(err, usecase.KindInternal))
}
