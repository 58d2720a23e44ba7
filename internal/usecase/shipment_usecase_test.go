package usecase_test

import (
	"context"
	"errors"
	"testing"

	"ton-shipping/internal/domain/model"
	repo "ton-shipping/internal/repository"
	"ton-shipping/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func validCreateInput() usecase.CreateShipmentInput {
	return usecase.CreateShipmentInput{
		SenderName:      " Acme Exports ",
		ReceiverName:    "Namib Traders",
		ReceiverAddress: "12 Sam Nujoma Ave, Walvis Bay",
		Packages: []usecase.PackageInput{
			{Description: "Machine parts", Quantity: 2, Weight: decimal.RequireFromString("120.5")},
			{Description: "Spares", Weight: decimal.RequireFromString("10")},
		},
	}
}

func newShipmentUsecase(tx *TxManagerMock) *usecase.ShipmentUsecase {
	clock := fixedClock{testNow}
	return usecase.NewShipmentUsecase(tx, usecase.NewNumberAllocator(clock), stubValidator{}, clock)
}

func TestShipmentUsecase_Create_Success(t *testing.T) {
	r := newTxReposMock()
	tx := newTx(r)

	r.sequences.On("Next", mock.Anything, model.SequenceScopeTracking, 2026).Return(int64(5), nil).Once()
	r.shipments.On("Create", mock.Anything, mock.MatchedBy(func(s *model.Shipment) bool {
		return s.TrackingNumber == "TON-2026-000005" &&
			s.Status == model.ShipmentStatusRegistered &&
			s.SenderName == "Acme Exports" &&
			s.DestinationPort == model.DefaultDestinationPort &&
			s.ShipmentType == model.ShipmentTypeImport &&
			s.TotalWeight.Equal(decimal.RequireFromString("130.5"))
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*model.Shipment).ID = 42
	}).Return(nil).Once()
	r.packages.On("CreateBulk", mock.Anything, int64(42), mock.MatchedBy(func(p []model.Package) bool {
		return len(p) == 2 && p[1].Quantity == 1
	})).Return(nil).Once()
	r.history.On("Append", mock.Anything, mock.MatchedBy(func(h model.ShipmentHistory) bool {
		return h.ShipmentID == 42 && h.Status == model.ShipmentStatusRegistered && h.ChangedBy == customerActor.UserID
	})).Return(nil).Once()

	out, err := newShipmentUsecase(tx).Create(context.Background(), customerActor, validCreateInput())

	assert.NoError(t, err)
	assert.Equal(t, "TON-2026-000005", out.Shipment.TrackingNumber)
	assert.Equal(t, "secondary", out.Shipment.StatusColor)
	assert.Len(t, out.History, 1)
	r.assertAll(t)
}

// 一意制約に当たったら同じTx内で次の番号を取り直す
func TestShipmentUsecase_Create_RetriesOnTrackingCollision(t *testing.T) {
	r := newTxReposMock()
	tx := newTx(r)

	r.sequences.On("Next", mock.Anything, model.SequenceScopeTracking, 2026).Return(int64(5), nil).Once()
	r.sequences.On("Next", mock.Anything, model.SequenceScopeTracking, 2026).Return(int64(6), nil).Once()
	r.shipments.On("Create", mock.Anything, mock.MatchedBy(func(s *model.Shipment) bool {
		return s.TrackingNumber == "TON-2026-000005"
	})).Return(repo.ErrDuplicate).Once()
	r.shipments.On("Create", mock.Anything, mock.MatchedBy(func(s *model.Shipment) bool {
		return s.TrackingNumber == "TON-2026-000006"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*model.Shipment).ID = 43
	}).Return(nil).Once()
	r.packages.On("CreateBulk", mock.Anything, int64(43), mock.Anything).Return(nil).Once()
	r.history.On("Append", mock.Anything, mock.Anything).Return(nil).Once()

	out, err := newShipmentUsecase(tx).Create(context.Background(), customerActor, validCreateInput())

	assert.NoError(t, err)
	assert.Equal(t, "TON-2026-000006", out.Shipment.TrackingNumber)
	// 採番し直しはTxをやり直さない（rollbackすると連番も戻るため）
	tx.AssertNumberOfCalls(t, "WithinTx", 1)
	r.assertAll(t)
}

func TestShipmentUsecase_Create_GivesUpAfterSecondCollision(t *testing.T) {
	r := newTxReposMock()
	tx := newTx(r)

	r.sequences.On("Next", mock.Anything, model.SequenceScopeTracking, 2026).Return(int64(5), nil).Once()
	r.sequences.On("Next", mock.Anything, model.SequenceScopeTracking, 2026).Return(int64(6), nil).Once()
	r.shipments.On("Create", mock.Anything, mock.Anything).Return(repo.ErrDuplicate)

	_, err := newShipmentUsecase(tx).Create(context.Background(), customerActor, validCreateInput())

	assertErrContains(t, err, "could not allocate a unique tracking number")
	assert.True(t, usecase.IsKind(err, usecase.KindConflict))
	tx.AssertNumberOfCalls(t, "WithinTx", 1)
	r.shipments.AssertNumberOfCalls(t, "Create", 2)
	r.sequences.AssertNumberOfCalls(t, "Next", 2)
	r.packages.AssertNotCalled(t, "CreateBulk", mock.Anything, mock.Anything, mock.Anything)
}

// 梱包の保存に失敗したらTxごと失敗させ、履歴は書かない
func TestShipmentUsecase_Create_PackageFailureAbortsTx(t *testing.T) {
	r := newTxReposMock()
	tx := newTx(r)

	r.sequences.On("Next", mock.Anything, model.SequenceScopeTracking, 2026).Return(int64(7), nil).Once()
	r.shipments.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*model.Shipment).ID = 44
	}).Return(nil).Once()
	r.packages.On("CreateBulk", mock.Anything, int64(44), mock.Anything).Return(errors.New("insert packages: connection reset")).Once()

	out, err := newShipmentUsecase(tx).Create(context.Background(), customerActor, validCreateInput())

	assertErrContains(t, err, "db error")
	assert.True(t, usecase.IsKind(err, usecase.KindInternal))
	assert.Error(t, tx.fnErr)
	assert.Empty(t, out.Shipment.TrackingNumber)
	r.history.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	r.assertAll(t)
}

func TestShipmentUsecase_Create_UnverifiedCustomer(t *testing.T) {
	r := newTxReposMock()
	tx := newTx(r)

	_, err := newShipmentUsecase(tx).Create(context.Background(), pendingActor, validCreateInput())

	assertErrContains(t, err, "account not verified")
	assert.True(t, usecase.IsKind(err, usecase.KindForbidden))
	tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestShipmentUsecase_Create_ValidationErrorsCollected(t *testing.T) {
	r := newTxReposMock()
	tx := newTx(r)
	clock := fixedClock{testNow}
	uc := usecase.NewShipmentUsecase(tx, usecase.NewNumberAllocator(clock),
		stubValidator{msgs: []string{"sender_name is required", "packages must contain at least 1 item(s)"}}, clock)

	_, err := uc.Create(context.Background(), customerActor, usecase.CreateShipmentInput{})

	he, ok := usecase.AsHTTPError(err)
	if assert.True(t, ok) {
		assert.Equal(t, 400, he.Status)
		assert.Len(t, he.Details, 2)
	}
	tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestShipmentUsecase_Detail_OtherCustomerForbidden(t *testing.T) {
	r := newTxReposMock()
	tx := newTx(r)
	r.shipments.On("FindByID", mock.Anything, int64(42)).Return(shipmentFixture(model.ShipmentStatusRegistered), nil)

	_, err := newShipmentUsecase(tx).Detail(context.Background(), otherCustomer, 42)

	assert.True(t, usecase.IsKind(err, usecase.KindForbidden))
	r.packages.AssertNotCalled(t, "ListByShipmentID", mock.Anything, mock.Anything)
}

func TestShipmentUsecase_Detail_OwnerSeesInvoice(t *testing.T) {
	r := newTxReposMock()
	tx := newTx(r)
	s := shipmentFixture(model.ShipmentStatusDocumentsSubmitted)
	inv := model.Invoice{ID: 3, ShipmentID: s.ID, InvoiceNumber: "INV-2026-000003", Status: model.InvoiceStatusPending}

	r.shipments.On("FindByID", mock.Anything, s.ID).Return(s, nil)
	r.packages.On("ListByShipmentID", mock.Anything, s.ID).Return([]model.Package{{ID: 1}}, nil)
	r.history.On("ListByShipmentID", mock.Anything, s.ID).Return([]model.ShipmentHistory{{Status: model.ShipmentStatusDocumentsSubmitted}}, nil)
	r.documents.On("ListByShipmentID", mock.Anything, s.ID).Return([]model.Document{}, nil)
	r.invoices.On("FindByShipmentID", mock.Anything, s.ID).Return(inv, nil)
	r.documents.On("HasPaymentProof", mock.Anything, inv.ID).Return(true, nil)

	out, err := newShipmentUsecase(tx).Detail(context.Background(), customerActor, s.ID)

	assert.NoError(t, err)
	if assert.NotNil(t, out.Invoice) {
		assert.Equal(t, "INV-2026-000003", out.Invoice.InvoiceNumber)
		assert.True(t, out.Invoice.HasPaymentProof)
	}
	r.assertAll(t)
}

func TestShipmentUsecase_Track_NormalizesInput(t *testing.T) {
	r := newTxReposMock()
	tx := newTx(r)
	s := shipmentFixture(model.ShipmentStatusInTransit)
	r.shipments.On("FindByTrackingNumber", mock.Anything, "TON-2026-000042").Return(s, nil)
	r.history.On("ListByShipmentID", mock.Anything, s.ID).Return([]model.ShipmentHistory{
		{Status: model.ShipmentStatusInTransit, Notes: "Departed"},
		{Status: model.ShipmentStatusRegistered},
	}, nil)

	out, err := newShipmentUsecase(tx).Track(context.Background(), "  ton-2026-000042 ")

	assert.NoError(t, err)
	assert.Equal(t, "TON-2026-000042", out.TrackingNumber)
	assert.Len(t, out.History, 2)
	assert.Equal(t, "Departed", out.History[0].Notes)
}

func TestShipmentUsecase_Track_Empty(t *testing.T) {
	tx := newTx(newTxReposMock())

	_, err := newShipmentUsecase(tx).Track(context.Background(), "   ")

	assertErrContains(t, err, "tracking number is required")
}

func TestShipmentUsecase_Track_NotFound(t *testing.T) {
	r := newTxReposMock()
	tx := newTx(r)
	r.shipments.On("FindByTrackingNumber", mock.Anything, "TON-2026-999999").Return(model.Shipment{}, repo.ErrNotFound)

	_, err := newShipmentUsecase(tx).Track(context.Background(), "TON-2026-999999")

	assertErrContains(t, err, "shipment not found")
}
