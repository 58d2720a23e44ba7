package usecase_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"ton-shipping/internal/domain/model"
	repo "ton-shipping/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// WithinTx の中で渡す repos を固定して unit テストを回す
// fnが返したエラー（=rollbackの原因）をfnErrに残す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
	fnErr error
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.Called(ctx)
	m.fnErr = fn(m.Repos)
	return m.fnErr
}

type TxReposMock struct {
	users     *UserRepoMock
	shipments *ShipmentRepoMock
	packages  *PackageRepoMock
	history   *HistoryRepoMock
	documents *DocumentRepoMock
	invoices  *InvoiceRepoMock
	sequences *SequenceRepoMock
	audit     *AuditRepoMock
	tokens    *RefreshTokenRepoMock
}

func newTxReposMock() *TxReposMock {
	return &TxReposMock{
		users:     new(UserRepoMock),
		shipments: new(ShipmentRepoMock),
		packages:  new(PackageRepoMock),
		history:   new(HistoryRepoMock),
		documents: new(DocumentRepoMock),
		invoices:  new(InvoiceRepoMock),
		sequences: new(SequenceRepoMock),
		audit:     new(AuditRepoMock),
		tokens:    new(RefreshTokenRepoMock),
	}
}

func (r *TxReposMock) Users() repo.UserRepository                 { return r.users }
func (r *TxReposMock) Shipments() repo.ShipmentRepository         { return r.shipments }
func (r *TxReposMock) Packages() repo.PackageRepository           { return r.packages }
func (r *TxReposMock) History() repo.ShipmentHistoryRepository    { return r.history }
func (r *TxReposMock) Documents() repo.DocumentRepository         { return r.documents }
func (r *TxReposMock) Invoices() repo.InvoiceRepository           { return r.invoices }
func (r *TxReposMock) Sequences() repo.SequenceRepository         { return r.sequences }
func (r *TxReposMock) AuditLogs() repo.AuditLogRepository         { return r.audit }
func (r *TxReposMock) RefreshTokens() repo.RefreshTokenRepository { return r.tokens }

// 各mockのAssertExpectationsをまとめて呼ぶ
func (r *TxReposMock) assertAll(t *testing.T) {
	t.Helper()
	r.users.AssertExpectations(t)
	r.shipments.AssertExpectations(t)
	r.packages.AssertExpectations(t)
	r.history.AssertExpectations(t)
	r.documents.AssertExpectations(t)
	r.invoices.AssertExpectations(t)
	r.sequences.AssertExpectations(t)
	r.audit.AssertExpectations(t)
	r.tokens.AssertExpectations(t)
}

func newTx(r *TxReposMock) *TxManagerMock {
	tx := &TxManagerMock{Repos: r}
	tx.On("WithinTx", mock.Anything).Return(nil)
	return tx
}

// =====================
// Repository mocks
// =====================

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) Update(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepoMock) IncrementTokenVersion(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *UserRepoMock) ListCustomers(ctx context.Context, f repo.UserListFilter) ([]model.User, int64, error) {
	args := m.Called(ctx, f)
	users, _ := args.Get(0).([]model.User)
	return users, args.Get(1).(int64), args.Error(2)
}

func (m *UserRepoMock) SetVerified(ctx context.Context, userID int64, verified bool) error {
	return m.Called(ctx, userID, verified).Error(0)
}

func (m *UserRepoMock) CountCustomers(ctx context.Context) (int64, int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

type ShipmentRepoMock struct{ mock.Mock }

func (m *ShipmentRepoMock) Create(ctx context.Context, s *model.Shipment) error {
	return m.Called(ctx, s).Error(0)
}

func (m *ShipmentRepoMock) FindByID(ctx context.Context, shipmentID int64) (model.Shipment, error) {
	args := m.Called(ctx, shipmentID)
	s, _ := args.Get(0).(model.Shipment)
	return s, args.Error(1)
}

func (m *ShipmentRepoMock) FindByIDForUpdate(ctx context.Context, shipmentID int64) (model.Shipment, error) {
	args := m.Called(ctx, shipmentID)
	s, _ := args.Get(0).(model.Shipment)
	return s, args.Error(1)
}

func (m *ShipmentRepoMock) FindByTrackingNumber(ctx context.Context, trackingNumber string) (model.Shipment, error) {
	args := m.Called(ctx, trackingNumber)
	s, _ := args.Get(0).(model.Shipment)
	return s, args.Error(1)
}

func (m *ShipmentRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.Shipment, error) {
	args := m.Called(ctx, userID)
	s, _ := args.Get(0).([]model.Shipment)
	return s, args.Error(1)
}

func (m *ShipmentRepoMock) ListAdmin(ctx context.Context, f repo.AdminShipmentListFilter) ([]repo.ShipmentWithCustomer, int64, error) {
	args := m.Called(ctx, f)
	s, _ := args.Get(0).([]repo.ShipmentWithCustomer)
	return s, args.Get(1).(int64), args.Error(2)
}

func (m *ShipmentRepoMock) UpdateStatusIfVersion(ctx context.Context, shipmentID int64, expectedVersion int64, status model.ShipmentStatus, location *string) error {
	return m.Called(ctx, shipmentID, expectedVersion, status, location).Error(0)
}

func (m *ShipmentRepoMock) CountByStatus(ctx context.Context, userID *int64) (map[model.ShipmentStatus]int64, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(map[model.ShipmentStatus]int64)
	return c, args.Error(1)
}

func (m *ShipmentRepoMock) ListRecent(ctx context.Context, limit int) ([]repo.ShipmentWithCustomer, error) {
	args := m.Called(ctx, limit)
	s, _ := args.Get(0).([]repo.ShipmentWithCustomer)
	return s, args.Error(1)
}

func (m *ShipmentRepoMock) ListByStatuses(ctx context.Context, statuses []model.ShipmentStatus, limit int) ([]repo.ShipmentWithCustomer, error) {
	args := m.Called(ctx, statuses, limit)
	s, _ := args.Get(0).([]repo.ShipmentWithCustomer)
	return s, args.Error(1)
}

type PackageRepoMock struct{ mock.Mock }

func (m *PackageRepoMock) CreateBulk(ctx context.Context, shipmentID int64, pkgs []model.Package) error {
	return m.Called(ctx, shipmentID, pkgs).Error(0)
}

func (m *PackageRepoMock) ListByShipmentID(ctx context.Context, shipmentID int64) ([]model.Package, error) {
	args := m.Called(ctx, shipmentID)
	p, _ := args.Get(0).([]model.Package)
	return p, args.Error(1)
}

type HistoryRepoMock struct{ mock.Mock }

func (m *HistoryRepoMock) Append(ctx context.Context, h model.ShipmentHistory) error {
	return m.Called(ctx, h).Error(0)
}

func (m *HistoryRepoMock) ListByShipmentID(ctx context.Context, shipmentID int64) ([]model.ShipmentHistory, error) {
	args := m.Called(ctx, shipmentID)
	h, _ := args.Get(0).([]model.ShipmentHistory)
	return h, args.Error(1)
}

type DocumentRepoMock struct{ mock.Mock }

func (m *DocumentRepoMock) Create(ctx context.Context, d *model.Document) error {
	return m.Called(ctx, d).Error(0)
}

func (m *DocumentRepoMock) FindByID(ctx context.Context, documentID int64) (model.Document, error) {
	args := m.Called(ctx, documentID)
	d, _ := args.Get(0).(model.Document)
	return d, args.Error(1)
}

func (m *DocumentRepoMock) ListByShipmentID(ctx context.Context, shipmentID int64) ([]model.Document, error) {
	args := m.Called(ctx, shipmentID)
	d, _ := args.Get(0).([]model.Document)
	return d, args.Error(1)
}

func (m *DocumentRepoMock) ListPaymentProofs(ctx context.Context, invoiceID int64) ([]model.Document, error) {
	args := m.Called(ctx, invoiceID)
	d, _ := args.Get(0).([]model.Document)
	return d, args.Error(1)
}

func (m *DocumentRepoMock) HasPaymentProof(ctx context.Context, invoiceID int64) (bool, error) {
	args := m.Called(ctx, invoiceID)
	return args.Bool(0), args.Error(1)
}

type InvoiceRepoMock struct{ mock.Mock }

func (m *InvoiceRepoMock) Create(ctx context.Context, inv *model.Invoice, items []model.InvoiceFeeItem) error {
	return m.Called(ctx, inv, items).Error(0)
}

func (m *InvoiceRepoMock) FindByID(ctx context.Context, invoiceID int64) (model.Invoice, error) {
	args := m.Called(ctx, invoiceID)
	inv, _ := args.Get(0).(model.Invoice)
	return inv, args.Error(1)
}

func (m *InvoiceRepoMock) FindByIDForUpdate(ctx context.Context, invoiceID int64) (model.Invoice, error) {
	args := m.Called(ctx, invoiceID)
	inv, _ := args.Get(0).(model.Invoice)
	return inv, args.Error(1)
}

func (m *InvoiceRepoMock) FindByShipmentID(ctx context.Context, shipmentID int64) (model.Invoice, error) {
	args := m.Called(ctx, shipmentID)
	inv, _ := args.Get(0).(model.Invoice)
	return inv, args.Error(1)
}

func (m *InvoiceRepoMock) ListByShipmentIDs(ctx context.Context, shipmentIDs []int64) (map[int64]model.Invoice, error) {
	args := m.Called(ctx, shipmentIDs)
	inv, _ := args.Get(0).(map[int64]model.Invoice)
	return inv, args.Error(1)
}

func (m *InvoiceRepoMock) ListItems(ctx context.Context, invoiceID int64) ([]model.InvoiceFeeItem, error) {
	args := m.Called(ctx, invoiceID)
	items, _ := args.Get(0).([]model.InvoiceFeeItem)
	return items, args.Error(1)
}

func (m *InvoiceRepoMock) MarkPaidIfPending(ctx context.Context, invoiceID int64, paidAt time.Time) (bool, error) {
	args := m.Called(ctx, invoiceID, paidAt)
	return args.Bool(0), args.Error(1)
}

type SequenceRepoMock struct{ mock.Mock }

func (m *SequenceRepoMock) Next(ctx context.Context, scope model.SequenceScope, year int) (int64, error) {
	args := m.Called(ctx, scope, year)
	return args.Get(0).(int64), args.Error(1)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Record(ctx context.Context, entry model.AuditLog) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *AuditRepoMock) Search(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, int64, error) {
	args := m.Called(ctx, f)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Get(1).(int64), args.Error(2)
}

type RefreshTokenRepoMock struct{ mock.Mock }

func (m *RefreshTokenRepoMock) Create(ctx context.Context, token *model.RefreshToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *RefreshTokenRepoMock) FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	t, _ := args.Get(0).(*model.RefreshToken)
	return t, args.Error(1)
}

func (m *RefreshTokenRepoMock) MarkUsed(ctx context.Context, tokenID string, usedAt time.Time) error {
	return m.Called(ctx, tokenID, usedAt).Error(0)
}

func (m *RefreshTokenRepoMock) DeleteAllByUserID(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *RefreshTokenRepoMock) DeleteByID(ctx context.Context, tokenID string) error {
	return m.Called(ctx, tokenID).Error(0)
}

// =====================
// FileStore / Clock / ID
// =====================

type FileStoreMock struct {
	mock.Mock
	saved map[string][]byte
}

func (m *FileStoreMock) Save(ctx context.Context, key string, contentType string, r io.Reader) (int64, error) {
	args := m.Called(ctx, key, contentType)
	if err := args.Error(1); err != nil {
		return 0, err
	}
	b, _ := io.ReadAll(r)
	if m.saved == nil {
		m.saved = map[string][]byte{}
	}
	m.saved[key] = b
	return int64(len(b)), nil
}

func (m *FileStoreMock) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(m.saved[key])), nil
}

func (m *FileStoreMock) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type fixedIDs struct{ id string }

func (g fixedIDs) NewID() string { return g.id }

// go-playgroundを通さずに済ませる
type stubValidator struct{ msgs []string }

func (v stubValidator) ValidateStruct(s interface{}) []string { return v.msgs }

// =====================
// fixtures
// =====================

var (
	adminActor    = model.Actor{UserID: 1, Role: model.RoleAdmin, Verified: true}
	customerActor = model.Actor{UserID: 7, Role: model.RoleCustomer, Verified: true}
	pendingActor  = model.Actor{UserID: 8, Role: model.RoleCustomer, Verified: false}
	otherCustomer = model.Actor{UserID: 9, Role: model.RoleCustomer, Verified: true}
)

func shipmentFixture(status model.ShipmentStatus) model.Shipment {
	return model.Shipment{
		ID:             42,
		TrackingNumber: "TON-2026-000042",
		UserID:         customerActor.UserID,
		Status:         status,
		Version:        3,
	}
}

// 先頭が%PDFのダミー
func pdfBody() string {
	return "%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n"
}

// =====================
// Helper: error contains（HTTPErrorの実装詳細に依存しない）
// =====================

func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}
