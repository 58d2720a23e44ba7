package repository

import (
	"context"

	repo "ton-shipping/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	users         repo.UserRepository
	shipments     repo.ShipmentRepository
	packages      repo.PackageRepository
	history       repo.ShipmentHistoryRepository
	documents     repo.DocumentRepository
	invoices      repo.InvoiceRepository
	sequences     repo.SequenceRepository
	auditLogs     repo.AuditLogRepository
	refreshTokens repo.RefreshTokenRepository
}

func (r *txReposGorm) Users() repo.UserRepository                 { return r.users }
func (r *txReposGorm) Shipments() repo.ShipmentRepository         { return r.shipments }
func (r *txReposGorm) Packages() repo.PackageRepository           { return r.packages }
func (r *txReposGorm) History() repo.ShipmentHistoryRepository    { return r.history }
func (r *txReposGorm) Documents() repo.DocumentRepository         { return r.documents }
func (r *txReposGorm) Invoices() repo.InvoiceRepository           { return r.invoices }
func (r *txReposGorm) Sequences() repo.SequenceRepository         { return r.sequences }
func (r *txReposGorm) AuditLogs() repo.AuditLogRepository         { return r.auditLogs }
func (r *txReposGorm) RefreshTokens() repo.RefreshTokenRepository { return r.refreshTokens }

// db（Tx外でもTx内でも）に紐づいたrepo一式
func NewRepos(db *gorm.DB) repo.TxRepos {
	return &txReposGorm{
		users:         NewUserGormRepository(db),
		shipments:     NewShipmentGormRepository(db),
		packages:      NewPackageGormRepository(db),
		history:       NewShipmentHistoryGormRepository(db),
		documents:     NewDocumentGormRepository(db),
		invoices:      NewInvoiceGormRepository(db),
		sequences:     NewSequenceGormRepository(db),
		auditLogs:     NewAuditLogGormRepository(db),
		refreshTokens: NewRefreshTokenRepository(db),
	}
}

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		return fn(NewRepos(tx))
	})
}
