package usecase

import (
	"context"
	"strings"

	"ton-shipping/internal/domain/model"
	repo "ton-shipping/internal/repository"
)

const (
	dashboardRecentLimit    = 10
	dashboardAttentionLimit = 5
)

type AdminShipmentUsecase struct {
	tx        repo.TransactionManager
	lifecycle *Lifecycle
	clock     Clock
}

func NewAdminShipmentUsecase(tx repo.TransactionManager, lifecycle *Lifecycle, clock Clock) *AdminShipmentUsecase {
	return &AdminShipmentUsecase{tx: tx, lifecycle: lifecycle, clock: clock}
}

type AdminShipmentListOutput struct {
	Items []AdminShipmentRow `json:"items"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

type AdminStats struct {
	TotalShipments  int64 `json:"total_shipments"`
	ActiveShipments int64 `json:"active_shipments"`
	TotalCustomers  int64 `json:"total_customers"`
	PendingUsers    int64 `json:"pending_users"`
}

type AdminDashboardOutput struct {
	Stats          AdminStats         `json:"stats"`
	Recent         []AdminShipmentRow `json:"recent"`
	NeedsAttention []AdminShipmentRow `json:"needs_attention"`
}

type AdminUpdateShipmentStatusInput struct {
	Status          string
	Notes           string
	Location        *string
	ExpectedVersion *int64
}

// 貨物一覧（status/キーワード絞り込み、請求書の概要つき）
func (u *AdminShipmentUsecase) List(ctx context.Context, actor model.Actor, f repo.AdminShipmentListFilter) (AdminShipmentListOutput, error) {
	if err := requireAdmin(actor); err != nil {
		return AdminShipmentListOutput{}, err
	}
	if f.Page < 1 {
		return AdminShipmentListOutput{}, NewValidationError("invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return AdminShipmentListOutput{}, NewValidationError("invalid limit")
	}
	f.Q = strings.TrimSpace(f.Q)
	if len(f.Q) > 100 {
		return AdminShipmentListOutput{}, NewValidationError("q is too long")
	}
	if f.Status != "" && !model.ShipmentStatus(f.Status).Valid() {
		return AdminShipmentListOutput{}, NewValidationError("invalid status")
	}

	out := AdminShipmentListOutput{Page: f.Page, Limit: f.Limit}
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		rows, total, err := r.Shipments().ListAdmin(ctx, f)
		if err != nil {
			return errDB(err)
		}
		items, err := withInvoices(ctx, r, rows)
		if err != nil {
			return err
		}
		out.Items = items
		out.Total = total
		return nil
	})
	if err != nil {
		return AdminShipmentListOutput{}, err
	}
	return out, nil
}

func withInvoices(ctx context.Context, r repo.TxRepos, rows []repo.ShipmentWithCustomer) ([]AdminShipmentRow, error) {
	ids := make([]int64, 0, len(rows))
	for _, s := range rows {
		ids = append(ids, s.ID)
	}
	invoices, err := r.Invoices().ListByShipmentIDs(ctx, ids)
	if err != nil {
		return nil, errDB(err)
	}

	out := make([]AdminShipmentRow, 0, len(rows))
	for _, s := range rows {
		var sum *InvoiceSummary
		if inv, ok := invoices[s.ID]; ok {
			hasProof, err := r.Documents().HasPaymentProof(ctx, inv.ID)
			if err != nil {
				return nil, errDB(err)
			}
			sum = toInvoiceSummary(inv, hasProof)
		}
		out = append(out, toAdminRow(s, sum))
	}
	return out, nil
}

func (u *AdminShipmentUsecase) Dashboard(ctx context.Context, actor model.Actor) (AdminDashboardOutput, error) {
	if err := requireAdmin(actor); err != nil {
		return AdminDashboardOutput{}, err
	}

	var out AdminDashboardOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		counts, err := r.Shipments().CountByStatus(ctx, nil)
		if err != nil {
			return errDB(err)
		}
		customers, pending, err := r.Users().CountCustomers(ctx)
		if err != nil {
			return errDB(err)
		}
		recent, err := r.Shipments().ListRecent(ctx, dashboardRecentLimit)
		if err != nil {
			return errDB(err)
		}
		attention, err := r.Shipments().ListByStatuses(ctx, model.AttentionShipmentStatuses, dashboardAttentionLimit)
		if err != nil {
			return errDB(err)
		}

		out.Stats = AdminStats{
			TotalShipments:  sumCounts(counts, model.ShipmentStatuses),
			ActiveShipments: sumCounts(counts, model.ActiveShipmentStatuses),
			TotalCustomers:  customers,
			PendingUsers:    pending,
		}
		out.Recent = make([]AdminShipmentRow, 0, len(recent))
		for _, s := range recent {
			out.Recent = append(out.Recent, toAdminRow(s, nil))
		}
		out.NeedsAttention = make([]AdminShipmentRow, 0, len(attention))
		for _, s := range attention {
			out.NeedsAttention = append(out.NeedsAttention, toAdminRow(s, nil))
		}
		return nil
	})
	if err != nil {
		return AdminDashboardOutput{}, err
	}
	return out, nil
}

// 管理者によるステータス更新。遷移表は助言扱いで、同じステータスでも履歴を残す（現在地の更新など）。
func (u *AdminShipmentUsecase) UpdateStatus(ctx context.Context, actor model.Actor, shipmentID int64, in AdminUpdateShipmentStatusInput) (ShipmentSummary, error) {
	if err := requireAdmin(actor); err != nil {
		return ShipmentSummary{}, err
	}
	if shipmentID <= 0 {
		return ShipmentSummary{}, NewValidationError("invalid id")
	}

	newStatus := model.ShipmentStatus(strings.TrimSpace(in.Status))
	var msgs []string
	if !newStatus.Valid() {
		msgs = append(msgs, "invalid status")
	}
	notes := strings.TrimSpace(in.Notes)
	if len(notes) > 5000 {
		msgs = append(msgs, "notes is too long")
	}
	var location *string
	if in.Location != nil {
		loc := strings.TrimSpace(*in.Location)
		if len(loc) > 255 {
			msgs = append(msgs, "location is too long")
		}
		location = &loc
	}
	if len(msgs) > 0 {
		return ShipmentSummary{}, NewValidationError(msgs...)
	}

	var out ShipmentSummary
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, after, err := u.lifecycle.Transition(ctx, r, TransitionRequest{
			ShipmentID:      shipmentID,
			To:              newStatus,
			Note:            notes,
			ActorID:         actor.UserID,
			Location:        location,
			ExpectedVersion: in.ExpectedVersion,
		})
		if err != nil {
			return err
		}

		if err := r.AuditLogs().Record(ctx, model.AuditLog{
			ActorUserID:  actor.UserID,
			Action:       model.AuditActionUpdateShipmentStatus,
			ResourceType: model.AuditResourceShipment,
			ResourceID:   shipmentID,
			BeforeJSON:   auditJSON(map[string]interface{}{"status": before.Status, "location": before.CurrentLocation, "version": before.Version}),
			AfterJSON:    auditJSON(map[string]interface{}{"status": after.Status, "location": after.CurrentLocation, "version": after.Version}),
			CreatedAt:    u.clock.Now(),
		}); err != nil {
			return errDB(err)
		}

		out = toShipmentSummary(after)
		return nil
	})
	if err != nil {
		return ShipmentSummary{}, err
	}
	return out, nil
}
