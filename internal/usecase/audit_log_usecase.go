package usecase

import (
	"context"
	"time"

	"ton-shipping/internal/domain/model"
	repo "ton-shipping/internal/repository"
)

type AuditLogUsecase struct {
	tx repo.TransactionManager
}

func NewAuditLogUsecase(tx repo.TransactionManager) *AuditLogUsecase {
	return &AuditLogUsecase{tx: tx}
}

// クエリ文字列から組み立てた絞り込み（空は無指定）
type AuditLogListInput struct {
	ActorUserID  *int64
	Action       string
	ResourceType string
	ResourceID   *int64
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
}

type AuditLogListOutput struct {
	Items  []model.AuditLog `json:"items"`
	Total  int64            `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

const defaultAuditLogLimit = 50

func validAuditAction(a model.AuditAction) bool {
	switch a {
	case model.AuditActionVerifyUser,
		model.AuditActionUnverifyUser,
		model.AuditActionUpdateShipmentStatus,
		model.AuditActionGenerateInvoice,
		model.AuditActionConfirmPayment:
		return true
	}
	return false
}

func validAuditResource(t model.AuditResourceType) bool {
	switch t {
	case model.AuditResourceShipment, model.AuditResourceInvoice, model.AuditResourceUser:
		return true
	}
	return false
}

func (u *AuditLogUsecase) List(ctx context.Context, actor model.Actor, in AuditLogListInput) (AuditLogListOutput, error) {
	if err := requireAdmin(actor); err != nil {
		return AuditLogListOutput{}, err
	}
	if in.Limit == 0 {
		in.Limit = defaultAuditLogLimit
	}

	f := repo.AuditLogFilter{
		ActorUserID: in.ActorUserID,
		ResourceID:  in.ResourceID,
		CreatedFrom: in.From,
		CreatedTo:   in.To,
		Limit:       in.Limit,
		Offset:      in.Offset,
	}

	var msgs []string
	if in.Action != "" {
		a := model.AuditAction(in.Action)
		if !validAuditAction(a) {
			msgs = append(msgs, "invalid action")
		}
		f.Action = &a
	}
	if in.ResourceType != "" {
		t := model.AuditResourceType(in.ResourceType)
		if !validAuditResource(t) {
			msgs = append(msgs, "invalid resource_type")
		}
		f.ResourceType = &t
	}
	if in.From != nil && in.To != nil && in.From.After(*in.To) {
		msgs = append(msgs, "from must be before to")
	}
	if in.Limit < 0 || in.Limit > 200 {
		msgs = append(msgs, "limit must be between 1 and 200")
	}
	if in.Offset < 0 {
		msgs = append(msgs, "offset must be 0 or greater")
	}
	if len(msgs) > 0 {
		return AuditLogListOutput{}, NewValidationError(msgs...)
	}

	out := AuditLogListOutput{Limit: in.Limit, Offset: in.Offset}
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		logs, total, err := r.AuditLogs().Search(ctx, f)
		if err != nil {
			return errDB(err)
		}
		out.Items, out.Total = logs, total
		return nil
	})
	if err != nil {
		return AuditLogListOutput{}, err
	}
	if out.Items == nil {
		out.Items = []model.AuditLog{}
	}
	return out, nil
}
