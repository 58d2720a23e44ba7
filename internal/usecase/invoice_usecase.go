package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ton-shipping/internal/domain/model"
	repo "ton-shipping/internal/repository"
	"ton-shipping/internal/validator"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type InvoiceUsecase struct {
	tx        repo.TransactionManager
	allocator *NumberAllocator
	lifecycle *Lifecycle
	validator InputValidator
	store     FileStore
	rules     validator.UploadRules
	ids       IDGenerator
	clock     Clock
	log       *zap.Logger
}

func NewInvoiceUsecase(
	tx repo.TransactionManager,
	allocator *NumberAllocator,
	lifecycle *Lifecycle,
	inputValidator InputValidator,
	store FileStore,
	rules validator.UploadRules,
	ids IDGenerator,
	clock Clock,
	log *zap.Logger,
) *InvoiceUsecase {
	return &InvoiceUsecase{
		tx:        tx,
		allocator: allocator,
		lifecycle: lifecycle,
		validator: inputValidator,
		store:     store,
		rules:     rules,
		ids:       ids,
		clock:     clock,
		log:       log,
	}
}

type FeeItemInput struct {
	Name   string          `json:"name" validate:"required,max=100"`
	Amount decimal.Decimal `json:"amount" validate:"gte=0"`
}

type GenerateInvoiceInput struct {
	Items    []FeeItemInput `json:"items" validate:"min=1,max=20,dive"`
	Notes    string         `json:"notes" validate:"max=5000"`
	Currency string         `json:"currency" validate:"omitempty,len=3"`
}

type InvoiceOutput struct {
	Invoice model.Invoice          `json:"invoice"`
	Items   []model.InvoiceFeeItem `json:"items"`
}

type InvoiceDetailOutput struct {
	Invoice         model.Invoice          `json:"invoice"`
	Items           []model.InvoiceFeeItem `json:"items"`
	Shipment        ShipmentSummary        `json:"shipment"`
	HasPaymentProof bool                   `json:"has_payment_proof"`
}

// 内訳を検証して合計を出す
func (u *InvoiceUsecase) buildItems(in GenerateInvoiceInput) ([]model.InvoiceFeeItem, decimal.Decimal, error) {
	for i := range in.Items {
		in.Items[i].Name = strings.TrimSpace(in.Items[i].Name)
	}
	msgs := u.validator.ValidateStruct(in)

	seen := make(map[string]struct{}, len(in.Items))
	total := decimal.Zero
	items := make([]model.InvoiceFeeItem, 0, len(in.Items))
	for i, it := range in.Items {
		key := strings.ToLower(it.Name)
		if _, dup := seen[key]; dup && key != "" {
			msgs = append(msgs, fmt.Sprintf("items[%d].name is duplicated", i))
		}
		seen[key] = struct{}{}

		amount := it.Amount.Round(2)
		total = total.Add(amount)
		items = append(items, model.InvoiceFeeItem{
			Position: i + 1,
			Name:     it.Name,
			Amount:   amount,
		})
	}
	if len(msgs) == 0 && !total.IsPositive() {
		msgs = append(msgs, "invoice total must be greater than 0")
	}
	if len(msgs) > 0 {
		return nil, decimal.Zero, NewValidationError(msgs...)
	}
	return items, total, nil
}

// 書類提出済みの貨物に請求書を1枚だけ発行する
func (u *InvoiceUsecase) Generate(ctx context.Context, actor model.Actor, shipmentID int64, in GenerateInvoiceInput) (InvoiceOutput, error) {
	if err := requireAdmin(actor); err != nil {
		return InvoiceOutput{}, err
	}
	if shipmentID <= 0 {
		return InvoiceOutput{}, NewValidationError("invalid id")
	}

	items, total, err := u.buildItems(in)
	if err != nil {
		return InvoiceOutput{}, err
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = model.DefaultCurrency
	}

	var out InvoiceOutput
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		s, err := r.Shipments().FindByIDForUpdate(ctx, shipmentID)
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound("shipment")
		}
		if err != nil {
			return errDB(err)
		}
		if s.Status != model.ShipmentStatusDocumentsSubmitted {
			return errConflict("invoice can only be generated once documents are submitted")
		}

		_, err = r.Invoices().FindByShipmentID(ctx, s.ID)
		if err == nil {
			return errConflict("invoice already exists for this shipment")
		}
		if !errors.Is(err, repo.ErrNotFound) {
			return errDB(err)
		}

		number, err := u.allocator.InvoiceNumber(ctx, r)
		if err != nil {
			return err
		}

		inv := model.Invoice{
			ShipmentID:    s.ID,
			InvoiceNumber: number,
			Amount:        total,
			Currency:      currency,
			Status:        model.InvoiceStatusPending,
			Notes:         strings.TrimSpace(in.Notes),
			CreatedBy:     actor.UserID,
		}
		if err := r.Invoices().Create(ctx, &inv, items); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return errConflict("invoice already exists for this shipment")
			}
			return errDB(err)
		}

		if err := u.lifecycle.annotate(ctx, r, s, fmt.Sprintf("Invoice %s generated", inv.InvoiceNumber), actor.UserID); err != nil {
			return err
		}

		if err := r.AuditLogs().Record(ctx, model.AuditLog{
			ActorUserID:  actor.UserID,
			Action:       model.AuditActionGenerateInvoice,
			ResourceType: model.AuditResourceInvoice,
			ResourceID:   inv.ID,
			AfterJSON:    auditJSON(map[string]interface{}{"invoice_number": inv.InvoiceNumber, "amount": inv.Amount, "currency": inv.Currency, "items": items}),
			CreatedAt:    u.clock.Now(),
		}); err != nil {
			return errDB(err)
		}

		out = InvoiceOutput{Invoice: inv, Items: items}
		return nil
	})
	if err != nil {
		return InvoiceOutput{}, err
	}
	return out, nil
}

func paymentConfirmedNote(invoiceNumber string) string {
	return fmt.Sprintf("Payment confirmed by admin. Invoice %s marked as paid.", invoiceNumber)
}

// 入金確認。請求書をPaidにし、貨物をCustoms Processingへ進める（同じTx）。
func (u *InvoiceUsecase) ConfirmPayment(ctx context.Context, actor model.Actor, invoiceID int64) (InvoiceOutput, error) {
	if err := requireAdmin(actor); err != nil {
		return InvoiceOutput{}, err
	}
	if invoiceID <= 0 {
		return InvoiceOutput{}, NewValidationError("invalid id")
	}

	var out InvoiceOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		inv, err := r.Invoices().FindByIDForUpdate(ctx, invoiceID)
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound("invoice")
		}
		if err != nil {
			return errDB(err)
		}
		if inv.Status == model.InvoiceStatusPaid {
			return errConflict("invoice already paid")
		}

		now := u.clock.Now()
		ok, err := r.Invoices().MarkPaidIfPending(ctx, inv.ID, now)
		if err != nil {
			return errDB(err)
		}
		if !ok {
			return errConflict("invoice already paid")
		}

		s, err := r.Shipments().FindByIDForUpdate(ctx, inv.ShipmentID)
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound("shipment")
		}
		if err != nil {
			return errDB(err)
		}
		before := s.Status
		if _, err := u.lifecycle.apply(ctx, r, s, model.ShipmentStatusCustomsProcessing, paymentConfirmedNote(inv.InvoiceNumber), actor.UserID, nil); err != nil {
			return err
		}

		if err := r.AuditLogs().Record(ctx, model.AuditLog{
			ActorUserID:  actor.UserID,
			Action:       model.AuditActionConfirmPayment,
			ResourceType: model.AuditResourceInvoice,
			ResourceID:   inv.ID,
			BeforeJSON:   auditJSON(map[string]interface{}{"invoice_status": inv.Status, "shipment_status": before}),
			AfterJSON:    auditJSON(map[string]interface{}{"invoice_status": model.InvoiceStatusPaid, "shipment_status": model.ShipmentStatusCustomsProcessing}),
			CreatedAt:    now,
		}); err != nil {
			return errDB(err)
		}

		items, err := r.Invoices().ListItems(ctx, inv.ID)
		if err != nil {
			return errDB(err)
		}

		inv.Status = model.InvoiceStatusPaid
		inv.PaidAt = &now
		out = InvoiceOutput{Invoice: inv, Items: items}
		return nil
	})
	if err != nil {
		return InvoiceOutput{}, err
	}
	return out, nil
}

func paymentProofKey(shipmentID int64, invoiceNumber, id, ext string) string {
	return fmt.Sprintf("payment_proofs/%d/proof_%s_%s.%s", shipmentID, invoiceNumber, id, ext)
}

// 顧客による支払い証明のアップロード。ステータスは変えない。
func (u *InvoiceUsecase) UploadPaymentProof(ctx context.Context, actor model.Actor, shipmentID int64, invoiceID int64, file UploadFile) (model.Document, error) {
	if err := requireTransactor(actor); err != nil {
		return model.Document{}, err
	}
	if shipmentID <= 0 || invoiceID <= 0 {
		return model.Document{}, NewValidationError("invalid id")
	}

	p, msgs, err := prepareUpload(file, u.rules)
	if err != nil {
		return model.Document{}, errStorage(err)
	}
	if len(msgs) > 0 {
		return model.Document{}, NewValidationError(msgs...)
	}

	var inv model.Invoice
	if err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		inv, err = u.loadProofTarget(ctx, r, actor, shipmentID, invoiceID, false)
		return err
	}); err != nil {
		return model.Document{}, err
	}

	key := paymentProofKey(shipmentID, inv.InvoiceNumber, u.ids.NewID(), p.ext)
	size, err := saveUpload(ctx, u.store, key, p, u.rules.MaxBytes)
	if err != nil {
		return model.Document{}, err
	}

	var out model.Document
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		inv, err := u.loadProofTarget(ctx, r, actor, shipmentID, invoiceID, true)
		if err != nil {
			return err
		}
		s, err := r.Shipments().FindByIDForUpdate(ctx, shipmentID)
		if err != nil {
			return errDB(err)
		}

		invID := inv.ID
		doc := model.Document{
			ShipmentID:     shipmentID,
			DocumentType:   model.DocumentTypeOther,
			FileName:       p.fileName,
			FilePath:       key,
			ContentType:    p.contentType,
			SizeBytes:      size,
			IsPaymentProof: true,
			InvoiceID:      &invID,
			UploadedBy:     actor.UserID,
			UploadedAt:     u.clock.Now(),
		}
		if err := r.Documents().Create(ctx, &doc); err != nil {
			return errDB(err)
		}

		note := fmt.Sprintf("Payment proof uploaded by %s for invoice %s", uploaderLabel(actor), inv.InvoiceNumber)
		if err := u.lifecycle.annotate(ctx, r, s, note, actor.UserID); err != nil {
			return err
		}

		out = doc
		return nil
	})
	if err != nil {
		discardUpload(ctx, u.store, u.log, key)
		return model.Document{}, err
	}
	return out, nil
}

// 持ち主の貨物に紐づく未払いの請求書か確認する
func (u *InvoiceUsecase) loadProofTarget(ctx context.Context, r repo.TxRepos, actor model.Actor, shipmentID, invoiceID int64, lock bool) (model.Invoice, error) {
	s, err := r.Shipments().FindByID(ctx, shipmentID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Invoice{}, errNotFound("shipment")
	}
	if err != nil {
		return model.Invoice{}, errDB(err)
	}
	if !canAccessShipment(actor, s) {
		return model.Invoice{}, errForbidden()
	}

	var inv model.Invoice
	if lock {
		inv, err = r.Invoices().FindByIDForUpdate(ctx, invoiceID)
	} else {
		inv, err = r.Invoices().FindByID(ctx, invoiceID)
	}
	if errors.Is(err, repo.ErrNotFound) || (err == nil && inv.ShipmentID != s.ID) {
		return model.Invoice{}, errNotFound("invoice")
	}
	if err != nil {
		return model.Invoice{}, errDB(err)
	}
	if inv.Status != model.InvoiceStatusPending {
		return model.Invoice{}, errConflict("invoice already paid")
	}
	return inv, nil
}

// 請求書の表示（持ち主か管理者）
func (u *InvoiceUsecase) Get(ctx context.Context, actor model.Actor, invoiceID int64) (InvoiceDetailOutput, error) {
	if !actor.Authenticated() {
		return InvoiceDetailOutput{}, errUnauthorized()
	}

	var out InvoiceDetailOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		inv, err := r.Invoices().FindByID(ctx, invoiceID)
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound("invoice")
		}
		if err != nil {
			return errDB(err)
		}
		s, err := r.Shipments().FindByID(ctx, inv.ShipmentID)
		if err != nil {
			return errDB(err)
		}
		if !canAccessShipment(actor, s) {
			return errForbidden()
		}

		items, err := r.Invoices().ListItems(ctx, inv.ID)
		if err != nil {
			return errDB(err)
		}
		hasProof, err := r.Documents().HasPaymentProof(ctx, inv.ID)
		if err != nil {
			return errDB(err)
		}

		out = InvoiceDetailOutput{
			Invoice:         inv,
			Items:           items,
			Shipment:        toShipmentSummary(s),
			HasPaymentProof: hasProof,
		}
		return nil
	})
	if err != nil {
		return InvoiceDetailOutput{}, err
	}
	return out, nil
}

func (u *InvoiceUsecase) ListPaymentProofs(ctx context.Context, actor model.Actor, invoiceID int64) ([]model.Document, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	var out []model.Document
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Invoices().FindByID(ctx, invoiceID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return errNotFound("invoice")
			}
			return errDB(err)
		}
		docs, err := r.Documents().ListPaymentProofs(ctx, invoiceID)
		if err != nil {
			return errDB(err)
		}
		out = docs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
