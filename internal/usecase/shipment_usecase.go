package usecase

import (
	"context"
	"errors"
	"strings"

	"ton-shipping/internal/domain/model"
	repo "ton-shipping/internal/repository"

	"github.com/shopspring/decimal"
)

// 追跡番号が一意制約に当たったら同じTx内で1回だけ採番し直す。
const createShipmentAttempts = 2

type ShipmentUsecase struct {
	tx        repo.TransactionManager
	allocator *NumberAllocator
	validator InputValidator
	clock     Clock
}

func NewShipmentUsecase(tx repo.TransactionManager, allocator *NumberAllocator, validator InputValidator, clock Clock) *ShipmentUsecase {
	return &ShipmentUsecase{tx: tx, allocator: allocator, validator: validator, clock: clock}
}

type PackageInput struct {
	Description   string          `json:"description" validate:"required,max=1000"`
	Quantity      int             `json:"quantity" validate:"gte=0"`
	Weight        decimal.Decimal `json:"weight" validate:"gte=0"`
	Dimensions    string          `json:"dimensions" validate:"max=100"`
	DeclaredValue decimal.Decimal `json:"declared_value" validate:"gte=0"`
}

type CreateShipmentInput struct {
	SenderName      string         `json:"sender_name" validate:"required,max=255"`
	SenderPhone     string         `json:"sender_phone" validate:"max=50"`
	SenderAddress   string         `json:"sender_address" validate:"max=2000"`
	ReceiverName    string         `json:"receiver_name" validate:"required,max=255"`
	ReceiverPhone   string         `json:"receiver_phone" validate:"max=50"`
	ReceiverAddress string         `json:"receiver_address" validate:"required,max=2000"`
	OriginPort      string         `json:"origin_port" validate:"max=255"`
	DestinationPort string         `json:"destination_port" validate:"max=255"`
	ShipmentType    string         `json:"shipment_type" validate:"omitempty,oneof=import export local"`
	ContainerNumber string         `json:"container_number" validate:"max=100"`
	VesselName      string         `json:"vessel_name" validate:"max=255"`
	Notes           string         `json:"notes" validate:"max=5000"`
	Packages        []PackageInput `json:"packages" validate:"min=1,max=100,dive"`
}

func trimCreateInput(in CreateShipmentInput) CreateShipmentInput {
	in.SenderName = strings.TrimSpace(in.SenderName)
	in.SenderPhone = strings.TrimSpace(in.SenderPhone)
	in.SenderAddress = strings.TrimSpace(in.SenderAddress)
	in.ReceiverName = strings.TrimSpace(in.ReceiverName)
	in.ReceiverPhone = strings.TrimSpace(in.ReceiverPhone)
	in.ReceiverAddress = strings.TrimSpace(in.ReceiverAddress)
	in.OriginPort = strings.TrimSpace(in.OriginPort)
	in.DestinationPort = strings.TrimSpace(in.DestinationPort)
	in.ShipmentType = strings.ToLower(strings.TrimSpace(in.ShipmentType))
	in.ContainerNumber = strings.TrimSpace(in.ContainerNumber)
	in.VesselName = strings.TrimSpace(in.VesselName)
	in.Notes = strings.TrimSpace(in.Notes)
	for i := range in.Packages {
		in.Packages[i].Description = strings.TrimSpace(in.Packages[i].Description)
		in.Packages[i].Dimensions = strings.TrimSpace(in.Packages[i].Dimensions)
	}
	return in
}

// 貨物登録。採番・貨物・梱包・最初の履歴を1つのTxで保存する。
func (u *ShipmentUsecase) Create(ctx context.Context, actor model.Actor, in CreateShipmentInput) (ShipmentDetailOutput, error) {
	if err := requireTransactor(actor); err != nil {
		return ShipmentDetailOutput{}, err
	}

	in = trimCreateInput(in)
	if msgs := u.validator.ValidateStruct(in); len(msgs) > 0 {
		return ShipmentDetailOutput{}, NewValidationError(msgs...)
	}

	shipment, pkgs := buildShipment(actor.UserID, in)

	return u.create(ctx, actor, shipment, pkgs)
}

func buildShipment(userID int64, in CreateShipmentInput) (model.Shipment, []model.Package) {
	shipmentType := model.ShipmentType(in.ShipmentType)
	if shipmentType == "" {
		shipmentType = model.ShipmentTypeImport
	}
	destination := in.DestinationPort
	if destination == "" {
		destination = model.DefaultDestinationPort
	}

	total := decimal.Zero
	pkgs := make([]model.Package, 0, len(in.Packages))
	for _, p := range in.Packages {
		qty := p.Quantity
		if qty <= 0 {
			qty = 1
		}
		total = total.Add(p.Weight)
		pkgs = append(pkgs, model.Package{
			Description:   p.Description,
			Quantity:      qty,
			Weight:        p.Weight,
			Dimensions:    p.Dimensions,
			DeclaredValue: p.DeclaredValue,
		})
	}

	return model.Shipment{
		UserID:          userID,
		SenderName:      in.SenderName,
		SenderPhone:     in.SenderPhone,
		SenderAddress:   in.SenderAddress,
		ReceiverName:    in.ReceiverName,
		ReceiverPhone:   in.ReceiverPhone,
		ReceiverAddress: in.ReceiverAddress,
		OriginPort:      in.OriginPort,
		DestinationPort: destination,
		ShipmentType:    shipmentType,
		TotalWeight:     total,
		ContainerNumber: in.ContainerNumber,
		VesselName:      in.VesselName,
		Status:          model.ShipmentStatusRegistered,
		Notes:           in.Notes,
		Version:         1,
	}, pkgs
}

func (u *ShipmentUsecase) create(ctx context.Context, actor model.Actor, shipment model.Shipment, pkgs []model.Package) (ShipmentDetailOutput, error) {
	var out ShipmentDetailOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		s, err := u.insertShipment(ctx, r, shipment)
		if err != nil {
			return err
		}

		items := append([]model.Package(nil), pkgs...)
		if err := r.Packages().CreateBulk(ctx, s.ID, items); err != nil {
			return errDB(err)
		}

		h := model.ShipmentHistory{
			ShipmentID: s.ID,
			Status:     model.ShipmentStatusRegistered,
			Notes:      "Shipment registered by customer",
			ChangedBy:  actor.UserID,
			ChangedAt:  u.clock.Now(),
		}
		if err := r.History().Append(ctx, h); err != nil {
			return errDB(err)
		}

		out = ShipmentDetailOutput{
			Shipment:  toShipmentSummary(s),
			Packages:  items,
			History:   toHistoryEntries([]model.ShipmentHistory{h}),
			Documents: []model.Document{},
		}
		return nil
	})
	if err != nil {
		return ShipmentDetailOutput{}, err
	}
	return out, nil
}

// Shipments().CreateはSAVEPOINT内で挿入するので、衝突してもTxは生きていて
// 消費した連番も戻らない。次の番号で入れ直す。
func (u *ShipmentUsecase) insertShipment(ctx context.Context, r repo.TxRepos, shipment model.Shipment) (model.Shipment, error) {
	for attempt := 1; ; attempt++ {
		tn, err := u.allocator.TrackingNumber(ctx, r)
		if err != nil {
			return model.Shipment{}, err
		}

		s := shipment
		s.TrackingNumber = tn
		err = r.Shipments().Create(ctx, &s)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, repo.ErrDuplicate) {
			return model.Shipment{}, errDB(err)
		}
		if attempt >= createShipmentAttempts {
			return model.Shipment{}, errConflict("could not allocate a unique tracking number")
		}
	}
}

// 顧客ダッシュボード
func (u *ShipmentUsecase) ListMine(ctx context.Context, actor model.Actor) (CustomerDashboardOutput, error) {
	if !actor.Authenticated() {
		return CustomerDashboardOutput{}, errUnauthorized()
	}

	var out CustomerDashboardOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		items, err := r.Shipments().ListByUserID(ctx, actor.UserID)
		if err != nil {
			return errDB(err)
		}
		counts, err := r.Shipments().CountByStatus(ctx, &actor.UserID)
		if err != nil {
			return errDB(err)
		}

		out.Shipments = make([]ShipmentSummary, 0, len(items))
		for _, s := range items {
			out.Shipments = append(out.Shipments, toShipmentSummary(s))
		}
		out.Stats = CustomerStats{
			Total:     sumCounts(counts, model.ShipmentStatuses),
			Active:    sumCounts(counts, model.ActiveShipmentStatuses),
			Delivered: counts[model.ShipmentStatusDelivered],
		}
		return nil
	})
	if err != nil {
		return CustomerDashboardOutput{}, err
	}
	return out, nil
}

func sumCounts(counts map[model.ShipmentStatus]int64, statuses []model.ShipmentStatus) int64 {
	var n int64
	for _, s := range statuses {
		n += counts[s]
	}
	return n
}

// 持ち主か管理者だけ
func (u *ShipmentUsecase) Detail(ctx context.Context, actor model.Actor, shipmentID int64) (ShipmentDetailOutput, error) {
	if !actor.Authenticated() {
		return ShipmentDetailOutput{}, errUnauthorized()
	}
	if shipmentID <= 0 {
		return ShipmentDetailOutput{}, NewValidationError("invalid id")
	}

	var out ShipmentDetailOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		s, err := r.Shipments().FindByID(ctx, shipmentID)
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound("shipment")
		}
		if err != nil {
			return errDB(err)
		}
		if !canAccessShipment(actor, s) {
			return errForbidden()
		}

		pkgs, err := r.Packages().ListByShipmentID(ctx, s.ID)
		if err != nil {
			return errDB(err)
		}
		hist, err := r.History().ListByShipmentID(ctx, s.ID)
		if err != nil {
			return errDB(err)
		}
		docs, err := r.Documents().ListByShipmentID(ctx, s.ID)
		if err != nil {
			return errDB(err)
		}

		var inv *InvoiceSummary
		found, err := r.Invoices().FindByShipmentID(ctx, s.ID)
		switch {
		case errors.Is(err, repo.ErrNotFound):
		case err != nil:
			return errDB(err)
		default:
			hasProof, err := r.Documents().HasPaymentProof(ctx, found.ID)
			if err != nil {
				return errDB(err)
			}
			inv = toInvoiceSummary(found, hasProof)
		}

		out = ShipmentDetailOutput{
			Shipment:  toShipmentSummary(s),
			Packages:  pkgs,
			History:   toHistoryEntries(hist),
			Documents: docs,
			Invoice:   inv,
		}
		return nil
	})
	if err != nil {
		return ShipmentDetailOutput{}, err
	}
	return out, nil
}

// 公開の追跡。ログイン不要。
func (u *ShipmentUsecase) Track(ctx context.Context, trackingNumber string) (TrackingOutput, error) {
	tn := strings.ToUpper(strings.TrimSpace(trackingNumber))
	if tn == "" {
		return TrackingOutput{}, NewValidationError("tracking number is required")
	}
	if len(tn) > 32 {
		return TrackingOutput{}, errNotFound("shipment")
	}

	var out TrackingOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		s, err := r.Shipments().FindByTrackingNumber(ctx, tn)
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound("shipment")
		}
		if err != nil {
			return errDB(err)
		}

		hist, err := r.History().ListByShipmentID(ctx, s.ID)
		if err != nil {
			return errDB(err)
		}

		events := make([]TrackingEvent, 0, len(hist))
		for _, h := range hist {
			events = append(events, TrackingEvent{
				Status:      h.Status,
				StatusColor: h.Status.BadgeColor(),
				Notes:       h.Notes,
				ChangedAt:   h.ChangedAt,
			})
		}

		out = TrackingOutput{
			TrackingNumber:  s.TrackingNumber,
			Status:          s.Status,
			StatusColor:     s.Status.BadgeColor(),
			ShipmentType:    s.ShipmentType,
			OriginPort:      s.OriginPort,
			DestinationPort: s.DestinationPort,
			CurrentLocation: s.CurrentLocation,
			VesselName:      s.VesselName,
			CreatedAt:       s.CreatedAt,
			UpdatedAt:       s.UpdatedAt,
			History:         events,
		}
		return nil
	})
	if err != nil {
		return TrackingOutput{}, err
	}
	return out, nil
}
