package usecase

import (
	"time"

	"ton-shipping/internal/domain/model"
	repo "ton-shipping/internal/repository"

	"github.com/shopspring/decimal"
)

type ShipmentSummary struct {
	model.Shipment
	StatusColor string `json:"status_color"`
}

type AdminShipmentRow struct {
	ShipmentSummary
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	Invoice       *InvoiceSummary `json:"invoice,omitempty"`
}

type HistoryEntry struct {
	model.ShipmentHistory
	StatusColor string `json:"status_color"`
}

type InvoiceSummary struct {
	ID              int64               `json:"id"`
	InvoiceNumber   string              `json:"invoice_number"`
	Amount          decimal.Decimal     `json:"amount"`
	Currency        string              `json:"currency"`
	Status          model.InvoiceStatus `json:"status"`
	HasPaymentProof bool                `json:"has_payment_proof"`
}

type ShipmentDetailOutput struct {
	Shipment  ShipmentSummary  `json:"shipment"`
	Packages  []model.Package  `json:"packages"`
	History   []HistoryEntry   `json:"history"`
	Documents []model.Document `json:"documents"`
	Invoice   *InvoiceSummary  `json:"invoice"`
}

type CustomerStats struct {
	Total     int64 `json:"total"`
	Active    int64 `json:"active"`
	Delivered int64 `json:"delivered"`
}

type CustomerDashboardOutput struct {
	Stats     CustomerStats     `json:"stats"`
	Shipments []ShipmentSummary `json:"shipments"`
}

// 公開の追跡結果。顧客の個人情報は含めない。
type TrackingOutput struct {
	TrackingNumber  string               `json:"tracking_number"`
	Status          model.ShipmentStatus `json:"status"`
	StatusColor     string               `json:"status_color"`
	ShipmentType    model.ShipmentType   `json:"shipment_type"`
	OriginPort      string               `json:"origin_port"`
	DestinationPort string               `json:"destination_port"`
	CurrentLocation string               `json:"current_location"`
	VesselName      string               `json:"vessel_name"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
	History         []TrackingEvent      `json:"history"`
}

type TrackingEvent struct {
	Status      model.ShipmentStatus `json:"status"`
	StatusColor string               `json:"status_color"`
	Notes       string               `json:"notes"`
	ChangedAt   time.Time            `json:"changed_at"`
}

func toShipmentSummary(s model.Shipment) ShipmentSummary {
	return ShipmentSummary{Shipment: s, StatusColor: s.Status.BadgeColor()}
}

func toAdminRow(s repo.ShipmentWithCustomer, inv *InvoiceSummary) AdminShipmentRow {
	return AdminShipmentRow{
		ShipmentSummary: toShipmentSummary(s.Shipment),
		CustomerName:    s.CustomerName,
		CustomerEmail:   s.CustomerEmail,
		Invoice:         inv,
	}
}

func toHistoryEntries(hs []model.ShipmentHistory) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(hs))
	for _, h := range hs {
		out = append(out, HistoryEntry{ShipmentHistory: h, StatusColor: h.Status.BadgeColor()})
	}
	return out
}

func toInvoiceSummary(inv model.Invoice, hasProof bool) *InvoiceSummary {
	return &InvoiceSummary{
		ID:              inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		Amount:          inv.Amount,
		Currency:        inv.Currency,
		Status:          inv.Status,
		HasPaymentProof: hasProof,
	}
}
