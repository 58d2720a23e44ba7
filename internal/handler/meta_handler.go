package handler

import (
	"net/http"

	"ton-shipping/internal/domain/model"

	"github.com/labstack/echo/v4"
)

type statusVocabulary struct {
	Value model.ShipmentStatus `json:"value"`
	Color string               `json:"color"`
}

type vocabularyResponse struct {
	Statuses      []statusVocabulary   `json:"statuses"`
	ShipmentTypes []model.ShipmentType `json:"shipment_types"`
	DocumentTypes []model.DocumentType `json:"document_types"`
}

// GET /meta/vocabulary（画面のプルダウンとバッジ色）
func Vocabulary(c echo.Context) error {
	statuses := make([]statusVocabulary, 0, len(model.ShipmentStatuses))
	for _, s := range model.ShipmentStatuses {
		statuses = append(statuses, statusVocabulary{Value: s, Color: s.BadgeColor()})
	}
	return c.JSON(http.StatusOK, vocabularyResponse{
		Statuses:      statuses,
		ShipmentTypes: model.ShipmentTypes,
		DocumentTypes: model.DocumentTypes,
	})
}
