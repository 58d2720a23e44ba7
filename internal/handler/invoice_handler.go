package handler

import (
	"net/http"

	"ton-shipping/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type InvoiceHandler struct {
	uc  *usecase.InvoiceUsecase
	log *zap.Logger
}

func NewInvoiceHandler(uc *usecase.InvoiceUsecase, log *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{uc: uc, log: log}
}

// GET /invoices/:id
func (h *InvoiceHandler) Get(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}

	out, err := h.uc.Get(c.Request().Context(), actorFrom(c), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

// POST /shipments/:id/invoices/:invoice_id/proof（file）
func (h *InvoiceHandler) UploadProof(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	invoiceID, err := paramID(c, "invoice_id")
	if err != nil {
		return writeError(c, h.log, err)
	}

	file, closer, err := formFile(c, "file")
	if err != nil {
		return writeError(c, h.log, err)
	}
	defer closer.Close()

	doc, err := h.uc.UploadPaymentProof(c.Request().Context(), actorFrom(c), id, invoiceID, file)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, doc)
}

// POST /admin/shipments/:id/invoice
func (h *InvoiceHandler) Generate(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}

	var req usecase.GenerateInvoiceInput
	if err := bindJSON(c, &req); err != nil {
		return writeError(c, h.log, err)
	}

	out, err := h.uc.Generate(c.Request().Context(), actorFrom(c), id, req)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, out)
}

// POST /admin/invoices/:id/confirm
func (h *InvoiceHandler) ConfirmPayment(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}

	out, err := h.uc.ConfirmPayment(c.Request().Context(), actorFrom(c), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

// GET /admin/invoices/:id/proofs
func (h *InvoiceHandler) ListProofs(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}

	docs, err := h.uc.ListPaymentProofs(c.Request().Context(), actorFrom(c), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"items": docs})
}
