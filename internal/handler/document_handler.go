package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"ton-shipping/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type DocumentHandler struct {
	uc  *usecase.DocumentUsecase
	log *zap.Logger
}

func NewDocumentHandler(uc *usecase.DocumentUsecase, log *zap.Logger) *DocumentHandler {
	return &DocumentHandler{uc: uc, log: log}
}

// multipartのfileを開く。無ければBody=nilでusecaseが400にする。
func formFile(c echo.Context, field string) (usecase.UploadFile, io.Closer, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return usecase.UploadFile{}, nopCloser{}, nil
	}
	if err != nil {
		return usecase.UploadFile{}, nil, usecase.NewValidationError("invalid multipart form")
	}
	return openFormFile(fh)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func openFormFile(fh *multipart.FileHeader) (usecase.UploadFile, io.Closer, error) {
	f, err := fh.Open()
	if err != nil {
		return usecase.UploadFile{}, nil, usecase.NewValidationError("invalid multipart form")
	}
	return usecase.UploadFile{FileName: fh.Filename, Size: fh.Size, Body: f}, f, nil
}

// POST /shipments/:id/documents（document_type, file）
func (h *DocumentHandler) Upload(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}

	file, closer, err := formFile(c, "file")
	if err != nil {
		return writeError(c, h.log, err)
	}
	defer closer.Close()

	doc, err := h.uc.Upload(c.Request().Context(), actorFrom(c), id, usecase.UploadDocumentInput{
		DocumentType: c.FormValue("document_type"),
		File:         file,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, doc)
}

// GET /shipments/:id/documents/:doc_id/file
func (h *DocumentHandler) Download(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	docID, err := paramID(c, "doc_id")
	if err != nil {
		return writeError(c, h.log, err)
	}

	doc, rc, err := h.uc.Open(c.Request().Context(), actorFrom(c), id, docID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	defer rc.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(doc.FileName)))
	c.Response().Header().Set("X-Content-Type-Options", "nosniff")
	return c.Stream(http.StatusOK, doc.ContentType, rc)
}
