package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"ton-shipping/internal/domain/model"
	repo "ton-shipping/internal/repository"
	"ton-shipping/internal/validator"

	"go.uber.org/zap"
)

type DocumentUsecase struct {
	tx        repo.TransactionManager
	store     FileStore
	lifecycle *Lifecycle
	rules     validator.UploadRules
	ids       IDGenerator
	clock     Clock
	log       *zap.Logger
}

func NewDocumentUsecase(
	tx repo.TransactionManager,
	store FileStore,
	lifecycle *Lifecycle,
	rules validator.UploadRules,
	ids IDGenerator,
	clock Clock,
	log *zap.Logger,
) *DocumentUsecase {
	return &DocumentUsecase{
		tx:        tx,
		store:     store,
		lifecycle: lifecycle,
		rules:     rules,
		ids:       ids,
		clock:     clock,
		log:       log,
	}
}

type UploadDocumentInput struct {
	DocumentType string
	File         UploadFile
}

// Documents Pendingの貨物に書類が来たらDocuments Submittedへ進める
func documentsSubmittedNote(actor model.Actor) string {
	return "Documents uploaded by " + uploaderLabel(actor)
}

func documentKey(shipmentID int64, id, ext string) string {
	return fmt.Sprintf("shipments/%d/%s.%s", shipmentID, id, ext)
}

// 書類のアップロード。検証→ファイル保存→Txでメタデータ＋自動遷移。
func (u *DocumentUsecase) Upload(ctx context.Context, actor model.Actor, shipmentID int64, in UploadDocumentInput) (model.Document, error) {
	if err := requireTransactor(actor); err != nil {
		return model.Document{}, err
	}
	if shipmentID <= 0 {
		return model.Document{}, NewValidationError("invalid id")
	}

	var msgs []string
	docType := model.DocumentType(strings.TrimSpace(in.DocumentType))
	if !docType.Valid() {
		msgs = append(msgs, "invalid document type")
	}
	p, fileMsgs, err := prepareUpload(in.File, u.rules)
	if err != nil {
		return model.Document{}, errStorage(err)
	}
	msgs = append(msgs, fileMsgs...)
	if len(msgs) > 0 {
		return model.Document{}, NewValidationError(msgs...)
	}

	// 書き込む前に存在と権限を確認
	if err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
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
		return nil
	}); err != nil {
		return model.Document{}, err
	}

	key := documentKey(shipmentID, u.ids.NewID(), p.ext)
	size, err := saveUpload(ctx, u.store, key, p, u.rules.MaxBytes)
	if err != nil {
		return model.Document{}, err
	}

	var out model.Document
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		s, err := r.Shipments().FindByIDForUpdate(ctx, shipmentID)
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound("shipment")
		}
		if err != nil {
			return errDB(err)
		}

		doc := model.Document{
			ShipmentID:   shipmentID,
			DocumentType: docType,
			FileName:     p.fileName,
			FilePath:     key,
			ContentType:  p.contentType,
			SizeBytes:    size,
			UploadedBy:   actor.UserID,
			UploadedAt:   u.clock.Now(),
		}
		if err := r.Documents().Create(ctx, &doc); err != nil {
			return errDB(err)
		}

		if s.Status == model.ShipmentStatusDocumentsPending {
			if _, err := u.lifecycle.apply(ctx, r, s, model.ShipmentStatusDocumentsSubmitted, documentsSubmittedNote(actor), actor.UserID, nil); err != nil {
				return err
			}
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

// ファイルを開く。閉じるのは呼び出し側。
func (u *DocumentUsecase) Open(ctx context.Context, actor model.Actor, shipmentID int64, documentID int64) (model.Document, io.ReadCloser, error) {
	if !actor.Authenticated() {
		return model.Document{}, nil, errUnauthorized()
	}

	var doc model.Document
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

		d, err := r.Documents().FindByID(ctx, documentID)
		if errors.Is(err, repo.ErrNotFound) || (err == nil && d.ShipmentID != s.ID) {
			return errNotFound("document")
		}
		if err != nil {
			return errDB(err)
		}
		doc = d
		return nil
	})
	if err != nil {
		return model.Document{}, nil, err
	}

	rc, err := u.store.Open(ctx, doc.FilePath)
	if err != nil {
		return model.Document{}, nil, errStorage(err)
	}
	return doc, rc, nil
}
