package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"ton-shipping/internal/domain/model"
	"ton-shipping/internal/validator"

	"go.uber.org/zap"
)

// 書類の保存先（storage.ObjectStoreが実装）
type FileStore interface {
	Save(ctx context.Context, key string, contentType string, r io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// handlerから渡されるアップロード
type UploadFile struct {
	FileName string
	Size     int64
	Body     io.Reader
}

type preparedUpload struct {
	fileName    string
	ext         string
	contentType string
	body        io.Reader
}

// 先頭を読んで形式とサイズを確かめる。問題があればメッセージを返し、何も保存しない。
func prepareUpload(file UploadFile, rules validator.UploadRules) (preparedUpload, []string, error) {
	if file.Body == nil {
		return preparedUpload{}, []string{"file is required"}, nil
	}

	head := make([]byte, validator.SniffBytes)
	n, err := io.ReadFull(file.Body, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return preparedUpload{}, nil, err
	}
	head = head[:n]

	check, msgs := validator.ValidateUpload(file.FileName, file.Size, head, rules)
	if len(msgs) > 0 {
		return preparedUpload{}, msgs, nil
	}

	return preparedUpload{
		fileName:    sanitizeFileName(file.FileName),
		ext:         check.Extension,
		contentType: check.ContentType,
		body:        io.MultiReader(bytes.NewReader(head), file.Body),
	}, nil, nil
}

const maxFileNameBytes = 255

// 表示用の元ファイル名。パスは落とす。
func sanitizeFileName(name string) string {
	base := filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	base = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, base)
	if len(base) > maxFileNameBytes {
		// 末尾（拡張子側）を残す。マルチバイト文字の途中では切らない
		cut := len(base) - maxFileNameBytes
		for cut < len(base) && !utf8.RuneStart(base[cut]) {
			cut++
		}
		base = base[cut:]
	}
	if base == "" || base == "." || base == "/" {
		return "upload"
	}
	return base
}

// 履歴のメモ用
func uploaderLabel(actor model.Actor) string {
	if actor.IsAdmin() {
		return "admin"
	}
	return "customer"
}

// 上限+1バイトまで読んで、超えていたら消して400
func saveUpload(ctx context.Context, store FileStore, key string, p preparedUpload, maxBytes int64) (int64, error) {
	size, err := store.Save(ctx, key, p.contentType, io.LimitReader(p.body, maxBytes+1))
	if err != nil {
		return 0, errStorage(err)
	}
	if size > maxBytes {
		_ = store.Delete(ctx, key)
		return 0, NewValidationError("file exceeds maximum size")
	}
	return size, nil
}

// DB側が失敗したときの後片付け
func discardUpload(ctx context.Context, store FileStore, log *zap.Logger, key string) {
	if err := store.Delete(context.WithoutCancel(ctx), key); err != nil {
		log.Warn("failed to remove orphaned upload", zap.String("key", key), zap.Error(err))
	}
}
