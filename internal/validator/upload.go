package validator

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// 先頭何バイトで判定するか
const SniffBytes = 3072

type UploadRules struct {
	MaxBytes int64
	// 拡張子（ドットなし、小文字）ごとの許可MIME
	Allowed map[string]string
}

// pdf/jpg/jpeg/png
func DefaultUploadRules(maxBytes int64) UploadRules {
	return UploadRules{
		MaxBytes: maxBytes,
		Allowed: map[string]string{
			"pdf":  "application/pdf",
			"jpg":  "image/jpeg",
			"jpeg": "image/jpeg",
			"png":  "image/png",
		},
	}
}

func (r UploadRules) allowedList() string {
	return "pdf, jpg, jpeg, png"
}

type UploadCheck struct {
	Extension   string
	ContentType string
}

// 当てはまる問題を全部返す。headはファイル先頭（SniffBytesまで）。
func ValidateUpload(fileName string, size int64, head []byte, rules UploadRules) (UploadCheck, []string) {
	var msgs []string
	var out UploadCheck

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(strings.TrimSpace(fileName))), ".")
	wantMIME, extOK := rules.Allowed[ext]
	if !extOK {
		msgs = append(msgs, fmt.Sprintf("file type not allowed, allowed types: %s", rules.allowedList()))
	}

	if size <= 0 {
		msgs = append(msgs, "file is empty")
	} else if size > rules.MaxBytes {
		msgs = append(msgs, fmt.Sprintf("file exceeds maximum size of %d MB", rules.MaxBytes/(1024*1024)))
	}

	if size > 0 {
		detected := mimetype.Detect(head)
		out.ContentType = detected.String()
		if extOK && !detected.Is(wantMIME) {
			msgs = append(msgs, "file content does not match its extension")
		}
	}

	out.Extension = ext
	if len(msgs) > 0 {
		return out, msgs
	}
	out.ContentType = wantMIME
	return out, nil
}
