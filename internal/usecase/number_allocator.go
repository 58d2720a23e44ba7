package usecase

import (
	"context"
	"fmt"

	"ton-shipping/internal/domain/model"
	repo "ton-shipping/internal/repository"
)

const (
	trackingPrefix = "TON"
	invoicePrefix  = "INV"

	// 6桁固定
	maxSequence = 999999
)

// TON-2026-000001 / INV-2026-000001
func FormatSequenceNumber(prefix string, year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%06d", prefix, year, seq)
}

// 年ごとの連番で追跡番号と請求書番号を払い出す。
// 必ず呼び出し側のTx内で使う（rollbackで番号も戻る）。
type NumberAllocator struct {
	clock Clock
}

func NewNumberAllocator(clock Clock) *NumberAllocator {
	return &NumberAllocator{clock: clock}
}

func (a *NumberAllocator) TrackingNumber(ctx context.Context, r repo.TxRepos) (string, error) {
	return a.next(ctx, r, model.SequenceScopeTracking, trackingPrefix)
}

func (a *NumberAllocator) InvoiceNumber(ctx context.Context, r repo.TxRepos) (string, error) {
	return a.next(ctx, r, model.SequenceScopeInvoice, invoicePrefix)
}

func (a *NumberAllocator) next(ctx context.Context, r repo.TxRepos, scope model.SequenceScope, prefix string) (string, error) {
	year := a.clock.Now().Year()

	seq, err := r.Sequences().Next(ctx, scope, year)
	if err != nil {
		return "", errDB(err)
	}
	if seq < 1 || seq > maxSequence {
		return "", errConflict(fmt.Sprintf("%s sequence exhausted for %d", scope, year))
	}
	return FormatSequenceNumber(prefix, year, seq), nil
}
