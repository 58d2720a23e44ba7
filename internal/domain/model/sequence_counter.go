package model

type SequenceScope string

const (
	SequenceScopeTracking SequenceScope = "tracking"
	SequenceScopeInvoice  SequenceScope = "invoice"
)

// 年ごとの採番カウンタ
type SequenceCounter struct {
	Scope     SequenceScope `gorm:"type:varchar(20);primaryKey" json:"scope"`
	Year      int           `gorm:"primaryKey" json:"year"`
	LastValue int64         `gorm:"not null" json:"last_value"`
}
