package model

import "time"

type DocumentType string

const (
	DocumentTypeBillOfLading         DocumentType = "Bill of Lading"
	DocumentTypeCommercialInvoice    DocumentType = "Commercial Invoice"
	DocumentTypePackingList          DocumentType = "Packing List"
	DocumentTypeCertificateOfOrigin  DocumentType = "Certificate of Origin"
	DocumentTypeDangerousGoods       DocumentType = "Dangerous Goods Declaration"
	DocumentTypeInsuranceCertificate DocumentType = "Insurance Certificate"
	DocumentTypeImportPermit         DocumentType = "Import Permit"
	DocumentTypeOther                DocumentType = "Other"
)

var DocumentTypes = []DocumentType{
	DocumentTypeBillOfLading,
	DocumentTypeCommercialInvoice,
	DocumentTypePackingList,
	DocumentTypeCertificateOfOrigin,
	DocumentTypeDangerousGoods,
	DocumentTypeInsuranceCertificate,
	DocumentTypeImportPermit,
	DocumentTypeOther,
}

func (t DocumentType) Valid() bool {
	for _, v := range DocumentTypes {
		if v == t {
			return true
		}
	}
	return false
}

type Document struct {
	ID             int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	ShipmentID     int64        `gorm:"not null;index" json:"shipment_id"`
	DocumentType   DocumentType `gorm:"type:varchar(100);not null" json:"document_type"`
	FileName       string       `gorm:"type:varchar(255);not null" json:"file_name"`
	FilePath       string       `gorm:"type:varchar(512);not null" json:"-"`
	ContentType    string       `gorm:"type:varchar(100);not null" json:"content_type"`
	SizeBytes      int64        `gorm:"not null" json:"size_bytes"`
	IsPaymentProof bool         `gorm:"not null;default:false;index" json:"is_payment_proof"`
	InvoiceID      *int64       `gorm:"index" json:"invoice_id,omitempty"`
	UploadedBy     int64        `gorm:"not null" json:"uploaded_by"`
	UploadedAt     time.Time    `gorm:"not null" json:"uploaded_at"`
}
