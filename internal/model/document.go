package model

import "time"

// Document types.
const (
	DocumentPurchaseReceipt = "PURCHASE_RECEIPT"
	DocumentBankReceipt     = "BANK_RECEIPT"
	DocumentServiceReport   = "SERVICE_REPORT"
	DocumentProject         = "PROJECT_DOCUMENT"
)

// Document is metadata about a stored file attached to another record.
type Document struct {
	ID           int64     `json:"id" db:"id"`
	DocumentType string    `json:"documentType" db:"document_type"`
	RelatedID    *int64    `json:"relatedId" db:"related_id"`
	RelatedType  string    `json:"relatedType,omitempty" db:"related_type"`
	FileName     string    `json:"fileName" db:"file_name"`
	FilePath     string    `json:"filePath" db:"file_path"`
	UploadDate   time.Time `json:"uploadDate" db:"upload_date"`
	UploadedBy   int64     `json:"uploadedBy" db:"uploaded_by"`
}

// ValidDocumentType reports whether s is a known document type.
func ValidDocumentType(s string) bool {
	switch s {
	case DocumentPurchaseReceipt, DocumentBankReceipt, DocumentServiceReport, DocumentProject:
		return true
	}
	return false
}
