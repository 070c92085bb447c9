package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/opsledger/internal/model"
)

// CreateDocument stores document metadata.
func CreateDocument(ctx context.Context, q sqlx.ExtContext, d model.Document) (*model.Document, error) {
	id, err := insertID(ctx, q,
		`INSERT INTO documents (document_type, related_id, related_type, file_name, file_path, upload_date, uploaded_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.DocumentType, d.RelatedID, d.RelatedType, d.FileName, d.FilePath, d.UploadDate.UTC(), d.UploadedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("creating document: %w", err)
	}
	d.ID = id
	return &d, nil
}

// ListDocuments returns the documents attached to one record.
func ListDocuments(ctx context.Context, q sqlx.ExtContext, relatedID int64, relatedType string) ([]model.Document, error) {
	docs, err := selectAll[model.Document](ctx, q,
		`SELECT id, document_type, related_id, related_type, file_name, file_path, upload_date, uploaded_by
		 FROM documents WHERE related_id = ? AND related_type = ?
		 ORDER BY upload_date DESC, id DESC`, relatedID, relatedType)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	return docs, nil
}
