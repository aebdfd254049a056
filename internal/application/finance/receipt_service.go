package finance

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/elimu/backend/internal/domain/finance"
	"github.com/elimu/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ReceiptStorage is the object storage interface for expense receipt
// scans. Implemented by the infrastructure layer (S3 or compatible).
type ReceiptStorage interface {
	// GenerateUploadURL generates a presigned URL for uploading a file
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL generates a presigned URL for downloading a file
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject deletes an object from storage
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists checks if an object exists in storage
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// ReceiptService manages receipt scans attached to expenses. Files never
// pass through the API server: clients upload and download directly
// against presigned URLs.
type ReceiptService struct {
	expenseRepo finance.ExpenseRepository
	storage     ReceiptStorage
	urlTTL      time.Duration
}

// NewReceiptService creates a new receipt service
func NewReceiptService(expenseRepo finance.ExpenseRepository, storage ReceiptStorage) *ReceiptService {
	return &ReceiptService{
		expenseRepo: expenseRepo,
		storage:     storage,
		urlTTL:      15 * time.Minute,
	}
}

// ReceiptUploadResponse carries a presigned upload URL and the key the
// client must confirm after uploading
type ReceiptUploadResponse struct {
	StorageKey string    `json:"storage_key"`
	UploadURL  string    `json:"upload_url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// ReceiptDownloadResponse is one attached receipt with a presigned
// download URL
type ReceiptDownloadResponse struct {
	StorageKey  string    `json:"storage_key"`
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// RequestUploadRequest asks for a presigned upload slot
type RequestUploadRequest struct {
	Filename    string `json:"filename" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"required"`
}

var allowedReceiptTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
}

// RequestUpload issues a presigned upload URL for a receipt scan. The key
// is namespaced by school and expense so listings stay tenant-scoped.
func (s *ReceiptService) RequestUpload(ctx context.Context, schoolID, expenseID uuid.UUID, req RequestUploadRequest) (*ReceiptUploadResponse, error) {
	expense, err := s.findExpense(ctx, schoolID, expenseID)
	if err != nil {
		return nil, err
	}
	if !allowedReceiptTypes[req.ContentType] {
		return nil, shared.NewDomainError("UNSUPPORTED_MEDIA_TYPE", "receipts must be PDF or image files")
	}

	ext := path.Ext(req.Filename)
	key := fmt.Sprintf("receipts/%s/%s/%s%s", schoolID, expense.ID, uuid.New(), ext)

	url, expiresAt, err := s.storage.GenerateUploadURL(ctx, key, req.ContentType, s.urlTTL)
	if err != nil {
		return nil, err
	}
	return &ReceiptUploadResponse{StorageKey: key, UploadURL: url, ExpiresAt: expiresAt}, nil
}

// ConfirmUpload attaches an uploaded receipt to the expense. The object
// must exist in storage; a key from a presign that was never used is
// rejected.
func (s *ReceiptService) ConfirmUpload(ctx context.Context, schoolID, expenseID uuid.UUID, storageKey string) error {
	expense, err := s.findExpense(ctx, schoolID, expenseID)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(storageKey, fmt.Sprintf("receipts/%s/%s/", schoolID, expense.ID)) {
		return shared.NewDomainError("INVALID_KEY", "storage key does not belong to this expense")
	}

	exists, err := s.storage.ObjectExists(ctx, storageKey)
	if err != nil {
		return err
	}
	if !exists {
		return shared.NewDomainError("NOT_FOUND", "no uploaded file found for this key")
	}

	keys := splitKeys(expense.AttachmentKeys)
	for _, k := range keys {
		if k == storageKey {
			return nil
		}
	}
	keys = append(keys, storageKey)
	expense.SetAttachmentKeys(strings.Join(keys, ","))

	return s.expenseRepo.Save(ctx, expense)
}

// ListReceipts returns presigned download URLs for every receipt attached
// to the expense
func (s *ReceiptService) ListReceipts(ctx context.Context, schoolID, expenseID uuid.UUID) ([]ReceiptDownloadResponse, error) {
	expense, err := s.findExpense(ctx, schoolID, expenseID)
	if err != nil {
		return nil, err
	}

	keys := splitKeys(expense.AttachmentKeys)
	receipts := make([]ReceiptDownloadResponse, 0, len(keys))
	for _, key := range keys {
		url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, key, s.urlTTL)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, ReceiptDownloadResponse{
			StorageKey:  key,
			DownloadURL: url,
			ExpiresAt:   expiresAt,
		})
	}
	return receipts, nil
}

// RemoveReceipt detaches a receipt and deletes the underlying object
func (s *ReceiptService) RemoveReceipt(ctx context.Context, schoolID, expenseID uuid.UUID, storageKey string) error {
	expense, err := s.findExpense(ctx, schoolID, expenseID)
	if err != nil {
		return err
	}

	keys := splitKeys(expense.AttachmentKeys)
	kept := keys[:0]
	found := false
	for _, k := range keys {
		if k == storageKey {
			found = true
			continue
		}
		kept = append(kept, k)
	}
	if !found {
		return shared.NewDomainError("NOT_FOUND", "receipt not attached to this expense")
	}

	if err := s.storage.DeleteObject(ctx, storageKey); err != nil {
		return err
	}
	expense.SetAttachmentKeys(strings.Join(kept, ","))
	return s.expenseRepo.Save(ctx, expense)
}

func (s *ReceiptService) findExpense(ctx context.Context, schoolID, id uuid.UUID) (*finance.Expense, error) {
	expense, err := s.expenseRepo.FindByIDForSchool(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "expense not found")
	}
	return expense, nil
}

func splitKeys(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			keys = append(keys, trimmed)
		}
	}
	return keys
}
