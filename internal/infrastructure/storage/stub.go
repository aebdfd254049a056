package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	appfinance "github.com/elimu/backend/internal/application/finance"
)

// Ensure StubReceiptStorage implements ReceiptStorage
var _ appfinance.ReceiptStorage = (*StubReceiptStorage)(nil)

// StubReceiptStorage is a no-op storage backend for development and tests.
// Generated URLs point at a fake host, and uploaded keys are tracked in
// memory so existence checks behave consistently within a process.
type StubReceiptStorage struct {
	BaseURL string

	mu      sync.RWMutex
	objects map[string]struct{}
}

// NewStubReceiptStorage creates a stub storage backend
func NewStubReceiptStorage() *StubReceiptStorage {
	return &StubReceiptStorage{
		BaseURL: "https://storage.example.com",
		objects: make(map[string]struct{}),
	}
}

// MarkUploaded records a key as present, simulating a completed client upload
func (s *StubReceiptStorage) MarkUploaded(storageKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[storageKey] = struct{}{}
}

// GenerateUploadURL returns a fake upload URL and marks the key as uploaded
func (s *StubReceiptStorage) GenerateUploadURL(_ context.Context, storageKey, _ string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	if expiresIn <= 0 {
		expiresIn = 15 * time.Minute
	}
	s.MarkUploaded(storageKey)
	return fmt.Sprintf("%s/upload/%s", s.BaseURL, storageKey), time.Now().Add(expiresIn), nil
}

// GenerateDownloadURL returns a fake download URL
func (s *StubReceiptStorage) GenerateDownloadURL(_ context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	if expiresIn <= 0 {
		expiresIn = 15 * time.Minute
	}
	return fmt.Sprintf("%s/download/%s", s.BaseURL, storageKey), time.Now().Add(expiresIn), nil
}

// DeleteObject removes a key from the in-memory set
func (s *StubReceiptStorage) DeleteObject(_ context.Context, storageKey string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, storageKey)
	return nil
}

// ObjectExists reports whether a key was previously uploaded or marked
func (s *StubReceiptStorage) ObjectExists(_ context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, errors.New("storage key is required")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[storageKey]
	return ok, nil
}
