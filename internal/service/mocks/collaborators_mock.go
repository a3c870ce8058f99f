// Package mocks provides mock implementations of the external
// collaborators for testing the services.
package mocks

import (
	"context"
	"fmt"
	"sync"

	"gitlab.com/adigun/schoolfin/internal/service"
)

// UploadedReceipt captures one call to MockUploader.Upload.
type UploadedReceipt struct {
	LocalPath    string
	ResourceType string
	Folder       string
	PublicID     string
}

// Compile-time checks that the mocks implement the collaborator interfaces.
var (
	_ service.ReceiptUploader  = (*MockUploader)(nil)
	_ service.DocumentRenderer = (*MockRenderer)(nil)
)

// MockUploader simulates the receipt object-storage collaborator.
type MockUploader struct {
	mu sync.Mutex

	Uploads   []UploadedReceipt
	Deletes   []string
	UploadErr error
	DeleteErr error

	// UploadHook, when set, runs during Upload. Tests use it to interleave
	// work between a service's pre-upload reads and its transaction.
	UploadHook func()
}

// NewMockUploader creates a MockUploader.
func NewMockUploader() *MockUploader {
	return &MockUploader{}
}

// Upload records the call and returns a fake secure URL.
func (m *MockUploader) Upload(_ context.Context, localPath, resourceType, folder, publicID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UploadErr != nil {
		return "", m.UploadErr
	}
	if m.UploadHook != nil {
		m.UploadHook()
	}
	m.Uploads = append(m.Uploads, UploadedReceipt{
		LocalPath:    localPath,
		ResourceType: resourceType,
		Folder:       folder,
		PublicID:     publicID,
	})
	return fmt.Sprintf("https://storage.example/%s", publicID), nil
}

// Delete records the call.
func (m *MockUploader) Delete(_ context.Context, publicID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.Deletes = append(m.Deletes, publicID)
	return nil
}

// UploadCount returns how many uploads succeeded.
func (m *MockUploader) UploadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Uploads)
}

// DeleteCount returns how many deletes succeeded.
func (m *MockUploader) DeleteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Deletes)
}

// MockRenderer simulates the document renderer collaborator.
type MockRenderer struct {
	mu sync.Mutex

	Reports   []service.ExpenseReport
	RenderErr error
}

// NewMockRenderer creates a MockRenderer.
func NewMockRenderer() *MockRenderer {
	return &MockRenderer{}
}

// RenderExpenseReport records the report and returns placeholder bytes.
func (m *MockRenderer) RenderExpenseReport(_ context.Context, report service.ExpenseReport) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RenderErr != nil {
		return nil, m.RenderErr
	}
	m.Reports = append(m.Reports, report)
	return []byte("%PDF-mock"), nil
}

// LastReport returns the most recently rendered report, or nil.
func (m *MockRenderer) LastReport() *service.ExpenseReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Reports) == 0 {
		return nil
	}
	return &m.Reports[len(m.Reports)-1]
}
