package services

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/fredcamaral/slidedeck/internal/domain/entities"
	"github.com/fredcamaral/slidedeck/internal/domain/ports"
)

// Mock implementations shared by the session and collection tests

type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) Get(ctx context.Context, id entities.DocumentID) (*entities.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Document), args.Error(1)
}

func (m *MockDocumentStore) Create(ctx context.Context, payload entities.DocumentPayload) (entities.DocumentID, error) {
	args := m.Called(ctx, payload)
	return args.Get(0).(entities.DocumentID), args.Error(1)
}

func (m *MockDocumentStore) Update(ctx context.Context, id entities.DocumentID, payload entities.DocumentPayload) error {
	args := m.Called(ctx, id, payload)
	return args.Error(0)
}

func (m *MockDocumentStore) Delete(ctx context.Context, id entities.DocumentID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDocumentStore) List(ctx context.Context, page, pageSize int) (*entities.Page, error) {
	args := m.Called(ctx, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Page), args.Error(1)
}

func (m *MockDocumentStore) Clone(ctx context.Context, id entities.DocumentID) (*entities.DocumentSummary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DocumentSummary), args.Error(1)
}

type MockAssetStore struct {
	mock.Mock
}

func (m *MockAssetStore) Upload(ctx context.Context, files ...ports.Upload) ([]string, error) {
	args := m.Called(ctx, files)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type notice struct {
	Level   ports.NoticeLevel
	Message string
}

// recorder captures every side channel a session or collection talks to
type recorder struct {
	mu         sync.Mutex
	pageViews  []string
	events     []string
	exceptions []string
	notices    []notice
	editorIDs  []entities.DocumentID
	archive    int
}

func (r *recorder) RecordPageView(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pageViews = append(r.pageViews, name)
}

func (r *recorder) RecordEvent(category, label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, category+":"+label)
}

func (r *recorder) RecordException(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exceptions = append(r.exceptions, message)
}

func (r *recorder) Notify(level ports.NoticeLevel, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, notice{Level: level, Message: message})
}

func (r *recorder) ToEditor(id entities.DocumentID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.editorIDs = append(r.editorIDs, id)
}

func (r *recorder) ToArchive() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.archive++
}

func (r *recorder) Notices() []notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notice(nil), r.notices...)
}

func (r *recorder) Exceptions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.exceptions...)
}

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

var (
	_ ports.DocumentStore = (*MockDocumentStore)(nil)
	_ ports.AssetStore    = (*MockAssetStore)(nil)
	_ ports.Telemetry     = (*recorder)(nil)
	_ ports.Notifier      = (*recorder)(nil)
	_ ports.Navigator     = (*recorder)(nil)
)
