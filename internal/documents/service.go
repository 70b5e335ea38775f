package documents

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"

	"oncocare/case-portal/case-portal-backend/internal/lifecycle"
)

type UploadRequest struct {
	RequestID  uuid.UUID
	SlotKey    string
	FileName   string
	FileSize   int64
	Content    io.Reader
	UploadedBy uuid.UUID
}

// Service tracks the required-document checklist of each service request and
// feeds slot presence to the lifecycle engine.
type Service struct {
	repo  Repository
	store ObjectStore
}

func NewService(repo Repository, store ObjectStore) *Service {
	return &Service{repo: repo, store: store}
}

// InitChecklist creates the kind's fixed slot set for a new request. Called
// once at intake; slots are never added or removed afterwards.
func (s *Service) InitChecklist(ctx context.Context, requestID uuid.UUID, kind lifecycle.Kind) error {
	keys := lifecycle.DocumentSlotsByKind[kind]
	slots := make([]RequiredDocument, 0, len(keys))
	for _, key := range keys {
		slots = append(slots, RequiredDocument{
			ID:        uuid.New(),
			RequestID: requestID,
			SlotKey:   key,
			CreatedAt: time.Now(),
		})
	}
	return s.repo.CreateSlots(ctx, slots)
}

// Upload stores the artifact and fills its slot.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (*RequiredDocument, error) {
	slot, err := s.repo.GetSlot(ctx, req.RequestID, req.SlotKey)
	if err != nil {
		return nil, err
	}

	objectKey := s.objectKey(req.RequestID, req.SlotKey, req.FileName)
	if err := s.store.Upload(ctx, objectKey, req.Content); err != nil {
		return nil, err
	}

	slot.ObjectKey = &objectKey
	slot.FileName = req.FileName
	slot.FileSize = req.FileSize
	slot.UploadedBy = &req.UploadedBy
	if err := s.repo.MarkUploaded(ctx, slot); err != nil {
		return nil, err
	}
	return slot, nil
}

// Presence reports the absent/present state of every slot, keyed by slot
// key. This is the engine's documentsComplete feed.
func (s *Service) Presence(ctx context.Context, requestID uuid.UUID) (map[string]bool, error) {
	slots, err := s.repo.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	presence := make(map[string]bool, len(slots))
	for i := range slots {
		presence[slots[i].SlotKey] = slots[i].Present()
	}
	return presence, nil
}

// Checklist returns the full slot list for rendering the requirement view.
func (s *Service) Checklist(ctx context.Context, requestID uuid.UUID) ([]RequiredDocument, error) {
	return s.repo.ListByRequest(ctx, requestID)
}

// DownloadURL produces a short-lived link to an uploaded artifact.
func (s *Service) DownloadURL(ctx context.Context, requestID uuid.UUID, slotKey string) (string, error) {
	slot, err := s.repo.GetSlot(ctx, requestID, slotKey)
	if err != nil {
		return "", err
	}
	if !slot.Present() {
		return "", fmt.Errorf("slot %s has no uploaded document", slotKey)
	}
	return s.store.PresignedURL(ctx, *slot.ObjectKey, 15*time.Minute)
}

// StoreGenerated saves an engine-produced print document (LOA, case summary)
// under the request's prefix and returns its object key.
func (s *Service) StoreGenerated(ctx context.Context, requestID uuid.UUID, name string, content io.Reader) (string, error) {
	key := fmt.Sprintf("requests/%s/generated/%s", requestID, name)
	if err := s.store.Upload(ctx, key, content); err != nil {
		return "", err
	}
	return key, nil
}

func (s *Service) objectKey(requestID uuid.UUID, slotKey, fileName string) string {
	return fmt.Sprintf("requests/%s/%s/%s", requestID, slotKey, path.Base(fileName))
}
