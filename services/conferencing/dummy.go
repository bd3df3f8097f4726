package confsvc

import (
	"context"
	"sync"

	"github.com/trezcool/kelasi/core"
)

// DummyService records deletions and can be primed to fail.
type DummyService struct {
	mu      sync.Mutex
	Deleted []string
	Err     error
}

var _ core.ConferenceService = (*DummyService)(nil)

func NewDummyService() *DummyService {
	return &DummyService{}
}

func (svc *DummyService) DeleteMeetingResource(ctx context.Context, resourceID string) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.Err != nil {
		return svc.Err
	}
	svc.Deleted = append(svc.Deleted, resourceID)
	return nil
}

func (svc *DummyService) DeletedResources() []string {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return append([]string(nil), svc.Deleted...)
}
