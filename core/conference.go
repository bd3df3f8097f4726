package core

import "context"

// ConferenceService is any service that can tear down conferencing resources
// (video rooms) attached to meetings. Calls are best-effort: callers log
// failures and carry on.
type ConferenceService interface {
	DeleteMeetingResource(ctx context.Context, resourceID string) error
}
