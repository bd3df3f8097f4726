// Package confsvc talks to the external conferencing provider that backs
// online meetings.
package confsvc

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core"
)

type service struct {
	client  *http.Client
	baseURL string
	token   string
}

var _ core.ConferenceService = (*service)(nil)

func NewService(conf *core.Config) *service {
	return &service{
		client:  &http.Client{Timeout: conf.Conferencing.Timeout},
		baseURL: conf.Conferencing.BaseURL,
		token:   conf.Conferencing.Token,
	}
}

// DeleteMeetingResource releases the provider-side room held by a meeting.
// Deleting an already released resource is not an error.
func (svc *service) DeleteMeetingResource(ctx context.Context, resourceID string) error {
	url := fmt.Sprintf("%s/rooms/%s", svc.baseURL, resourceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	req.Header.Set("Authorization", "Bearer "+svc.token)

	res, err := svc.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "calling conferencing provider")
	}
	defer func() { _ = res.Body.Close() }()

	switch res.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	default:
		return errors.Errorf("conferencing provider returned %d", res.StatusCode)
	}
}
