package service

import (
	"context"
	"strconv"

	"rcsapi/internal/domain"
	"rcsapi/internal/store"
)

type EventStore interface {
	ListEvents(ctx context.Context, q store.EventQuery) ([]store.EventRecord, error)
	CountEvents(ctx context.Context, q store.EventQuery) (int, error)
}

// placeholderTemplateName is shown when an event's template row cannot be
// resolved; display never fails on a missing template.
const placeholderTemplateName = "Unknown"

const (
	defaultPageLimit = 100
	maxPageLimit     = 1000
)

type EventService struct {
	Store EventStore
}

// List returns one page of the caller's events, optionally narrowed to a set
// of tracking ids. Page and limit are clamped so the offset can never go
// negative: page < 1 becomes 1, limit < 1 becomes the default, and limit is
// capped at maxPageLimit. The clamped values are echoed in the response.
func (s *EventService) List(ctx context.Context, caller store.Account, trackingIDs []string, page, limit int) (domain.EventsResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	q := store.EventQuery{
		AccountID:   caller.ID,
		TrackingIDs: dedupe(trackingIDs),
		Limit:       limit,
		Offset:      (page - 1) * limit,
	}

	total, err := s.Store.CountEvents(ctx, q)
	if err != nil {
		return domain.EventsResponse{}, err
	}

	records, err := s.Store.ListEvents(ctx, q)
	if err != nil {
		return domain.EventsResponse{}, err
	}

	return domain.EventsResponse{
		Events: mapEventViews(records),
		Total:  total,
		Page:   page,
		Limit:  limit,
	}, nil
}

// GetByTrackingID returns every event for one tracking id, unpaginated.
// Zero matching rows is a not-found condition.
func (s *EventService) GetByTrackingID(ctx context.Context, caller store.Account, trackingID string) (domain.EventsResponse, error) {
	q := store.EventQuery{
		AccountID:   caller.ID,
		TrackingIDs: []string{trackingID},
	}

	records, err := s.Store.ListEvents(ctx, q)
	if err != nil {
		return domain.EventsResponse{}, err
	}
	if len(records) == 0 {
		return domain.EventsResponse{}, domain.NotFoundf("No events found for callback message ID: %s", trackingID)
	}

	return domain.EventsResponse{
		Events: mapEventViews(records),
		Total:  len(records),
		Page:   1,
		Limit:  len(records),
	}, nil
}

func mapEventViews(records []store.EventRecord) []domain.EventView {
	views := make([]domain.EventView, 0, len(records))
	for _, rec := range records {
		name := rec.TemplateName
		if name == "" {
			name = placeholderTemplateName
		}
		views = append(views, domain.EventView{
			EventID:           rec.EventID,
			CallbackMessageID: rec.TrackingID,
			CampaignName:      rec.CampaignName,
			CampaignID:        rec.CampaignID,
			TemplateID:        strconv.FormatInt(rec.TemplateID, 10),
			TemplateName:      name,
			AccountID:         rec.AccountID,
			Channel:           rec.Channel,
			ChannelType:       rec.ChannelType,
			MessageText:       rec.MessageText,
			MessageStatus:     rec.MessageStatus,
			EventType:         rec.EventType,
			EventValue:        rec.EventValue,
			EventDirection:    rec.EventDirection,
			CallbackURL:       rec.CallbackURL,
			ScheduleTo:        rec.ScheduleTo,
			CreatedAt:         rec.CreatedAt,
			UpdatedAt:         rec.UpdatedAt,
			Timestamp:         rec.Timestamp,
		})
	}
	return views
}

// dedupe collapses the filter to set semantics: order irrelevant, duplicates
// dropped.
func dedupe(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
