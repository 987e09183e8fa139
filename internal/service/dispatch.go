package service

import (
	"context"
	"time"

	"rcsapi/internal/domain"
	"rcsapi/internal/observability"
	"rcsapi/internal/store"
)

type DispatchStore interface {
	GetTemplateByExternalID(ctx context.Context, externalID string) (store.Template, bool, error)
	InsertMessage(ctx context.Context, in store.MessageInsert) error
}

// DispatchService validates a send request, fans out one message row per
// recipient and aggregates per-recipient outcomes into a single response.
type DispatchService struct {
	Store      DispatchStore
	TrackingID func() string
}

// recipientResult is the explicit outcome of one recipient's persistence
// attempt; the batch loop aggregates these instead of relying on panics or
// request-level errors.
type recipientResult struct {
	number     string
	trackingID string
	err        error
}

// Send processes one batch. A recipient's failure never aborts the batch;
// request-level errors happen only before any recipient is touched.
func (s *DispatchService) Send(ctx context.Context, req domain.SendRequest, caller store.Account, now time.Time) (domain.SendResponse, error) {
	if req.AccountID != caller.ID {
		return domain.SendResponse{}, domain.Forbiddenf("Account ID does not match authenticated account")
	}

	template, found, err := s.Store.GetTemplateByExternalID(ctx, req.TemplateID)
	if err != nil {
		return domain.SendResponse{}, err
	}
	if !found {
		return domain.SendResponse{}, domain.NotFoundf("Template with ID %s not found", req.TemplateID)
	}

	resp := domain.SendResponse{
		Code:         200,
		Message:      "Messages processed",
		CampaignName: nilIfEmpty(req.CampaignName),
		CampaignID:   nilIfEmpty(req.CampaignID),
		Messages: domain.SendResultLists{
			Successes: []domain.RecipientSuccess{},
			Errors:    []domain.RecipientError{},
		},
	}

	for _, msg := range req.Messages {
		res := s.persistRecipient(ctx, req, template, caller, msg, now)
		if res.err != nil {
			observability.DispatchRecipients.WithLabelValues("error").Inc()
			resp.Messages.Errors = append(resp.Messages.Errors, domain.RecipientError{
				Number:       res.number,
				ErrorMessage: res.err.Error(),
			})
			resp.NumberErrors++
			continue
		}
		observability.DispatchRecipients.WithLabelValues("ok").Inc()
		resp.Messages.Successes = append(resp.Messages.Successes, domain.RecipientSuccess{
			Number:            res.number,
			CallbackMessageID: res.trackingID,
		})
		resp.NumberSuccesses++
	}

	switch {
	case resp.NumberSuccesses == 0 && resp.NumberErrors > 0:
		resp.Code = 500
		resp.Message = "All messages failed to process"
		observability.DispatchBatches.WithLabelValues("failed").Inc()
	case resp.NumberErrors > 0:
		resp.Code = 207
		resp.Message = "Some messages failed to process"
		observability.DispatchBatches.WithLabelValues("partial").Inc()
	default:
		observability.DispatchBatches.WithLabelValues("ok").Inc()
	}

	return resp, nil
}

func (s *DispatchService) persistRecipient(ctx context.Context, req domain.SendRequest, template store.Template, caller store.Account, msg domain.RecipientMessage, now time.Time) recipientResult {
	trackingID := s.TrackingID()

	status := domain.StatusPending
	if msg.ScheduleTo != nil && msg.ScheduleTo.After(now) {
		status = domain.StatusScheduled
	}

	err := s.Store.InsertMessage(ctx, store.MessageInsert{
		TrackingID:   trackingID,
		AccountID:    caller.ID,
		TemplateID:   template.ID,
		CampaignName: req.CampaignName,
		CampaignID:   req.CampaignID,
		Channel:      req.Channel,
		ChannelType:  req.ChannelType,
		Number:       msg.Number,
		MessageText:  msg.Message,
		Vars:         msg.Vars,
		CallbackURL:  req.CallbackURL,
		ScheduleTo:   msg.ScheduleTo,
		Status:       status,
		Now:          now,
	})
	if err != nil {
		return recipientResult{number: msg.Number, err: err}
	}
	return recipientResult{number: msg.Number, trackingID: trackingID}
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
