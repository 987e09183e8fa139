package domain

import "time"

// Message status assigned at send time. No further transitions happen in
// this service; delivery progress arrives as events from the carrier feed.
const (
	StatusScheduled = "scheduled"
	StatusPending   = "pending"
)

// Event directions relative to the account.
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

type RecipientMessage struct {
	Number     string         `json:"number"`
	Message    string         `json:"message,omitempty"`
	Vars       map[string]any `json:"vars,omitempty"`
	ScheduleTo *time.Time     `json:"scheduleTo,omitempty"`
}

type Fallback struct {
	Channel string `json:"channel"`
	Message string `json:"message"`
}

type SendRequest struct {
	AccountID    int64              `json:"accountId"`
	Channel      string             `json:"channel"`
	ChannelType  string             `json:"channelType"`
	TemplateID   string             `json:"templateId"`
	CampaignName string             `json:"campaignName,omitempty"`
	CampaignID   string             `json:"campaignId,omitempty"`
	CallbackURL  string             `json:"callbackUrl,omitempty"`
	Fallback     []Fallback         `json:"fallback,omitempty"`
	Messages     []RecipientMessage `json:"messages"`
}

func (r SendRequest) Validate() error {
	if r.AccountID == 0 || r.Channel == "" || r.ChannelType == "" || r.TemplateID == "" || len(r.Messages) == 0 {
		return ErrMissingFields
	}
	for _, m := range r.Messages {
		if m.Number == "" {
			return ErrMissingFields
		}
	}
	return nil
}

type RecipientSuccess struct {
	Number            string `json:"number"`
	CallbackMessageID string `json:"callbackMessageId"`
}

type RecipientError struct {
	Number       string `json:"number"`
	ErrorMessage string `json:"errorMessage"`
}

type SendResultLists struct {
	Successes []RecipientSuccess `json:"successes"`
	Errors    []RecipientError   `json:"errors"`
}

// SendResponse keeps the historical dotted aliases of the public contract,
// misspelling included; only the JSON tags carry it.
type SendResponse struct {
	Code            int             `json:"return.code"`
	Message         string          `json:"return.message"`
	CampaignName    *string         `json:"return.campaignName"`
	CampaignID      *string         `json:"return.campaignId"`
	NumberSuccesses int             `json:"return.numberSucesses"`
	NumberErrors    int             `json:"return.numberErrors"`
	Messages        SendResultLists `json:"messages"`
}

type EventView struct {
	EventID           string     `json:"eventId"`
	CallbackMessageID string     `json:"callbackMessageId"`
	CampaignName      *string    `json:"campaignName"`
	CampaignID        *string    `json:"campaignId"`
	TemplateID        string     `json:"templateId"`
	TemplateName      string     `json:"templateName"`
	AccountID         int64      `json:"accountId"`
	Channel           string     `json:"channel"`
	ChannelType       string     `json:"channelType"`
	MessageText       *string    `json:"messageText"`
	MessageStatus     string     `json:"messageStatus"`
	EventType         string     `json:"eventType"`
	EventValue        *string    `json:"eventValue"`
	EventDirection    string     `json:"eventDirection"`
	CallbackURL       *string    `json:"callbackUrl"`
	ScheduleTo        *time.Time `json:"scheduleTo"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         *time.Time `json:"updatedAt"`
	Timestamp         time.Time  `json:"timestamp"`
}

type EventsResponse struct {
	Events []EventView `json:"events"`
	Total  int         `json:"total"`
	Page   int         `json:"page"`
	Limit  int         `json:"limit"`
}

type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	AccountID int64  `json:"account_id"`
}

func (r RegisterRequest) Validate() error {
	if r.Username == "" || r.Email == "" || r.Password == "" || r.AccountID == 0 {
		return ErrMissingFields
	}
	return nil
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UserView struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	AccountID int64     `json:"account_id"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}
