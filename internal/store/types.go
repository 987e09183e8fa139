package store

import "time"

type Account struct {
	ID        int64
	Name      string
	APIKey    string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	AccountID    int64
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

type UserInsert struct {
	Username     string
	Email        string
	PasswordHash string
	AccountID    int64
	Now          time.Time
}

type Template struct {
	ID          int64
	ExternalID  string
	Name        string
	Channel     string
	ChannelType string
	Content     string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

type Message struct {
	ID           int64
	TrackingID   string
	AccountID    int64
	TemplateID   int64
	CampaignName string
	CampaignID   string
	Channel      string
	ChannelType  string
	Number       string
	MessageText  string
	Vars         map[string]any
	CallbackURL  string
	ScheduleTo   *time.Time
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type MessageInsert struct {
	TrackingID   string
	AccountID    int64
	TemplateID   int64
	CampaignName string
	CampaignID   string
	Channel      string
	ChannelType  string
	Number       string
	MessageText  string
	Vars         map[string]any
	CallbackURL  string
	ScheduleTo   *time.Time
	Status       string
	Now          time.Time
}

type EventInsert struct {
	EventID        string
	TrackingID     string
	AccountID      int64
	TemplateID     int64
	CampaignName   string
	CampaignID     string
	Channel        string
	ChannelType    string
	MessageText    string
	MessageStatus  string
	EventType      string
	EventValue     string
	EventDirection string
	CallbackURL    string
	ScheduleTo     *time.Time
	Timestamp      time.Time
	Now            time.Time
}

// EventQuery scopes every event read to one account. A non-empty TrackingIDs
// set narrows further; Limit <= 0 means no window.
type EventQuery struct {
	AccountID   int64
	TrackingIDs []string
	Limit       int
	Offset      int
}

// EventRecord is an event row joined with its template's display name.
// TemplateName is empty when the template row cannot be resolved.
type EventRecord struct {
	EventID        string
	TrackingID     string
	CampaignName   *string
	CampaignID     *string
	TemplateID     int64
	TemplateName   string
	AccountID      int64
	Channel        string
	ChannelType    string
	MessageText    *string
	MessageStatus  string
	EventType      string
	EventValue     *string
	EventDirection string
	CallbackURL    *string
	ScheduleTo     *time.Time
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	Timestamp      time.Time
}
