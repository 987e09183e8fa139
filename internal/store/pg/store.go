package pg

import (
	"context"
	"encoding/json"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"rcsapi/internal/store"
)

type Store struct {
	DB *pgxpool.Pool
	sb sq.StatementBuilderType
}

func New(db *pgxpool.Pool) *Store {
	return &Store{
		DB: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (s *Store) GetAccountByID(ctx context.Context, id int64) (store.Account, bool, error) {
	row := s.DB.QueryRow(ctx, `
		SELECT id, name, api_key, created_at, updated_at FROM accounts WHERE id=$1
	`, id)
	return scanAccount(row)
}

func (s *Store) GetAccountByAPIKey(ctx context.Context, apiKey string) (store.Account, bool, error) {
	row := s.DB.QueryRow(ctx, `
		SELECT id, name, api_key, created_at, updated_at FROM accounts WHERE api_key=$1
	`, apiKey)
	return scanAccount(row)
}

func scanAccount(row pgx.Row) (store.Account, bool, error) {
	var a store.Account
	err := row.Scan(&a.ID, &a.Name, &a.APIKey, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.Account{}, false, nil
		}
		return store.Account{}, false, err
	}
	return a, true, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (store.User, bool, error) {
	row := s.DB.QueryRow(ctx, `
		SELECT id, username, email, password_hash, account_id, is_active, created_at, updated_at
		FROM users WHERE username=$1
	`, username)
	return scanUser(row)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (store.User, bool, error) {
	row := s.DB.QueryRow(ctx, `
		SELECT id, username, email, password_hash, account_id, is_active, created_at, updated_at
		FROM users WHERE email=$1
	`, email)
	return scanUser(row)
}

func scanUser(row pgx.Row) (store.User, bool, error) {
	var u store.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.AccountID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.User{}, false, nil
		}
		return store.User{}, false, err
	}
	return u, true, nil
}

func (s *Store) InsertUser(ctx context.Context, in store.UserInsert) (store.User, error) {
	row := s.DB.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, account_id, is_active, created_at)
		VALUES ($1,$2,$3,$4,TRUE,$5)
		RETURNING id, username, email, password_hash, account_id, is_active, created_at, updated_at
	`, in.Username, in.Email, in.PasswordHash, in.AccountID, in.Now)
	u, _, err := scanUser(row)
	return u, err
}

func (s *Store) GetTemplateByExternalID(ctx context.Context, externalID string) (store.Template, bool, error) {
	row := s.DB.QueryRow(ctx, `
		SELECT id, template_id, name, channel, channel_type, content, created_at, updated_at
		FROM templates WHERE template_id=$1
	`, externalID)
	var t store.Template
	err := row.Scan(&t.ID, &t.ExternalID, &t.Name, &t.Channel, &t.ChannelType, &t.Content, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.Template{}, false, nil
		}
		return store.Template{}, false, err
	}
	return t, true, nil
}

func (s *Store) InsertMessage(ctx context.Context, in store.MessageInsert) error {
	var varsJSON any
	if in.Vars != nil {
		b, err := json.Marshal(in.Vars)
		if err != nil {
			return err
		}
		varsJSON = b
	}
	_, err := s.DB.Exec(ctx, `
		INSERT INTO messages (callback_message_id, account_id, template_id, campaign_name, campaign_id,
		                      channel, channel_type, number, message_text, vars_json, callback_url,
		                      schedule_to, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$14)
	`, in.TrackingID, in.AccountID, in.TemplateID, nullIfEmpty(in.CampaignName), nullIfEmpty(in.CampaignID),
		in.Channel, in.ChannelType, in.Number, nullIfEmpty(in.MessageText), varsJSON, nullIfEmpty(in.CallbackURL),
		in.ScheduleTo, in.Status, in.Now)
	return err
}

func (s *Store) GetMessageByTrackingID(ctx context.Context, trackingID string) (store.Message, bool, error) {
	var varsJSON []byte
	row := s.DB.QueryRow(ctx, `
		SELECT id, callback_message_id, account_id, template_id, COALESCE(campaign_name,''), COALESCE(campaign_id,''),
		       channel, channel_type, number, COALESCE(message_text,''), vars_json, COALESCE(callback_url,''),
		       schedule_to, status, created_at, updated_at
		FROM messages WHERE callback_message_id=$1
	`, trackingID)
	var m store.Message
	err := row.Scan(&m.ID, &m.TrackingID, &m.AccountID, &m.TemplateID, &m.CampaignName, &m.CampaignID,
		&m.Channel, &m.ChannelType, &m.Number, &m.MessageText, &varsJSON, &m.CallbackURL,
		&m.ScheduleTo, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.Message{}, false, nil
		}
		return store.Message{}, false, err
	}
	if len(varsJSON) > 0 {
		_ = json.Unmarshal(varsJSON, &m.Vars)
	}
	return m, true, nil
}

func (s *Store) InsertEvent(ctx context.Context, in store.EventInsert) error {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO events (event_id, callback_message_id, account_id, template_id, campaign_name, campaign_id,
		                    channel, channel_type, message_text, message_status, event_type, event_value,
		                    event_direction, callback_url, schedule_to, "timestamp", created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
	`, in.EventID, in.TrackingID, in.AccountID, in.TemplateID, nullIfEmpty(in.CampaignName), nullIfEmpty(in.CampaignID),
		in.Channel, in.ChannelType, nullIfEmpty(in.MessageText), in.MessageStatus, in.EventType, nullIfEmpty(in.EventValue),
		in.EventDirection, nullIfEmpty(in.CallbackURL), in.ScheduleTo, in.Timestamp, in.Now)
	return err
}

var eventColumns = []string{
	"e.event_id",
	"e.callback_message_id",
	"e.campaign_name",
	"e.campaign_id",
	"e.template_id",
	"COALESCE(t.name, '')",
	"e.account_id",
	"e.channel",
	"e.channel_type",
	"e.message_text",
	"e.message_status",
	"e.event_type",
	"e.event_value",
	"e.event_direction",
	"e.callback_url",
	"e.schedule_to",
	"e.created_at",
	"e.updated_at",
	`e."timestamp"`,
}

func (s *Store) eventFilter(q store.EventQuery) sq.And {
	filter := sq.And{sq.Eq{"e.account_id": q.AccountID}}
	if len(q.TrackingIDs) > 0 {
		filter = append(filter, sq.Eq{"e.callback_message_id": q.TrackingIDs})
	}
	return filter
}

// ListEvents returns event rows joined against templates for the display
// name. Order is by insertion id: stable for an unmodified dataset, which is
// all the API promises.
func (s *Store) ListEvents(ctx context.Context, q store.EventQuery) ([]store.EventRecord, error) {
	b := s.sb.Select(eventColumns...).
		From("events e").
		LeftJoin("templates t ON t.id = e.template_id").
		Where(s.eventFilter(q)).
		OrderBy("e.id")
	if q.Limit > 0 {
		b = b.Limit(uint64(q.Limit)).Offset(uint64(q.Offset))
	}

	sqlStr, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.DB.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.EventRecord
	for rows.Next() {
		var e store.EventRecord
		if err := rows.Scan(&e.EventID, &e.TrackingID, &e.CampaignName, &e.CampaignID, &e.TemplateID,
			&e.TemplateName, &e.AccountID, &e.Channel, &e.ChannelType, &e.MessageText, &e.MessageStatus,
			&e.EventType, &e.EventValue, &e.EventDirection, &e.CallbackURL, &e.ScheduleTo,
			&e.CreatedAt, &e.UpdatedAt, &e.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) CountEvents(ctx context.Context, q store.EventQuery) (int, error) {
	sqlStr, args, err := s.sb.Select("COUNT(*)").
		From("events e").
		Where(s.eventFilter(q)).
		ToSql()
	if err != nil {
		return 0, err
	}

	var n int
	if err := s.DB.QueryRow(ctx, sqlStr, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation (duplicate tracking or event id).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsForeignKeyViolation reports whether err is a Postgres FK violation.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
