//go:build integration
// +build integration

package integration

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"rcsapi/internal/domain"
	"rcsapi/internal/feed"
	sqsqueue "rcsapi/internal/queue/sqs"
	"rcsapi/internal/service"
	"rcsapi/internal/store"
	"rcsapi/internal/store/pg"
	"rcsapi/internal/util"
)

func TestDispatchPersistsMessages(t *testing.T) {
	ctx := context.Background()
	db, cleanup := setupTestDB(t)
	defer cleanup()

	st := pg.New(db)
	account := seedAccount(t, db, "Acme")
	seedTemplate(t, db, "tmpl_welcome", "Welcome")

	svc := &service.DispatchService{Store: st, TrackingID: util.NewTrackingID}

	resp, err := svc.Send(ctx, domain.SendRequest{
		AccountID:   account.ID,
		Channel:     "RCS",
		ChannelType: "Single",
		TemplateID:  "tmpl_welcome",
		Messages: []domain.RecipientMessage{
			{Number: "5511999990000", Message: "hello", Vars: map[string]any{"name": "a"}},
			{Number: "5511999990001", Message: "hello"},
		},
	}, account, time.Now())
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if resp.Code != 200 || resp.NumberSuccesses != 2 {
		t.Fatalf("response code=%d successes=%d", resp.Code, resp.NumberSuccesses)
	}

	var count int
	if err := db.QueryRow(ctx, `SELECT count(*) FROM messages WHERE account_id=$1`, account.ID).Scan(&count); err != nil {
		t.Fatalf("count messages: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 message rows, got %d", count)
	}

	tracking := resp.Messages.Successes[0].CallbackMessageID
	msg, found, err := st.GetMessageByTrackingID(ctx, tracking)
	if err != nil || !found {
		t.Fatalf("lookup %s: found=%v err=%v", tracking, found, err)
	}
	if msg.Status != domain.StatusPending {
		t.Fatalf("expected pending, got %s", msg.Status)
	}
}

func TestFeedEventVisibleInQuery(t *testing.T) {
	ctx := context.Background()
	db, cleanup := setupTestDB(t)
	defer cleanup()

	st := pg.New(db)
	account := seedAccount(t, db, "Acme")
	seedTemplate(t, db, "tmpl_welcome", "Welcome")

	dispatch := &service.DispatchService{Store: st, TrackingID: util.NewTrackingID}
	resp, err := dispatch.Send(ctx, domain.SendRequest{
		AccountID:   account.ID,
		Channel:     "RCS",
		ChannelType: "Single",
		TemplateID:  "tmpl_welcome",
		Messages:    []domain.RecipientMessage{{Number: "5511999990000", Message: "hello"}},
	}, account, time.Now())
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	tracking := resp.Messages.Successes[0].CallbackMessageID

	proc := &feed.Processor{Store: st}
	ev := sqsqueue.DeliveryEvent{
		EventID:           util.NewEventID(),
		CallbackMessageID: tracking,
		MessageStatus:     "delivered",
		EventType:         "status",
		EventDirection:    "outbound",
	}
	if err := proc.Process(ctx, ev); err != nil {
		t.Fatalf("process event: %v", err)
	}

	// Redelivery of the same event id must be treated as done.
	if err := proc.Process(ctx, ev); err != nil {
		t.Fatalf("duplicate event: %v", err)
	}

	events := &service.EventService{Store: st}
	got, err := events.GetByTrackingID(ctx, account, tracking)
	if err != nil {
		t.Fatalf("get events: %v", err)
	}
	if got.Total != 1 {
		t.Fatalf("expected 1 event, got %d", got.Total)
	}
	view := got.Events[0]
	if view.TemplateName != "Welcome" {
		t.Fatalf("expected joined template name, got %s", view.TemplateName)
	}
	if view.MessageStatus != "delivered" || view.AccountID != account.ID {
		t.Fatalf("unexpected event view: %+v", view)
	}
}

func TestEventQueryScopedToAccount(t *testing.T) {
	ctx := context.Background()
	db, cleanup := setupTestDB(t)
	defer cleanup()

	st := pg.New(db)
	acme := seedAccount(t, db, "Acme")
	other := seedAccount(t, db, "Other")
	seedTemplate(t, db, "tmpl_welcome", "Welcome")

	dispatch := &service.DispatchService{Store: st, TrackingID: util.NewTrackingID}
	resp, err := dispatch.Send(ctx, domain.SendRequest{
		AccountID:   acme.ID,
		Channel:     "RCS",
		ChannelType: "Single",
		TemplateID:  "tmpl_welcome",
		Messages:    []domain.RecipientMessage{{Number: "5511999990000"}},
	}, acme, time.Now())
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	tracking := resp.Messages.Successes[0].CallbackMessageID

	proc := &feed.Processor{Store: st}
	if err := proc.Process(ctx, sqsqueue.DeliveryEvent{
		EventID:           util.NewEventID(),
		CallbackMessageID: tracking,
		MessageStatus:     "delivered",
		EventType:         "status",
		EventDirection:    "outbound",
	}); err != nil {
		t.Fatalf("process event: %v", err)
	}

	events := &service.EventService{Store: st}
	if _, err := events.GetByTrackingID(ctx, other, tracking); err == nil {
		t.Fatal("expected not found for foreign account")
	}

	list, err := events.List(ctx, other, nil, 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list.Total != 0 {
		t.Fatalf("expected 0 events for foreign account, got %d", list.Total)
	}
}

func TestRegisterAndLookupUser(t *testing.T) {
	ctx := context.Background()
	db, cleanup := setupTestDB(t)
	defer cleanup()

	st := pg.New(db)
	account := seedAccount(t, db, "Acme")

	user, err := st.InsertUser(ctx, store.UserInsert{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "x",
		AccountID:    account.ID,
		Now:          time.Now(),
	})
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	if user.ID == 0 || !user.IsActive {
		t.Fatalf("unexpected user: %+v", user)
	}

	got, found, err := st.GetUserByUsername(ctx, "alice")
	if err != nil || !found {
		t.Fatalf("lookup: found=%v err=%v", found, err)
	}
	if got.AccountID != account.ID {
		t.Fatalf("expected account %d, got %d", account.ID, got.AccountID)
	}
}

func seedAccount(t *testing.T, db *pgxpool.Pool, name string) store.Account {
	t.Helper()
	apiKey := "key_" + util.NewEventID()
	var account store.Account
	err := db.QueryRow(context.Background(), `
		INSERT INTO accounts (name, api_key) VALUES ($1, $2)
		RETURNING id, name, api_key
	`, name, apiKey).Scan(&account.ID, &account.Name, &account.APIKey)
	if err != nil {
		t.Fatalf("insert account: %v", err)
	}
	return account
}

func seedTemplate(t *testing.T, db *pgxpool.Pool, externalID, name string) {
	t.Helper()
	_, err := db.Exec(context.Background(), `
		INSERT INTO templates (template_id, name, channel, channel_type, content)
		VALUES ($1, $2, 'RCS', 'Single', 'Hello {{name}}')
	`, externalID, name)
	if err != nil {
		t.Fatalf("insert template: %v", err)
	}
}

func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		dsn = os.Getenv("DB_DSN")
	}
	if dsn == "" {
		t.Skip("TEST_DB_DSN or DB_DSN not set")
	}

	schema := fmt.Sprintf("test_%d", time.Now().UnixNano())
	admin, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect admin db: %v", err)
	}

	_, err = admin.Exec(context.Background(), "CREATE SCHEMA "+schema)
	if err != nil {
		admin.Close()
		t.Fatalf("create schema: %v", err)
	}

	dbDSN, err := withSearchPath(dsn, schema)
	if err != nil {
		admin.Close()
		t.Fatalf("build dsn: %v", err)
	}

	db, err := pgxpool.New(context.Background(), dbDSN)
	if err != nil {
		admin.Close()
		t.Fatalf("connect test db: %v", err)
	}

	sqlPath := filepath.Join("..", "..", "cmd", "seed", "schema.sql")
	sqlBytes, err := os.ReadFile(sqlPath)
	if err != nil {
		db.Close()
		admin.Close()
		t.Fatalf("read schema: %v", err)
	}

	if _, err := db.Exec(context.Background(), string(sqlBytes)); err != nil {
		db.Close()
		admin.Close()
		t.Fatalf("apply schema: %v", err)
	}

	cleanup := func() {
		db.Close()
		_, _ = admin.Exec(context.Background(), "DROP SCHEMA "+schema+" CASCADE")
		admin.Close()
	}

	return db, cleanup
}

func withSearchPath(dsn, schema string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", err
	}
	q := u.Query()
	opts := q.Get("options")
	if opts != "" {
		opts = opts + " -c search_path=" + schema
	} else {
		opts = "-c search_path=" + schema
	}
	q.Set("options", opts)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
