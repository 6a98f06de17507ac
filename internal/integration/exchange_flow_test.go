package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"competence-exchange/internal/config"
	"competence-exchange/internal/database"
	"competence-exchange/internal/database/migration"
	dbpostgres "competence-exchange/internal/database/postgres"
	"competence-exchange/internal/delivery/http/middleware"
	"competence-exchange/internal/delivery/http/routes"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type semanticResponse struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type authData struct {
	User struct {
		ID    uuid.UUID `json:"id"`
		Email string    `json:"email"`
	} `json:"user"`
	AccessToken string `json:"access_token"`
}

type createdSlotData struct {
	SlotID     uuid.UUID  `json:"slot_id"`
	ActivityID *uuid.UUID `json:"activity_id"`
}

type activityData struct {
	ID          uuid.UUID  `json:"id"`
	Description string     `json:"description"`
	VolunteerID *uuid.UUID `json:"volunteer_id"`
	Claimable   bool       `json:"claimable"`
}

type contactData struct {
	ActivityID  uuid.UUID `json:"activity_id"`
	Matched     bool      `json:"matched"`
	Counterpart *struct {
		ID    uuid.UUID `json:"id"`
		Email string    `json:"email"`
		Phone *string   `json:"phone"`
	} `json:"counterpart"`
}

type slotData struct {
	ID             uuid.UUID `json:"id"`
	CompetenceName string    `json:"competence_name"`
	Purpose        string    `json:"purpose"`
	IsAvailable    bool      `json:"is_available"`
}

type member struct {
	id    uuid.UUID
	email string
	token string
}

// TestIntegration_RequestClaimContactFlow walks the whole exchange: a
// requester publishes a dated request slot, a qualified volunteer finds
// and claims it, a second qualified volunteer loses the race, and the
// contact gate reveals identities to the matched pair only.
func TestIntegration_RequestClaimContactFlow(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	db := connectTestDB(t, ctx)
	defer func() { _ = db.Close() }()

	runMigrations(t, ctx, db)

	plumbingID := ensureCompetence(t, ctx, db, "Home & Repair", "Plumbing")
	gardeningID := ensureCompetence(t, ctx, db, "Home & Repair", "Gardening")

	app := newTestApp(t, db)

	suffix := uuid.New().String()[:8]
	alice := registerMember(t, app, "alice-"+suffix+"@example.com", "Alice", "+44 20 7946 0000")
	bob := registerMember(t, app, "bob-"+suffix+"@example.com", "Bob", "")
	carol := registerMember(t, app, "carol-"+suffix+"@example.com", "Carol", "")
	dave := registerMember(t, app, "dave-"+suffix+"@example.com", "Dave", "")
	defer cleanupMembers(t, ctx, db, alice, bob, carol, dave)

	setCompetences(t, app, bob, plumbingID)
	setCompetences(t, app, carol, gardeningID)
	setCompetences(t, app, dave, plumbingID)

	date := time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02")

	// Alice asks for plumbing help.
	created := createSlot(t, app, alice, date, plumbingID, "request", "dripping tap in the kitchen")
	if created.ActivityID == nil {
		t.Fatalf("request slot must create a paired activity")
	}
	activityID := *created.ActivityID

	// Bob is qualified and sees the open request; Carol is not and must not.
	if act, ok := findActivity(t, app, bob, activityID); !ok || !act.Claimable {
		t.Fatalf("expected Bob to see the request as claimable")
	}
	if _, ok := findActivity(t, app, carol, activityID); ok {
		t.Fatalf("Carol lacks the competence and must not see the request")
	}

	// Alice must not volunteer for her own request.
	if status := claimActivity(t, app, alice, activityID); status != fiber.StatusBadRequest {
		t.Fatalf("self-claim: expected 400, got %d", status)
	}

	// Bob claims it.
	if status := claimActivity(t, app, bob, activityID); status != fiber.StatusOK {
		t.Fatalf("claim: expected 200, got %d", status)
	}

	// Dave is equally qualified but too late.
	if status := claimActivity(t, app, dave, activityID); status != fiber.StatusConflict {
		t.Fatalf("losing claim: expected 409, got %d", status)
	}
	if _, ok := findActivity(t, app, dave, activityID); ok {
		t.Fatalf("claimed request must leave Dave's matching list")
	}

	// Bob keeps seeing it, now unclaimable, for status and contact.
	act, ok := findActivity(t, app, bob, activityID)
	if !ok {
		t.Fatalf("expected Bob to keep seeing the request he volunteered for")
	}
	if act.Claimable {
		t.Fatalf("claimed request must not stay claimable")
	}
	if act.VolunteerID == nil || *act.VolunteerID != bob.id {
		t.Fatalf("expected Bob to be recorded as volunteer")
	}

	// The matched pair see each other; Carol is shut out.
	forAlice, status := contactInfo(t, app, alice, activityID)
	if status != fiber.StatusOK || !forAlice.Matched || forAlice.Counterpart == nil {
		t.Fatalf("requester contact: expected matched counterpart, got status=%d %+v", status, forAlice)
	}
	if forAlice.Counterpart.Email != bob.email {
		t.Fatalf("requester must see the volunteer, got %s", forAlice.Counterpart.Email)
	}

	forBob, status := contactInfo(t, app, bob, activityID)
	if status != fiber.StatusOK || forBob.Counterpart == nil {
		t.Fatalf("volunteer contact: expected counterpart, got status=%d", status)
	}
	if forBob.Counterpart.Email != alice.email {
		t.Fatalf("volunteer must see the requester, got %s", forBob.Counterpart.Email)
	}
	if forBob.Counterpart.Phone == nil {
		t.Fatalf("expected the requester's phone to be disclosed to the volunteer")
	}

	if _, status := contactInfo(t, app, carol, activityID); status != fiber.StatusForbidden {
		t.Fatalf("third-party contact: expected 403, got %d", status)
	}

	// The anonymous feed lists aid offers only, so Alice's request stays off it.
	aid := createSlot(t, app, bob, date, plumbingID, "aid", "")
	if aid.ActivityID != nil {
		t.Fatalf("aid slot must not create an activity")
	}
	feed := publicFeed(t, app)
	var sawAid, sawRequest bool
	for _, s := range feed {
		if s.ID == aid.SlotID {
			sawAid = true
		}
		if s.ID == created.SlotID {
			sawRequest = true
		}
	}
	if !sawAid {
		t.Fatalf("expected Bob's aid slot on the public feed")
	}
	if sawRequest {
		t.Fatalf("request slots must never appear on the public feed")
	}
}

func connectTestDB(t *testing.T, ctx context.Context) database.DB {
	t.Helper()

	host := envOr("COMPEX_TEST_DB_HOST", os.Getenv("DB_HOST"))
	port := envOr("COMPEX_TEST_DB_PORT", os.Getenv("DB_PORT"))
	name := envOr("COMPEX_TEST_DB_NAME", os.Getenv("DB_NAME"))
	user := envOr("COMPEX_TEST_DB_USER", os.Getenv("DB_USER"))
	pass := envOr("COMPEX_TEST_DB_PASSWORD", os.Getenv("DB_PASSWORD"))
	ssl := envOr("COMPEX_TEST_DB_SSL_MODE", os.Getenv("DB_SSL_MODE"))

	if host == "" || port == "" || name == "" || user == "" {
		t.Skip("missing test DB env vars: set COMPEX_TEST_DB_HOST/PORT/NAME/USER/PASSWORD (or DB_HOST/DB_PORT/DB_NAME/DB_USER/DB_PASSWORD)")
	}
	if ssl == "" {
		ssl = "disable"
	}

	db, err := dbpostgres.Connect(ctx, config.DatabaseConfig{
		DBHost:     host,
		DBPort:     port,
		DBName:     name,
		DBUser:     user,
		DBPassword: pass,
		DBSSLMode:  ssl,
	})
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return db
}

func runMigrations(t *testing.T, ctx context.Context, db database.DB) {
	t.Helper()

	r := migration.Runner{Dir: resolveMigrationsDir(t)}
	if err := r.Run(ctx, db.SQLDB()); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
}

func resolveMigrationsDir(t *testing.T) string {
	t.Helper()

	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("resolve migrations dir: runtime.Caller failed")
	}

	root := filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
	dir := filepath.Join(root, "migrations")

	if st, err := os.Stat(dir); err != nil || !st.IsDir() {
		t.Fatalf("resolve migrations dir: not found or not a dir: %s", dir)
	}
	return dir
}

func newTestApp(t *testing.T, db database.DB) *fiber.App {
	t.Helper()

	cfg := config.Config{
		App: config.AppConfig{AppName: "competence-exchange", Environment: "test", HTTPPort: "0"},
		JWT: config.JWTConfig{
			AccessSecret:     envOr("COMPEX_TEST_JWT_ACCESS_SECRET", "test-access-secret"),
			RefreshSecret:    envOr("COMPEX_TEST_JWT_REFRESH_SECRET", "test-refresh-secret"),
			AccessExpiresIn:  15 * time.Minute,
			RefreshExpiresIn: 24 * time.Hour,
		},
	}

	app := fiber.New(fiber.Config{})
	app.Use(middleware.NewErrorMiddleware().Middleware())

	routes.NewRegistry(cfg, db, nil).Register(app)
	return app
}

func ensureCompetence(t *testing.T, ctx context.Context, db database.DB, category, name string) uuid.UUID {
	t.Helper()

	_, err := db.Exec(ctx,
		`INSERT INTO categories (id, name) VALUES (gen_random_uuid(), $1) ON CONFLICT (name) DO NOTHING`,
		category)
	if err != nil {
		t.Fatalf("ensure category %s: %v", category, err)
	}

	_, err = db.Exec(ctx,
		`INSERT INTO competences (id, name, category_id)
		 VALUES (gen_random_uuid(), $1, (SELECT id FROM categories WHERE name = $2))
		 ON CONFLICT (name) DO NOTHING`,
		name, category)
	if err != nil {
		t.Fatalf("ensure competence %s: %v", name, err)
	}

	var id uuid.UUID
	if err := db.QueryRow(ctx, `SELECT id FROM competences WHERE name = $1`, name).Scan(&id); err != nil {
		t.Fatalf("lookup competence %s: %v", name, err)
	}
	return id
}

func cleanupMembers(t *testing.T, ctx context.Context, db database.DB, members ...member) {
	t.Helper()

	for _, m := range members {
		_, _ = db.Exec(ctx, `DELETE FROM activities WHERE requester_id = $1 OR volunteer_id = $1`, m.id)
		_, _ = db.Exec(ctx, `DELETE FROM slots WHERE user_id = $1`, m.id)
		_, _ = db.Exec(ctx, `DELETE FROM users WHERE id = $1`, m.id)
	}
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (int, semanticResponse) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		t.Fatalf("%s %s: decode: %v", method, path, err)
	}
	return resp.StatusCode, sr
}

func registerMember(t *testing.T, app *fiber.App, email, displayName, phone string) member {
	t.Helper()

	status, sr := doJSON(t, app, "POST", "/api/v1/auth/register", "", map[string]string{
		"email":        email,
		"password":     "correct-horse",
		"display_name": displayName,
		"phone":        phone,
	})
	if status != fiber.StatusOK {
		t.Fatalf("register %s: expected 200, got %d (%s)", email, status, sr.Message)
	}

	var data authData
	if err := json.Unmarshal(sr.Data, &data); err != nil {
		t.Fatalf("register %s: data unmarshal: %v", email, err)
	}
	if data.AccessToken == "" {
		t.Fatalf("register %s: missing access_token", email)
	}
	return member{id: data.User.ID, email: data.User.Email, token: data.AccessToken}
}

func setCompetences(t *testing.T, app *fiber.App, m member, ids ...uuid.UUID) {
	t.Helper()

	status, sr := doJSON(t, app, "PUT", "/api/v1/users/me/competences/", m.token, map[string]any{
		"competence_ids": ids,
	})
	if status != fiber.StatusOK {
		t.Fatalf("set competences for %s: expected 200, got %d (%s)", m.email, status, sr.Message)
	}
}

func createSlot(t *testing.T, app *fiber.App, m member, date string, competenceID uuid.UUID, purpose, description string) createdSlotData {
	t.Helper()

	status, sr := doJSON(t, app, "POST", "/api/v1/slots/", m.token, map[string]any{
		"date":          date,
		"competence_id": competenceID,
		"purpose":       purpose,
		"description":   description,
	})
	if status != fiber.StatusCreated {
		t.Fatalf("create slot for %s: expected 201, got %d (%s)", m.email, status, sr.Message)
	}

	var data createdSlotData
	if err := json.Unmarshal(sr.Data, &data); err != nil {
		t.Fatalf("create slot: data unmarshal: %v", err)
	}
	return data
}

func findActivity(t *testing.T, app *fiber.App, m member, activityID uuid.UUID) (activityData, bool) {
	t.Helper()

	status, sr := doJSON(t, app, "GET", "/api/v1/activities/matching", m.token, nil)
	if status != fiber.StatusOK {
		t.Fatalf("matching for %s: expected 200, got %d (%s)", m.email, status, sr.Message)
	}

	var items []activityData
	if err := json.Unmarshal(sr.Data, &items); err != nil {
		t.Fatalf("matching: data unmarshal: %v", err)
	}
	for _, it := range items {
		if it.ID == activityID {
			return it, true
		}
	}
	return activityData{}, false
}

func claimActivity(t *testing.T, app *fiber.App, m member, activityID uuid.UUID) int {
	t.Helper()

	status, _ := doJSON(t, app, "POST", fmt.Sprintf("/api/v1/activities/%s/volunteer", activityID), m.token, nil)
	return status
}

func contactInfo(t *testing.T, app *fiber.App, m member, activityID uuid.UUID) (contactData, int) {
	t.Helper()

	status, sr := doJSON(t, app, "GET", fmt.Sprintf("/api/v1/activities/%s/contact", activityID), m.token, nil)
	if status != fiber.StatusOK {
		return contactData{}, status
	}

	var data contactData
	if err := json.Unmarshal(sr.Data, &data); err != nil {
		t.Fatalf("contact: data unmarshal: %v", err)
	}
	return data, status
}

func publicFeed(t *testing.T, app *fiber.App) []slotData {
	t.Helper()

	status, sr := doJSON(t, app, "GET", "/api/v1/slots/available", "", nil)
	if status != fiber.StatusOK {
		t.Fatalf("public feed: expected 200, got %d (%s)", status, sr.Message)
	}

	var items []slotData
	if err := json.Unmarshal(sr.Data, &items); err != nil {
		t.Fatalf("public feed: data unmarshal: %v", err)
	}
	return items
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
