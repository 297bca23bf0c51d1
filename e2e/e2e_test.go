//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"agile-board-go/internal/auth"
	"agile-board-go/internal/config"
	"agile-board-go/internal/db"
	"agile-board-go/internal/domain/authz"
	"agile-board-go/internal/domain/membership"
	projectdomain "agile-board-go/internal/domain/project"
	releasedomain "agile-board-go/internal/domain/release"
	storydomain "agile-board-go/internal/domain/story"
	userdomain "agile-board-go/internal/domain/user"
	membershiprepo "agile-board-go/internal/repository/membership"
	projectrepo "agile-board-go/internal/repository/project"
	releaserepo "agile-board-go/internal/repository/release"
	storyrepo "agile-board-go/internal/repository/story"
	userrepo "agile-board-go/internal/repository/user"
	"agile-board-go/internal/transport/httpserver"
	"agile-board-go/internal/transport/httpserver/handler"
	authmw "agile-board-go/internal/transport/httpserver/middleware"
	"agile-board-go/pkg/logger"
	"gorm.io/gorm"
)

type testEnv struct {
	server *httptest.Server
	db     *gorm.DB
}

func setupE2E(t *testing.T) *testEnv {
	t.Helper()

	dsn := os.Getenv("E2E_DB_DSN")
	if dsn == "" {
		t.Skip("E2E_DB_DSN not set; skipping e2e tests")
	}

	cfg := config.Config{
		DB:   config.DBConfig{DSN: dsn},
		CORS: config.CORSConfig{AllowedOrigins: "*"},
	}

	dbConn, err := db.NewPostgres(cfg.DB)
	if err != nil {
		t.Fatalf("db connect: %v", err)
	}
	if err := db.Migrate(dbConn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := cleanDB(dbConn); err != nil {
		t.Fatalf("clean db: %v", err)
	}

	log := logger.New(io.Discard, slog.LevelError, "text")

	users := userrepo.NewPostgres(dbConn)
	projects := projectrepo.NewPostgres(dbConn)
	stories := storyrepo.NewPostgres(dbConn)
	releases := releaserepo.NewPostgres(dbConn)
	memberships := membershiprepo.NewPostgres(dbConn)

	memberStore := membership.NewStore(memberships)
	engine := authz.NewEngine(&directory{users: users}, memberStore)

	userService := userdomain.NewService(users, engine)
	projectService := projectdomain.NewService(projects, memberStore, engine)
	storyService := storydomain.NewService(stories, projects, users, engine, nil)
	releaseService := releasedomain.NewService(releases, projects, stories, users, engine)

	tokens, err := auth.NewManager("e2e-secret", time.Hour)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}

	handlers := handler.New(userService, projectService, storyService, releaseService, tokens, log)
	jwtAuth := authmw.NewJWTAuth(tokens, users, log)
	router := httpserver.NewRouter(cfg, handlers, jwtAuth)
	server := httptest.NewServer(router)

	return &testEnv{server: server, db: dbConn}
}

type directory struct {
	users userdomain.Repository
}

func (d *directory) FindAccount(ctx context.Context, username string) (*authz.Account, error) {
	u, err := d.users.FindByUsername(ctx, username)
	if err != nil {
		if err == userdomain.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &authz.Account{ID: u.ID, Active: u.Active, SystemRoles: u.RoleList()}, nil
}

func (e *testEnv) Close() {
	e.server.Close()
	sqlDB, err := e.db.DB()
	if err == nil {
		_ = sqlDB.Close()
	}
}

func cleanDB(dbConn *gorm.DB) error {
	return dbConn.WithContext(context.Background()).Exec(
		"TRUNCATE TABLE user_stories, release_plans, project_member_roles, projects, user_system_roles, users RESTART IDENTITY CASCADE",
	).Error
}

func requestJSON(t *testing.T, client *http.Client, method, url, token string, payload interface{}) (*http.Response, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}

	return resp, respBody
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type userResponse struct {
	ID       uint     `json:"id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

type projectResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Key  string `json:"key"`
	Code string `json:"code"`
}

type storyResponse struct {
	ID            uint   `json:"id"`
	Key           string `json:"key"`
	Status        string `json:"status"`
	ReleasePlanID *uint  `json:"release_plan_id"`
}

type releaseResponse struct {
	ID  uint   `json:"id"`
	Key string `json:"key"`
}

func register(t *testing.T, client *http.Client, baseURL, username, roleName string) authResponse {
	t.Helper()

	resp, body := requestJSON(t, client, http.MethodPost, baseURL+"/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret-password",
		"role":     roleName,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d: %s", username, resp.StatusCode, string(body))
	}
	var out authResponse
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode register: %v", err)
	}
	if out.Token == "" {
		t.Fatalf("expected token for %s", username)
	}
	return out
}

func TestE2EProjectLifecycle(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	client := &http.Client{Timeout: 5 * time.Second}
	base := env.server.URL

	owner := register(t, client, base, "alice", "PRODUCT_OWNER")
	dev := register(t, client, base, "bob", "DEVELOPER")
	outsider := register(t, client, base, "mallory", "DEVELOPER")

	resp, body := requestJSON(t, client, http.MethodPost, base+"/api/projects", owner.Token, map[string]interface{}{
		"name": "Phoenix Board",
		"members": []map[string]interface{}{
			{"user_id": owner.User.ID, "role": "PRODUCT_OWNER"},
			{"user_id": dev.User.ID, "role": "DEVELOPER"},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create project: expected 201, got %d: %s", resp.StatusCode, string(body))
	}
	var project projectResponse
	if err := json.Unmarshal(body, &project); err != nil {
		t.Fatalf("decode project: %v", err)
	}
	wantKey := fmt.Sprintf("%s-%03d", project.Code, project.ID)
	if project.Key != wantKey {
		t.Fatalf("expected project key %s, got %s", wantKey, project.Key)
	}

	// Outsiders hold no membership and must be denied.
	resp, body = requestJSON(t, client, http.MethodGet, fmt.Sprintf("%s/api/projects/%d", base, project.ID), outsider.Token, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("outsider get project: expected 403, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, client, http.MethodPost, base+"/api/stories", dev.Token, map[string]interface{}{
		"project_id":  project.ID,
		"title":       "Board renders backlog",
		"description": "As a user I want to see the backlog",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create story: expected 201, got %d: %s", resp.StatusCode, string(body))
	}
	var story storyResponse
	if err := json.Unmarshal(body, &story); err != nil {
		t.Fatalf("decode story: %v", err)
	}
	wantStoryKey := fmt.Sprintf("%s-%03d", project.Key, story.ID)
	if story.Key != wantStoryKey {
		t.Fatalf("expected story key %s, got %s", wantStoryKey, story.Key)
	}
	if story.Status != "NEW" {
		t.Fatalf("expected NEW status, got %s", story.Status)
	}

	// Release plan creation is owner only.
	resp, body = requestJSON(t, client, http.MethodPost, base+"/api/releases", dev.Token, map[string]interface{}{
		"project_id":  project.ID,
		"name":        "Release 1",
		"start_date":  "2026-09-01",
		"target_date": "2026-10-01",
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("dev create release: expected 403, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, client, http.MethodPost, base+"/api/releases", owner.Token, map[string]interface{}{
		"project_id":  project.ID,
		"name":        "Release 1",
		"start_date":  "2026-09-01",
		"target_date": "2026-10-01",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create release: expected 201, got %d: %s", resp.StatusCode, string(body))
	}
	var release releaseResponse
	if err := json.Unmarshal(body, &release); err != nil {
		t.Fatalf("decode release: %v", err)
	}
	wantReleaseKey := fmt.Sprintf("%s-R%03d", project.Key, release.ID)
	if release.Key != wantReleaseKey {
		t.Fatalf("expected release key %s, got %s", wantReleaseKey, release.Key)
	}

	// Dates out of order are rejected.
	resp, body = requestJSON(t, client, http.MethodPost, base+"/api/releases", owner.Token, map[string]interface{}{
		"project_id":  project.ID,
		"name":        "Broken",
		"start_date":  "2026-10-01",
		"target_date": "2026-09-01",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad dates: expected 400, got %d: %s", resp.StatusCode, string(body))
	}

	// Assign the story by the release's human key.
	resp, body = requestJSON(t, client, http.MethodPost, fmt.Sprintf("%s/api/releases/%s/stories", base, release.Key), owner.Token, map[string]interface{}{
		"story_id": story.ID,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("assign story: expected 200, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, client, http.MethodGet, fmt.Sprintf("%s/api/stories/%d", base, story.ID), dev.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get story: expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, &story); err != nil {
		t.Fatalf("decode story: %v", err)
	}
	if story.ReleasePlanID == nil || *story.ReleasePlanID != release.ID {
		t.Fatalf("expected story linked to release %d", release.ID)
	}

	// Deleting the project cascades; only the product owner may do it.
	resp, body = requestJSON(t, client, http.MethodDelete, fmt.Sprintf("%s/api/projects/%d", base, project.ID), dev.Token, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("dev delete project: expected 403, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, client, http.MethodDelete, fmt.Sprintf("%s/api/projects/%d", base, project.ID), owner.Token, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete project: expected 204, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, client, http.MethodGet, fmt.Sprintf("%s/api/stories/%d", base, story.ID), dev.Token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get deleted story: expected 404, got %d: %s", resp.StatusCode, string(body))
	}

	var errResp errorEnvelope
	if err := json.Unmarshal(body, &errResp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if errResp.Error.Code != "story_not_found" {
		t.Fatalf("expected story_not_found, got %q", errResp.Error.Code)
	}
}

func TestE2ERegistrationRules(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	client := &http.Client{Timeout: 5 * time.Second}
	base := env.server.URL

	// SYSTEM_ADMIN cannot be self-registered.
	resp, body := requestJSON(t, client, http.MethodPost, base+"/api/auth/register", "", map[string]string{
		"username": "eve",
		"email":    "eve@example.com",
		"password": "secret-password",
		"role":     "SYSTEM_ADMIN",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("admin self-register: expected 400, got %d: %s", resp.StatusCode, string(body))
	}

	register(t, client, base, "carol", "SCRUM_MASTER")

	// Duplicate usernames conflict.
	resp, body = requestJSON(t, client, http.MethodPost, base+"/api/auth/register", "", map[string]string{
		"username": "carol",
		"email":    "carol2@example.com",
		"password": "secret-password",
		"role":     "DEVELOPER",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate username: expected 409, got %d: %s", resp.StatusCode, string(body))
	}

	// Login works and an invalid password is rejected.
	resp, body = requestJSON(t, client, http.MethodPost, base+"/api/auth/login", "", map[string]string{
		"username": "carol",
		"password": "secret-password",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, client, http.MethodPost, base+"/api/auth/login", "", map[string]string{
		"username": "carol",
		"password": "wrong-password",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad login: expected 401, got %d: %s", resp.StatusCode, string(body))
	}
}
