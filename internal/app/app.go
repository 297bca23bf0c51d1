package app

import (
	"context"
	"errors"
	"net/http"

	"agile-board-go/internal/auth"
	"agile-board-go/internal/config"
	"agile-board-go/internal/db"
	"agile-board-go/internal/domain/authz"
	"agile-board-go/internal/domain/membership"
	projectdomain "agile-board-go/internal/domain/project"
	releasedomain "agile-board-go/internal/domain/release"
	storydomain "agile-board-go/internal/domain/story"
	userdomain "agile-board-go/internal/domain/user"
	"agile-board-go/internal/jira"
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

type App struct {
	cfg        config.Config
	httpServer *http.Server
	db         *gorm.DB
}

func New(log logger.Logger) (*App, error) {
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}

	dbConn, err := db.NewPostgres(cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(dbConn); err != nil {
		return nil, err
	}

	users := userrepo.NewPostgres(dbConn)
	projects := projectrepo.NewPostgres(dbConn)
	stories := storyrepo.NewPostgres(dbConn)
	releases := releaserepo.NewPostgres(dbConn)
	memberships := membershiprepo.NewPostgres(dbConn)

	memberStore := membership.NewStore(memberships)
	engine := authz.NewEngine(&userDirectory{users: users}, memberStore)

	var exporter storydomain.TrackerExporter
	jiraCfg := jira.Config{
		BaseURL:          cfg.Jira.BaseURL,
		UserEmail:        cfg.Jira.UserEmail,
		APIToken:         cfg.Jira.APIToken,
		ProjectKey:       cfg.Jira.ProjectKey,
		IssueTypeName:    cfg.Jira.IssueTypeName,
		StoryPointsField: cfg.Jira.StoryPointsField,
		Timeout:          cfg.Jira.Timeout,
	}
	if jiraCfg.Enabled() {
		exporter = jira.NewClient(jiraCfg)
		log.Info("app: jira export enabled", "base_url", jiraCfg.BaseURL)
	}

	userService := userdomain.NewService(users, engine)
	projectService := projectdomain.NewService(projects, memberStore, engine)
	storyService := storydomain.NewService(stories, projects, users, engine, exporter)
	releaseService := releasedomain.NewService(releases, projects, stories, users, engine)

	tokens, err := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, err
	}

	handlers := handler.New(userService, projectService, storyService, releaseService, tokens, log)
	jwtAuth := authmw.NewJWTAuth(tokens, users, log)
	router := httpserver.NewRouter(cfg, handlers, jwtAuth)
	srv := httpserver.New(cfg, router)

	return &App{
		cfg:        cfg,
		httpServer: srv,
		db:         dbConn,
	}, nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// userDirectory adapts the user repository to the authorization engine.
// An unknown username resolves to a nil account rather than an error.
type userDirectory struct {
	users userdomain.Repository
}

func (d *userDirectory) FindAccount(ctx context.Context, username string) (*authz.Account, error) {
	u, err := d.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, userdomain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &authz.Account{
		ID:          u.ID,
		Active:      u.Active,
		SystemRoles: u.RoleList(),
	}, nil
}
