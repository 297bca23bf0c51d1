package handler

import (
	"agile-board-go/internal/auth"
	projectdomain "agile-board-go/internal/domain/project"
	releasedomain "agile-board-go/internal/domain/release"
	storydomain "agile-board-go/internal/domain/story"
	userdomain "agile-board-go/internal/domain/user"
	"agile-board-go/pkg/logger"
)

type Handlers struct {
	Users    *userdomain.Service
	Projects *projectdomain.Service
	Stories  *storydomain.Service
	Releases *releasedomain.Service
	tokens   *auth.Manager
	log      logger.Logger
}

func New(users *userdomain.Service, projects *projectdomain.Service, stories *storydomain.Service, releases *releasedomain.Service, tokens *auth.Manager, log logger.Logger) *Handlers {
	return &Handlers{
		Users:    users,
		Projects: projects,
		Stories:  stories,
		Releases: releases,
		tokens:   tokens,
		log:      log,
	}
}
