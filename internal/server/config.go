package server

import (
	"github.com/raysh454/seoaudit/internal/app"
	"github.com/raysh454/seoaudit/internal/logging"
)

type Config struct {
	// ListenAddr is the HTTP listen address of the console server.
	ListenAddr string

	// AppConfig builds the orchestrator when Orchestrator is nil.
	AppConfig *app.Config

	// Orchestrator, when set, is used as is and not shut down by Close.
	Orchestrator *app.Orchestrator

	Logger logging.Logger
}
