package feedservice

import (
	"log/slog"

	httpadapter "agora/contexts/community-experience/feed-service/adapters/http"
	"agora/contexts/community-experience/feed-service/adapters/memory"
	"agora/contexts/community-experience/feed-service/application"
	"agora/contexts/community-experience/feed-service/domain/entities"
	"agora/contexts/community-experience/feed-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Repo   ports.Repository
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:   deps.Repo,
		Clock:  deps.Clock,
		IDGen:  deps.IDGen,
		Logger: deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
	}
}

func NewInMemoryModule(seedNotes []entities.Note, logger *slog.Logger) Module {
	store := memory.NewStore(seedNotes)
	module := NewModule(Dependencies{
		Repo:   store,
		Clock:  store,
		IDGen:  store,
		Logger: logger,
	})
	module.Store = store
	return module
}
