package directmessage

import (
	"log/slog"

	httpadapter "agora/contexts/community-experience/direct-message-service/adapters/http"
	"agora/contexts/community-experience/direct-message-service/adapters/memory"
	"agora/contexts/community-experience/direct-message-service/application"
	"agora/contexts/community-experience/direct-message-service/domain/entities"
	"agora/contexts/community-experience/direct-message-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Repo   ports.Repository
	Outbox ports.OutboxWriter
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:   deps.Repo,
		Outbox: deps.Outbox,
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

func NewInMemoryModule(seed []entities.Conversation, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Repo:   store,
		Outbox: store,
		Clock:  store,
		IDGen:  store,
		Logger: logger,
	})
	module.Store = store
	return module
}
