package core

import (
	"PayIVR/entity"
	"PayIVR/internal/lib/sl"
	"PayIVR/internal/twiml"
	"context"
	"log/slog"
	"sync"
)

type CallEngine interface {
	Handle(ctx context.Context, req *entity.StepRequest) *twiml.Response
}

type StateStore interface {
	Ping(ctx context.Context) error
	GetItem(ctx context.Context, mapName, key string) (*entity.SyncItem, error)
}

type Repository interface {
	CheckApiKey(ctx context.Context, key string) (string, error)
	GetPaymentRecord(ctx context.Context, callSid string) (*entity.PaymentRecord, error)
}

type Core struct {
	engine    CallEngine
	store     StateStore
	repo      Repository
	resultMap string
	authKey   string
	keys      map[string]string
	mu        sync.RWMutex
	log       *slog.Logger
}

func New(log *slog.Logger) *Core {
	return &Core{
		log:  log.With(sl.Module("core")),
		keys: make(map[string]string),
	}
}

func (c *Core) SetCallEngine(engine CallEngine) {
	c.engine = engine
}

// SetStore sets the call-state store and the map holding payment results.
func (c *Core) SetStore(store StateStore, resultMap string) {
	c.store = store
	c.resultMap = resultMap
}

func (c *Core) SetRepository(repo Repository) {
	c.repo = repo
}

func (c *Core) SetAuthKey(key string) {
	c.authKey = key
}
