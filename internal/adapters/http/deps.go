package http

import (
	"github.com/nats-io/nats.go"

	"github.com/SrinivasYANAGANDALA/smart-turism/internal/adapters/postgres"
	"github.com/SrinivasYANAGANDALA/smart-turism/internal/adapters/valkey"
	"github.com/SrinivasYANAGANDALA/smart-turism/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Safety     *usecases.SafetyService
	Responders *usecases.ResponderService
	NATS       *nats.Conn
	DB         *postgres.DB
	Cache      *valkey.Cache
}
