package main

import (
	_ "embed"

	"github.com/taldoflemis/pizzeria/pacchetto"
)

//go:embed base.yaml
var baseConfig []byte

type Settings struct {
	App           pacchetto.AppSettings           `mapstructure:"app" validate:"required"`
	HTTP          pacchetto.HTTPSettings          `mapstructure:"http" validate:"required"`
	Nats          pacchetto.NatsSettings          `mapstructure:"nats" validate:"required"`
	MaestroClient pacchetto.GRPCClientSettings    `mapstructure:"maestro-client" validate:"required"`
	OpenTelemetry pacchetto.OpenTelemetrySettings `mapstructure:"opentelemetry" validate:"required"`
	// UseNats switches live orders from in-process channels to NATS.
	UseNats bool `mapstructure:"use-nats"`
}

func LoadConfig() (*Settings, error) {
	return pacchetto.LoadConfig[Settings]("PADDOCKGATEWAY", baseConfig)
}
