package main

import (
	_ "embed"
	"time"

	"github.com/taldoflemis/pizzeria/pacchetto"
)

//go:embed base.yaml
var baseConfig []byte

type MaestroSettings struct {
	BakingBaseInMilliseconds       int     `mapstructure:"baking-base-in-milliseconds" validate:"required,min=1"`
	BakingPerToppingInMilliseconds int     `mapstructure:"baking-per-topping-in-milliseconds" validate:"min=0"`
	ProbabilityOfOverbaking        float64 `mapstructure:"probability-of-overbaking" validate:"gte=0,lte=1"`
	OrderBatchSize                 int     `mapstructure:"order-batch-size" validate:"required,min=1"`
	FetchMaxWaitInSeconds          int     `mapstructure:"fetch-max-wait-in-seconds" validate:"required,min=1"`
}

// BakingDuration is how long a pizza with toppingCount toppings stays in the oven.
func (m MaestroSettings) BakingDuration(toppingCount int) time.Duration {
	ms := m.BakingBaseInMilliseconds + m.BakingPerToppingInMilliseconds*toppingCount
	return time.Duration(ms) * time.Millisecond
}

type Settings struct {
	App           pacchetto.AppSettings           `mapstructure:"app" validate:"required"`
	Maestro       MaestroSettings                 `mapstructure:"maestro" validate:"required"`
	Nats          pacchetto.NatsSettings          `mapstructure:"nats" validate:"required"`
	OpenTelemetry pacchetto.OpenTelemetrySettings `mapstructure:"opentelemetry" validate:"required"`
	GRPCServer    pacchetto.GRPCServerSettings    `mapstructure:"grpc-server" validate:"required"`
}

func LoadConfig() (*Settings, error) {
	return pacchetto.LoadConfig[Settings]("MAESTRO", baseConfig)
}
