package api

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/enixma/dashboard/internal/api"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
