package tracing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jhoicas/Ubicaciones-api/pkg/tracing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/codes"
)

func TestStartSpan_ExportaAtributosYEstado(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	require.NoError(t, tracing.InitWithExporter("ubicaciones-test", "0.0.0", exporter))

	_, span := tracing.StartSpan(context.Background(), "allocation.Allocate", "SERVER")
	span.WithAttributes(map[string]string{"bin_id": "B1"})
	span.SetStatus(errors.New("capacidad excedida"))
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "allocation.Allocate", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	found := false
	for _, a := range spans[0].Attributes {
		if string(a.Key) == "bin_id" && a.Value.AsString() == "B1" {
			found = true
		}
	}
	assert.True(t, found, "el span debe llevar el atributo bin_id")
}

func TestSpanNil_NoPanic(t *testing.T) {
	var s *tracing.Span
	assert.NotPanics(t, func() {
		s.WithAttributes(map[string]string{"a": "b"})
		s.SetStatus(nil)
		s.End()
	})
}
