package writer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/roach88/contactdb/internal/contact"
	"github.com/roach88/contactdb/internal/testutil"
)

func TestWriter_Spans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	f := newFixture(t, WithTracerProvider(tp))
	ctx := context.Background()

	hs := f.create(t, testutil.Person("Ada", ""))
	_, err := f.w.RemoveContacts(ctx, []contact.Handle{hs[0], 99})
	require.Error(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "writer.SaveContacts", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)

	assert.Equal(t, "writer.RemoveContacts", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, contact.DoesNotExist.String(), spans[1].Status().Description)
	assert.Equal(t, tracerName, spans[1].InstrumentationScope().Name)
}
