// File: internal/infra/logging/logging_test.go
package logging_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"sixseven-backend/internal/config"
	"sixseven-backend/internal/infra/logging"
)

func TestNewRespectsLevelAndFormat(t *testing.T) {
	log := logging.New(config.LogConfig{Level: "debug", Format: "json"}, false)
	if log == nil {
		t.Fatal("expected a logger")
	}
	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Errorf("expected global level debug, got %s", zerolog.GlobalLevel())
	}
}

func TestWithStampsContextFields(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	ctx := context.Background()
	ctx = logging.WithRequestID(ctx, "req-1")
	ctx = logging.WithSessID(ctx, "sess-1")
	ctx = logging.WithJobID(ctx, "job-1")

	logging.With(ctx, &base).Info().Msg("hello")

	line := buf.String()
	for _, want := range []string{`"request_id":"req-1"`, `"session_id":"sess-1"`, `"job_id":"job-1"`} {
		if !strings.Contains(line, want) {
			t.Errorf("expected %s in %s", want, line)
		}
	}
}

func TestWithIgnoresMissingFields(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	logging.With(context.Background(), &base).Info().Msg("hello")

	line := buf.String()
	if strings.Contains(line, "request_id") || strings.Contains(line, "job_id") {
		t.Errorf("unexpected context fields in %s", line)
	}
}

func TestTraceDurationLogsStartAndFinish(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	done := logging.TraceDuration(&base, "commandUC.HandleCommand")
	done()

	out := buf.String()
	if !strings.Contains(out, `"message":"start"`) || !strings.Contains(out, `"message":"finish"`) {
		t.Fatalf("expected start and finish lines, got %s", out)
	}
	if !strings.Contains(out, `"method":"commandUC.HandleCommand"`) {
		t.Errorf("expected method field, got %s", out)
	}
	if !strings.Contains(out, `"duration"`) {
		t.Errorf("expected duration field on finish, got %s", out)
	}
}
