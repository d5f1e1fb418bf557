package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/orgball2608/wedding-gallery/pkg/logger"
)

func fastConfig(retries uint64) Config {
	return Config{
		MaxRetries:      retries,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		Multiplier:      1.5,
	}
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), logger.NewNop(), "ping", func() error {
		attempts++
		if attempts < 3 {
			return errors.New("connection refused")
		}
		return nil
	}, fastConfig(5))

	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestDoGivesUpAfterMaxRetries(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), logger.NewNop(), "ping", func() error {
		attempts++
		return errors.New("connection refused")
	}, fastConfig(2))

	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestDoStopsOnPermanent(t *testing.T) {
	attempts := 0
	boom := errors.New("bad password")
	err := Do(context.Background(), logger.NewNop(), "ping", func() error {
		attempts++
		return Permanent(boom)
	}, fastConfig(5))

	if !errors.Is(err, boom) {
		t.Fatalf("Do() error = %v, want %v", err, boom)
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1", attempts)
	}
}
