package http

import (
	"context"
	"errors"
	"testing"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestMultiHealthPingsEveryDependency(t *testing.T) {
	var pinged []string
	ok := func(name string) HealthChecker {
		return pingFunc(func(context.Context) error {
			pinged = append(pinged, name)
			return nil
		})
	}

	health := MultiHealth(ok("cache"), ok("database"))
	if err := health.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pinged) != 2 || pinged[0] != "cache" || pinged[1] != "database" {
		t.Fatalf("expected both dependencies pinged, got %v", pinged)
	}
}

func TestMultiHealthReportsFirstFailure(t *testing.T) {
	dbDown := errors.New("connection refused")
	health := MultiHealth(
		pingFunc(func(context.Context) error { return nil }),
		pingFunc(func(context.Context) error { return dbDown }),
	)

	if err := health.Ping(context.Background()); !errors.Is(err, dbDown) {
		t.Fatalf("expected the database failure, got %v", err)
	}
}

func TestMultiHealthSkipsNilCheckers(t *testing.T) {
	health := MultiHealth(nil, pingFunc(func(context.Context) error { return nil }), nil)
	if err := health.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
