package postgres_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	containerOnce sync.Once
	containerURL  string
	containerErr  error
)

// testDatabaseURL prefers CAMBIO_TEST_DATABASE_URL and otherwise starts one
// throwaway PostgreSQL container shared by the package. The container is
// reaped by testcontainers when the test binary exits.
func testDatabaseURL(t *testing.T) string {
	t.Helper()

	if dbURL := os.Getenv("CAMBIO_TEST_DATABASE_URL"); dbURL != "" {
		return dbURL
	}

	containerOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		containerURL, containerErr = startPostgresContainer(ctx)
	})
	if containerErr != nil {
		t.Skipf("no CAMBIO_TEST_DATABASE_URL and no container runtime: %v", containerErr)
	}
	return containerURL
}

func startPostgresContainer(ctx context.Context) (string, error) {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "cambio",
			"POSTGRES_PASSWORD": "cambio",
			"POSTGRES_DB":       "cambio_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", fmt.Errorf("start postgres container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("postgres container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return "", fmt.Errorf("postgres container port: %w", err)
	}

	return fmt.Sprintf("postgres://cambio:cambio@%s:%s/cambio_test?sslmode=disable", host, port.Port()), nil
}
