package helper

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testDBImage    = "postgis/postgis:17-3.5"
	testDBName     = "database"
	testDBUser     = "user"
	testDBPassword = "password"
)

// MustStartPostgresContainer starts a PostGIS container and returns its
// teardown function and the mapped port.
func MustStartPostgresContainer() (func(ctx context.Context, opts ...testcontainers.TerminateOption) error, string, error) {
	ctx := context.Background()

	container, err := postgres.Run(
		ctx,
		testDBImage,
		postgres.WithDatabase(testDBName),
		postgres.WithUsername(testDBUser),
		postgres.WithPassword(testDBPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, "", NewError("start postgres container", err)
	}

	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return container.Terminate, "", NewError("map postgres port", err)
	}

	return container.Terminate, port.Port(), nil
}

// SetTestDatabaseConfigEnvs points NewDatabaseConfiguration at a test container.
func SetTestDatabaseConfigEnvs(t *testing.T, dbPort string) {
	t.Setenv(EnvDBHost, "localhost")
	t.Setenv(EnvDBPort, dbPort)
	t.Setenv(EnvDBDatabase, testDBName)
	t.Setenv(EnvDBUsername, testDBUser)
	t.Setenv(EnvDBPassword, testDBPassword)
	t.Setenv(EnvDBSchema, "public")
	t.Setenv(EnvDBSSLMode, "disable")
}
