//go:build integration

package tests

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"os"
	"strconv"
	"sync"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/go-testfixtures/testfixtures/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/khaiql/dbcleaner"
	"github.com/khaiql/dbcleaner/engine"
	"github.com/ory/dockertest/v3"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/go-arrower/todo/postgres"
)

const (
	commonFixture    = "testdata/fixtures/_common.yaml"
	customMigrations = "testdata/migrations/"
)

//nolint:gochecknoglobals // the variables are used on purpose for a singleton pattern.
var (
	muPostgres        = &sync.Mutex{}
	singletonPostgres *PostgresDocker

	testPGConf = postgres.Config{ //nolint:exhaustruct
		User:       "todo",
		Password:   "secret",
		Database:   "todo_test",
		Host:       "localhost",
		MaxConns:   10, //nolint:mnd
		Migrations: postgres.Migrations,
	}
)

// PostgresDocker is a migrated postgres running in docker.
type PostgresDocker struct {
	pg            *postgres.Handler
	cleanupDocker func() error
}

// GetPostgresDockerForIntegrationTestingInstance returns a connected and migrated postgres.
// All callers share one container, so integration tests running in parallel do not start one each.
// Isolate the data of a test with NewTestDatabase.
// In case of an issue, it panics.
func GetPostgresDockerForIntegrationTestingInstance() *PostgresDocker {
	muPostgres.Lock()
	defer muPostgres.Unlock()

	if singletonPostgres == nil {
		singletonPostgres = startPostgres()
	}

	return singletonPostgres
}

func startPostgres() *PostgresDocker {
	var handler *postgres.Handler

	connect := func(resource *dockertest.Resource) func() error {
		conf := testPGConf
		conf.Port, _ = strconv.Atoi(resource.GetPort("5432/tcp"))

		return func() error {
			var err error
			handler, err = postgres.ConnectAndMigrate(context.Background(), conf, noop.NewTracerProvider())

			return err //nolint:wrapcheck // retried by dockertest
		}
	}

	cleanup, err := StartDockerContainer(&dockertest.RunOptions{ //nolint:exhaustruct // only set required configuration
		Name:       fmt.Sprintf("todo-testing-postgres-%d", rand.Intn(1000)), //nolint:gosec,mnd // prevents collisions only
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=" + testPGConf.User,
			"POSTGRES_PASSWORD=" + testPGConf.Password,
			"POSTGRES_DB=" + testPGConf.Database,
		},
		Cmd: []string{"-c", "max_connections=1000"},
	}, connect)
	if err != nil {
		panic(err)
	}

	return &PostgresDocker{pg: handler, cleanupDocker: cleanup}
}

// PGx returns the pool of the default database.
func (pd *PostgresDocker) PGx() *pgxpool.Pool {
	return pd.pg.PGx
}

// NewTestDatabase creates a new, migrated database and loads the fixture files into it.
// The fixture `testdata/fixtures/_common.yaml` is loaded first, if it exists.
// If the folder `testdata/migrations` exists, its migrations are used instead of postgres.Migrations.
// It is safe to call from parallel tests.
// In case of an issue, it panics.
func (pd *PostgresDocker) NewTestDatabase(files ...string) *pgxpool.Pool {
	conf := pd.pg.Config
	conf.Database = randomDatabaseName()

	if _, err := pd.pg.PGx.Exec(context.Background(), "CREATE DATABASE "+conf.Database); err != nil {
		panic(err)
	}

	if exists(customMigrations) {
		conf.Migrations = os.DirFS("testdata/")
	}

	handler, err := postgres.ConnectAndMigrate(context.Background(), conf, noop.NewTracerProvider())
	if err != nil {
		panic(err)
	}

	loadFixtures(handler, files)

	return handler.PGx
}

// PrepareDatabase truncates all tables of the default database and loads the fixture files into it.
// Tests using it can not run in parallel.
func (pd *PostgresDocker) PrepareDatabase(files ...string) {
	c := pd.pg.Config
	dsn := fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		c.User, c.Password, net.JoinHostPort(c.Host, strconv.Itoa(c.Port)), c.Database)

	var tables []string
	_ = pgxscan.Select(context.Background(), pd.PGx(), &tables, `
		SELECT table_schema || '.' || table_name FROM information_schema.tables
		WHERE table_schema NOT IN ('pg_catalog', 'information_schema')
		  AND table_type = 'BASE TABLE'
		  AND table_name <> 'schema_migrations'`,
	)

	cleaner := dbcleaner.New()
	cleaner.SetEngine(engine.NewPostgresEngine(dsn))
	cleaner.Clean(tables...)
	_ = cleaner.Close()

	loadFixtures(pd.pg, files)
}

// Cleanup closes the connection and removes the container.
// TestMain has to call it explicitly before os.Exit, as deferred calls do not run.
// In case of an issue, it panics.
func (pd *PostgresDocker) Cleanup() {
	if err := pd.pg.Shutdown(context.Background()); err != nil {
		panic(err)
	}

	if err := pd.cleanupDocker(); err != nil {
		panic(err)
	}
}

// loadFixtures keeps the sequences untouched, so IDs generated by the database never collide with a fixture.
func loadFixtures(pg *postgres.Handler, files []string) {
	if exists(commonFixture) {
		files = append([]string{commonFixture}, files...)
	}

	if len(files) == 0 {
		return
	}

	fixtures, err := testfixtures.New(
		testfixtures.Database(pg.DB),
		testfixtures.Dialect("postgres"),
		testfixtures.SkipResetSequences(),
		testfixtures.FilesMultiTables(files...),
	)
	if err != nil {
		panic(err)
	}

	if err = fixtures.Load(); err != nil {
		panic(err)
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}

// randomDatabaseName returns a name that is valid as postgres database and redis key prefix.
func randomDatabaseName() string {
	const letters = "abcdefghijklmnopqrstuvwxyz"

	name := make([]byte, 16) //nolint:mnd
	for i := range name {
		name[i] = letters[rand.Intn(len(letters))] //nolint:gosec // used for name, not security
	}

	return string(name) + "_test"
}
