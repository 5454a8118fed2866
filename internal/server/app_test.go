package server

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophnotes/internal/server/config"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/repotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingMigrations struct{ *repotest.Manager }

func (failingMigrations) RunMigrations(context.Context, *sql.DB) error { return errors.New("bad migration") }

func stubApp(t *testing.T, rm repomanager.RepositoryManager) (sqlmock.Sqlmock, *bytes.Buffer) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	var logs bytes.Buffer
	origOut, origOpen, origRM := logOutput, openDB, newRepositoryManager
	t.Cleanup(func() {
		logOutput, openDB, newRepositoryManager = origOut, origOpen, origRM
	})

	logOutput = &logs
	openDB = func(string) (*sql.DB, error) { return db, nil }
	newRepositoryManager = func() repomanager.RepositoryManager { return rm }
	return mock, &logs
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().String()
}

func testConfig(t *testing.T) *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.HTTPAddr = freeAddr(t)
	return c
}

func TestNewApp_AndRun(t *testing.T) {
	mock, logs := stubApp(t, repotest.NewManager())
	mock.ExpectPing()
	mock.ExpectClose()

	cfg := testConfig(t)
	cfg.GRPCHealthAddr = freeAddr(t)

	app, err := NewApp(context.Background(), cfg)
	require.NoError(t, err)
	assert.NotNil(t, app.healthServer)
	assert.Contains(t, logs.String(), "insecure fallback secret")
	assert.Contains(t, logs.String(), "mock output")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewApp_ConfiguredSecretDoesNotWarn(t *testing.T) {
	mock, logs := stubApp(t, repotest.NewManager())
	mock.ExpectPing()

	cfg := testConfig(t)
	cfg.SecretKey = "real-secret"
	cfg.AIAPIKey = "sk-live"

	app, err := NewApp(context.Background(), cfg)
	require.NoError(t, err)
	assert.Nil(t, app.healthServer)
	assert.NotContains(t, logs.String(), "fallback secret")
	assert.NotContains(t, logs.String(), "mock output")
}

func TestNewApp_Failures(t *testing.T) {
	t.Run("ping", func(t *testing.T) {
		mock, _ := stubApp(t, repotest.NewManager())
		mock.ExpectPing().WillReturnError(errors.New("refused"))
		mock.ExpectClose()

		_, err := NewApp(context.Background(), testConfig(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db ping error")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("migrations", func(t *testing.T) {
		mock, _ := stubApp(t, failingMigrations{repotest.NewManager()})
		mock.ExpectPing()
		mock.ExpectClose()

		_, err := NewApp(context.Background(), testConfig(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "migrations error")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("open", func(t *testing.T) {
		stubApp(t, repotest.NewManager())
		openDB = func(string) (*sql.DB, error) { return nil, errors.New("bad dsn") }

		_, err := NewApp(context.Background(), testConfig(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db init error")
	})
}

func TestRun_ReportsServerFailure(t *testing.T) {
	mock, _ := stubApp(t, repotest.NewManager())
	mock.ExpectPing()
	mock.ExpectClose()

	cfg := testConfig(t)
	cfg.HTTPAddr = "127.0.0.1:99999"

	app, err := NewApp(context.Background(), cfg)
	require.NoError(t, err)

	err = app.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http server")
}
