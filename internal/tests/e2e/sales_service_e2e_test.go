// Package e2e provides end-to-end tests for the sales service and the compute_sales command.
// The suite starts a real PostgreSQL instance with testcontainers-go for the catalog and runs
// the service handler inside an httptest.Server.
package e2e

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abgdnv/salescost/internal/app"
	"github.com/abgdnv/salescost/internal/cli"
	"github.com/abgdnv/salescost/internal/config"
	"github.com/abgdnv/salescost/internal/platform/web"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// skipE2ETests is the environment variable that can be set to skip E2E tests.
const skipE2ETests = "SALES_SKIP_INTEGRATION_TESTS"

const totalURL = "/api/v1/sales/total"

// SalesE2ESuite exercises the service over HTTP and the command against a PostgreSQL catalog.
type SalesE2ESuite struct {
	suite.Suite
	pgContainer *postgres.PostgresContainer
	connStr     string
	dbPool      *pgxpool.Pool
	server      *httptest.Server
	httpClient  *http.Client
	logger      *slog.Logger
	ctx         context.Context
}

// SetupSuite starts PostgreSQL, applies the migrations and starts the HTTP handler.
func (s *SalesE2ESuite) SetupSuite() {
	s.ctx = context.Background()
	var err error
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// 1. Start a PostgreSQL container and wait until it accepts connections.
	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase("sales"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(s.T(), err, "Failed to run PostgreSQL container")

	s.connStr, err = s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get connection string from container")

	// 2. Apply the catalog schema
	wd, _ := os.Getwd()
	m, err := migrate.New("file://"+filepath.Join(wd, "..", "..", "source", "migrations"), s.connStr)
	require.NoError(s.T(), err, "Failed to create migrate instance")
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		_, _ = m.Close()
		require.NoError(s.T(), err, "Failed to apply migrations")
	}

	s.dbPool, err = pgxpool.New(s.ctx, s.connStr)
	require.NoError(s.T(), err, "Failed to create pgx pool")

	// 3. Start the service handler
	var cfg config.Config
	cfg.Catalog.Duplicates = config.DuplicatesWarn
	deps := app.SetupDependencies(&cfg, s.logger)
	s.server = httptest.NewServer(app.SetupHttpHandler(deps))
	s.httpClient = s.server.Client()
	s.logger.Info("E2E test server started", "url", s.server.URL)
}

// TearDownSuite closes the server and the pool and terminates the container.
func (s *SalesE2ESuite) TearDownSuite() {
	if s.server != nil {
		s.server.Close()
	}
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(s.ctx); err != nil {
			s.logger.Warn("Failed to terminate E2E PostgreSQL container", "error", err)
		}
	}
}

// SetupTest empties the catalog before each test.
func (s *SalesE2ESuite) SetupTest() {
	_, err := s.dbPool.Exec(s.ctx, "TRUNCATE TABLE products RESTART IDENTITY")
	require.NoError(s.T(), err, "Failed to truncate products table")
}

func TestSalesE2E(t *testing.T) {
	if os.Getenv(skipE2ETests) != "" {
		t.Skip("Skipping E2E tests based on " + skipE2ETests + " env var")
	}
	suite.Run(t, new(SalesE2ESuite))
}

func (s *SalesE2ESuite) TestHTTPTotal() {
	testCases := []struct {
		name         string
		payload      string
		expectedCode int
		expectedBody string
	}{
		{
			name: "Success - sample catalog",
			payload: `{"catalog":[{"title":"Brown eggs","price":28.1},{"title":"Green smoothie","price":17.68}],
				"sales":[{"Product":"Brown eggs","Quantity":2},{"Product":"Green smoothie","Quantity":1},{"Product":"Frozen treat","Quantity":4}]}`,
			expectedCode: http.StatusOK,
			expectedBody: `{"total":73.88,"line_items":3,"matched":2,"unmatched":1,"catalog_size":2,"duplicates":0}`,
		},
		{
			name:         "Success - rounding half away from zero",
			payload:      `{"catalog":[{"title":"A","price":9.005},{"title":"B","price":3}],"sales":[{"product":"A","quantity":1}]}`,
			expectedCode: http.StatusOK,
			expectedBody: `{"total":9.01,"line_items":1,"matched":1,"unmatched":0,"catalog_size":2,"duplicates":0}`,
		},
		{
			name:         "Error - malformed body",
			payload:      `not json`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Invalid request body"}`,
		},
		{
			name:         "Error - missing product",
			payload:      `{"catalog":[],"sales":[{"quantity":1}]}`,
			expectedCode: http.StatusUnprocessableEntity,
			expectedBody: `{"error":"sale record 0: missing required field \"product\"","kind":"sale","index":0,"field":"product"}`,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			// when
			body, status, header := s.post(totalURL, tc.payload)

			// then
			s.Equal(tc.expectedCode, status)
			s.JSONEq(tc.expectedBody, string(body))
			s.NotEmpty(header.Get(web.RequestIDHeader))
		})
	}
}

func (s *SalesE2ESuite) TestMetricsExposeRequests() {
	// given
	_, status, _ := s.post(totalURL, `{"catalog":[],"sales":[]}`)
	s.Require().Equal(http.StatusOK, status)

	// when
	resp, err := s.httpClient.Get(s.server.URL + "/metrics")
	s.Require().NoError(err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	// then
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(string(body), `sales_http_requests_total{method="POST",route="/api/v1/sales/total",status="200"}`)
}

func (s *SalesE2ESuite) TestCommandWithDatabaseCatalog() {
	// given
	s.seedCatalog(
		catalogRow{"Brown eggs", 1},
		catalogRow{"Green smoothie", 17.68},
		catalogRow{"Brown eggs", 28.1},
	)
	salesPath := filepath.Join(s.T().TempDir(), "sales.json")
	s.Require().NoError(os.WriteFile(salesPath,
		[]byte(`[{"Product":"Brown eggs","Quantity":2},{"Product":"Green smoothie","Quantity":1}]`), 0o600))
	var stdout, stderr bytes.Buffer

	// when
	code := cli.Run(s.ctx, []string{s.connStr, salesPath}, &stdout, &stderr)

	// then
	s.Require().Equal(cli.ExitOK, code, stderr.String())
	s.Contains(stdout.String(), "Total cost of all sales: 73.88")
	s.Contains(stderr.String(), "Duplicate catalog title")
}

type catalogRow struct {
	title string
	price float64
}

func (s *SalesE2ESuite) seedCatalog(rows ...catalogRow) {
	s.T().Helper()
	for _, r := range rows {
		_, err := s.dbPool.Exec(s.ctx, "INSERT INTO products (title, price) VALUES ($1, $2)", r.title, r.price)
		s.Require().NoError(err, "Failed to seed catalog")
	}
}

// post sends payload to the service and returns the body, status code and response headers.
func (s *SalesE2ESuite) post(path, payload string) ([]byte, int, http.Header) {
	s.T().Helper()
	req, err := http.NewRequestWithContext(s.ctx, http.MethodPost, s.server.URL+path, bytes.NewBufferString(payload))
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	s.Require().NoError(err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return body, resp.StatusCode, resp.Header
}
