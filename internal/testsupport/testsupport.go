package testsupport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"
	ctestsupport "github.com/karloscodes/cartridge/testsupport"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"devconnect/internal"
	"devconnect/internal/auth"
	"devconnect/internal/config"
	"devconnect/internal/database"
	"devconnect/internal/users"
)

// TestJWTSecret signs tokens in tests.
const TestJWTSecret = "test-secret"

// testDBCache caches test databases by test name to allow multiple calls
// within the same test to share the same database
var testDBCache = make(map[string]*gorm.DB)
var testDBCacheMu sync.Mutex

// TestDBManager wraps cartridge's TestDBManager around a test database
type TestDBManager struct {
	*ctestsupport.TestDBManager
}

// NewTestDBManager creates a TestDBManager that implements cartridge.DBManager
func NewTestDBManager(db *gorm.DB) *TestDBManager {
	return &TestDBManager{
		TestDBManager: ctestsupport.NewTestDBManager(db),
	}
}

// Ensure TestDBManager implements cartridge.DBManager
var _ cartridge.DBManager = (*TestDBManager)(nil)

// SetupTestDB creates a test database with all models migrated.
// Uses a named in-memory database with cache=shared to allow multiple connections
// to share the same database within a test. Caches the database by test name
// so multiple calls within the same test return the same database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	testName := t.Name()

	// Use root test name for caching to handle closure issues where
	// setup functions capture the outer t while t.Run has subtest t
	rootName := testName
	if idx := strings.Index(testName, "/"); idx > 0 {
		rootName = testName[:idx]
	}

	testDBCacheMu.Lock()
	if db, exists := testDBCache[rootName]; exists {
		testDBCacheMu.Unlock()
		return db
	}
	testDBCacheMu.Unlock()

	sanitizedName := strings.ReplaceAll(rootName, "/", "_")
	dsn := fmt.Sprintf("file:test_%s_%d?mode=memory&cache=shared", sanitizedName, time.Now().UnixNano())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("testsupport: failed to open test database: %v", err)
	}

	db.Exec("PRAGMA foreign_keys = ON")

	if err := database.Migrate(db); err != nil {
		t.Fatalf("testsupport: failed to migrate models: %v", err)
	}

	testDBCacheMu.Lock()
	testDBCache[rootName] = db
	testDBCacheMu.Unlock()

	t.Cleanup(func() {
		testDBCacheMu.Lock()
		delete(testDBCache, rootName)
		testDBCacheMu.Unlock()
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// GetLogger returns a test logger
func GetLogger() *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})
	return slog.New(handler)
}

// TestConfig returns a configuration suitable for tests without touching the
// process-wide singleton.
func TestConfig() *config.Config {
	return &config.Config{
		AppName:           "devconnect",
		AppPort:           "0",
		Environment:       config.Test,
		LogLevel:          config.LogLevelError,
		CORSOrigins:       "*",
		JWTSecret:         TestJWTSecret,
		TokenTTLSeconds:   360000,
		MinPasswordLength: 6,
		DatabaseType:      config.SQLiteDatabase,
		MetricsEnabled:    true,
	}
}

// NewTokenIssuer returns the issuer used by CreateTestApp.
func NewTokenIssuer() *auth.TokenIssuer {
	return auth.NewTokenIssuer([]byte(TestJWTSecret), time.Hour)
}

// CreateTestUser creates a user with a cheaply hashed password.
func CreateTestUser(t *testing.T, db *gorm.DB, name, email, password string) *users.User {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user, err := users.Insert(db, GetLogger(), name, email, string(hashedPassword))
	require.NoError(t, err)
	return user
}

// TokenFor issues a session token for userID with the test issuer.
func TokenFor(t *testing.T, userID string) string {
	t.Helper()

	token, err := NewTokenIssuer().Issue(userID)
	require.NoError(t, err)
	return token
}

// CreateTestServer creates a cartridge server with all routes mounted over db.
func CreateTestServer(t *testing.T, db *gorm.DB, cfg *config.Config) *cartridge.Server {
	t.Helper()

	serverCfg := internal.NewServerConfig()
	serverCfg.Config = cfg
	serverCfg.Logger = GetLogger()
	serverCfg.DBManager = NewTestDBManager(db)

	srv, err := cartridge.NewServer(serverCfg)
	require.NoError(t, err)

	internal.MountAPIRoutesWithConfig(srv, cfg)
	return srv
}

// CreateTestApp creates a fiber app with all routes over db using TestConfig.
func CreateTestApp(t *testing.T, db *gorm.DB) *fiber.App {
	t.Helper()
	return CreateTestServer(t, db, TestConfig()).App()
}

// DoJSON sends a JSON request to app and returns the response and its body.
// A non-empty token is sent in the x-auth-token header.
func DoJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("x-auth-token", token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	return resp, data
}

// DecodeJSON unmarshals data into a value of type T.
func DecodeJSON[T any](t *testing.T, data []byte) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(data, &v), "body: %s", string(data))
	return v
}
