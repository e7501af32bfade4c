package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/keystrand/usermeta/server/telemetry"
	"github.com/keystrand/usermeta/server/testutil"
	"github.com/keystrand/usermeta/server/types"
)

// storeSqliteFileName is the name of the SQLite database file kept in the datadir.
const storeSqliteFileName = "store.db"

// Store persists users, their metadata objects and the session tokens used to
// authenticate API calls.
type Store interface {
	GetUserByID(ctx context.Context, userID string) (*types.User, error)
	SaveUser(ctx context.Context, user *types.User) error

	GetUserMetadata(ctx context.Context, userID string) (*string, error)
	SaveUserMetadata(ctx context.Context, userID string, metadata *string) error

	GetSessionTokenByHashedToken(ctx context.Context, hashedToken string) (*types.SessionToken, error)
	GetUserBySessionTokenID(ctx context.Context, tokenID string) (*types.User, error)
	SaveSessionToken(ctx context.Context, token *types.SessionToken) error
	MarkSessionTokenUsed(ctx context.Context, tokenID string) error

	// Close should close the store persisting all unsaved data.
	Close(ctx context.Context) error
	// GetStoreEngine should return Engine of the current store implementation.
	GetStoreEngine() Engine
}

type Engine string

const (
	SqliteStoreEngine   Engine = "sqlite"
	PostgresStoreEngine Engine = "postgres"
	MysqlStoreEngine    Engine = "mysql"

	postgresDsnEnv = "UM_STORE_ENGINE_POSTGRES_DSN"
	mysqlDsnEnv    = "UM_STORE_ENGINE_MYSQL_DSN"
)

func getStoreEngineFromEnv() Engine {
	// UM_STORE_ENGINE supposed to be used in tests. Otherwise, rely on the config file.
	kind, ok := os.LookupEnv("UM_STORE_ENGINE")
	if !ok {
		return ""
	}

	value := Engine(strings.ToLower(kind))
	if value == SqliteStoreEngine || value == PostgresStoreEngine || value == MysqlStoreEngine {
		return value
	}

	return SqliteStoreEngine
}

// getStoreEngine determines the store engine to use.
// If no engine is specified, it attempts to retrieve it from the environment.
// If still not specified, it defaults to using SQLite.
func getStoreEngine(kind Engine) Engine {
	if kind == "" {
		kind = getStoreEngineFromEnv()
		if kind == "" {
			kind = SqliteStoreEngine
		}
	}

	return kind
}

// NewStore creates a new store based on the provided engine type, data directory, and telemetry metrics
func NewStore(ctx context.Context, kind Engine, dataDir string, metrics telemetry.AppMetrics) (Store, error) {
	kind = getStoreEngine(kind)

	switch kind {
	case SqliteStoreEngine:
		log.WithContext(ctx).Info("using SQLite store engine")
		return NewSqliteStore(ctx, dataDir, metrics)
	case PostgresStoreEngine:
		log.WithContext(ctx).Info("using Postgres store engine")
		return newPostgresStore(ctx, metrics)
	case MysqlStoreEngine:
		log.WithContext(ctx).Info("using MySQL store engine")
		return newMysqlStore(ctx, metrics)
	default:
		return nil, fmt.Errorf("unsupported kind of store: %s", kind)
	}
}

// NewTestStore is only used in tests. It will create a test database based on
// the store engine set in env, defaulting to an empty SQLite database.
func NewTestStore(ctx context.Context, dataDir string) (Store, func(), error) {
	kind := getStoreEngineFromEnv()
	if kind == "" {
		kind = SqliteStoreEngine
	}

	storeStr := fmt.Sprintf("%s?cache=shared", storeSqliteFileName)
	if runtime.GOOS == "windows" {
		// Avoid `The process cannot access the file because it is being used by another process` on Windows
		storeStr = storeSqliteFileName
	}

	file := filepath.Join(dataDir, storeStr)
	db, err := gorm.Open(sqlite.Open(file), getGormConfig())
	if err != nil {
		return nil, nil, err
	}

	store, err := NewSqlStore(ctx, db, SqliteStoreEngine, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create test store: %v", err)
	}

	return getSqlStoreEngine(ctx, store, kind)
}

func getSqlStoreEngine(ctx context.Context, store *SqlStore, kind Engine) (Store, func(), error) {
	if kind == PostgresStoreEngine {
		cleanUp, err := testutil.CreatePostgresTestContainer()
		if err != nil {
			return nil, nil, err
		}

		dsn, ok := os.LookupEnv(postgresDsnEnv)
		if !ok {
			return nil, nil, fmt.Errorf("%s is not set", postgresDsnEnv)
		}

		store, err = NewPostgresqlStoreFromSqlStore(ctx, store, dsn, nil)
		if err != nil {
			return nil, nil, err
		}

		return store, cleanUp, nil
	}

	if kind == MysqlStoreEngine {
		cleanUp, err := testutil.CreateMysqlTestContainer()
		if err != nil {
			return nil, nil, err
		}

		dsn, ok := os.LookupEnv(mysqlDsnEnv)
		if !ok {
			return nil, nil, fmt.Errorf("%s is not set", mysqlDsnEnv)
		}

		store, err = NewMysqlStoreFromSqlStore(ctx, store, dsn, nil)
		if err != nil {
			return nil, nil, err
		}

		return store, cleanUp, nil
	}

	closeConnection := func() {
		store.Close(ctx)
	}

	return store, closeConnection, nil
}
