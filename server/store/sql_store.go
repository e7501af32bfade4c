package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/keystrand/usermeta/server/status"
	"github.com/keystrand/usermeta/server/telemetry"
	"github.com/keystrand/usermeta/server/types"
)

const (
	idQueryCondition          = "id = ?"
	hashedTokenQueryCondition = "hashed_token = ?"
)

// SqlStore represents a user storage backed by a SQL DB persisted to disk
type SqlStore struct {
	db          *gorm.DB
	storeEngine Engine
	metrics     telemetry.AppMetrics
}

// NewSqlStore creates a new SqlStore instance.
func NewSqlStore(ctx context.Context, db *gorm.DB, storeEngine Engine, metrics telemetry.AppMetrics) (*SqlStore, error) {
	sql, err := db.DB()
	if err != nil {
		return nil, err
	}
	conns := runtime.NumCPU()
	sql.SetMaxOpenConns(conns) // TODO: make it configurable

	if err = db.AutoMigrate(&types.User{}, &types.SessionToken{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &SqlStore{db: db, storeEngine: storeEngine, metrics: metrics}, nil
}

// GetUserByID returns the user with the given ID.
func (s *SqlStore) GetUserByID(ctx context.Context, userID string) (*types.User, error) {
	var user types.User
	result := s.db.First(&user, idQueryCondition, userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, status.NewUserNotFoundError(userID)
		}
		log.WithContext(ctx).Errorf("failed to get user from store: %s", result.Error)
		return nil, status.NewGetUserFromStoreError()
	}

	return &user, nil
}

// SaveUser inserts the user or replaces the stored record when one with the
// same ID already exists.
func (s *SqlStore) SaveUser(ctx context.Context, user *types.User) error {
	start := time.Now()

	result := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(user)
	if result.Error != nil {
		log.WithContext(ctx).Errorf("failed to save user to store: %s", result.Error)
		return status.Errorf(status.Internal, "failed to save user to store")
	}

	took := time.Since(start)
	if s.metrics != nil {
		s.metrics.StoreMetrics().CountPersistenceDuration(took)
	}

	return nil
}

// GetUserMetadata returns the serialized metadata object of the user, nil when
// the user has none stored.
func (s *SqlStore) GetUserMetadata(ctx context.Context, userID string) (*string, error) {
	var user types.User
	result := s.db.Select("metadata").First(&user, idQueryCondition, userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, status.NewUserNotFoundError(userID)
		}
		log.WithContext(ctx).Errorf("failed to get user metadata from store: %s", result.Error)
		return nil, status.Errorf(status.Internal, "failed to get user metadata from store")
	}

	return user.Metadata, nil
}

// SaveUserMetadata persists the serialized metadata object for the user,
// creating the user record when it does not exist yet. The row is written
// unconditionally, concurrent writers follow last write wins.
func (s *SqlStore) SaveUserMetadata(ctx context.Context, userID string, metadata *string) error {
	start := time.Now()

	user := &types.User{ID: userID, Metadata: metadata}
	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"metadata", "updated_at"}),
	}).Create(user)
	if result.Error != nil {
		log.WithContext(ctx).Errorf("failed to save user metadata to store: %s", result.Error)
		return status.Errorf(status.Internal, "failed to save user metadata to store")
	}

	took := time.Since(start)
	if s.metrics != nil {
		s.metrics.StoreMetrics().CountPersistenceDuration(took)
	}
	log.WithContext(ctx).Debugf("took %d ms to persist user metadata to the store", took.Milliseconds())

	return nil
}

// GetSessionTokenByHashedToken returns the session token matching the hashed
// plain text token.
func (s *SqlStore) GetSessionTokenByHashedToken(ctx context.Context, hashedToken string) (*types.SessionToken, error) {
	var token types.SessionToken
	result := s.db.First(&token, hashedTokenQueryCondition, hashedToken)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, status.NewSessionTokenNotFoundError()
		}
		log.WithContext(ctx).Errorf("failed to get session token from store: %s", result.Error)
		return nil, status.Errorf(status.Internal, "failed to get session token from store")
	}

	return &token, nil
}

// GetUserBySessionTokenID returns the user that owns the session token.
func (s *SqlStore) GetUserBySessionTokenID(ctx context.Context, tokenID string) (*types.User, error) {
	var token types.SessionToken
	result := s.db.First(&token, idQueryCondition, tokenID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, status.NewSessionTokenNotFoundError()
		}
		log.WithContext(ctx).Errorf("failed to get session token from store: %s", result.Error)
		return nil, status.Errorf(status.Internal, "failed to get session token from store")
	}

	return s.GetUserByID(ctx, token.UserID)
}

// SaveSessionToken persists the session token.
func (s *SqlStore) SaveSessionToken(ctx context.Context, token *types.SessionToken) error {
	result := s.db.Create(token)
	if result.Error != nil {
		log.WithContext(ctx).Errorf("failed to save session token to store: %s", result.Error)
		return status.Errorf(status.Internal, "failed to save session token to store")
	}

	return nil
}

// MarkSessionTokenUsed updates the last used timestamp of the session token.
func (s *SqlStore) MarkSessionTokenUsed(ctx context.Context, tokenID string) error {
	result := s.db.Model(&types.SessionToken{}).
		Where(idQueryCondition, tokenID).
		Update("last_used", time.Now().UTC())
	if result.Error != nil {
		log.WithContext(ctx).Errorf("failed to mark session token as used: %s", result.Error)
		return status.Errorf(status.Internal, "failed to mark session token as used")
	}
	if result.RowsAffected == 0 {
		return status.NewSessionTokenNotFoundError()
	}

	return nil
}

// Close closes the underlying DB connection
func (s *SqlStore) Close(ctx context.Context) error {
	log.WithContext(ctx).Infof("closing database connection")
	sql, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get db: %w", err)
	}
	return sql.Close()
}

// GetStoreEngine returns underlying store engine
func (s *SqlStore) GetStoreEngine() Engine {
	return s.storeEngine
}

// NewSqliteStore creates a new SQLite store.
func NewSqliteStore(ctx context.Context, dataDir string, metrics telemetry.AppMetrics) (*SqlStore, error) {
	storeStr := fmt.Sprintf("%s?cache=shared", storeSqliteFileName)
	if runtime.GOOS == "windows" {
		// Avoid `The process cannot access the file because it is being used by another process` on Windows
		storeStr = storeSqliteFileName
	}

	file := filepath.Join(dataDir, storeStr)
	db, err := gorm.Open(sqlite.Open(file), getGormConfig())
	if err != nil {
		return nil, err
	}

	return NewSqlStore(ctx, db, SqliteStoreEngine, metrics)
}

// NewPostgresqlStore creates a new Postgres store.
func NewPostgresqlStore(ctx context.Context, dsn string, metrics telemetry.AppMetrics) (*SqlStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), getGormConfig())
	if err != nil {
		return nil, err
	}

	return NewSqlStore(ctx, db, PostgresStoreEngine, metrics)
}

// NewMysqlStore creates a new MySQL store.
func NewMysqlStore(ctx context.Context, dsn string, metrics telemetry.AppMetrics) (*SqlStore, error) {
	db, err := gorm.Open(mysql.Open(dsn), getGormConfig())
	if err != nil {
		return nil, err
	}

	return NewSqlStore(ctx, db, MysqlStoreEngine, metrics)
}

func newPostgresStore(ctx context.Context, metrics telemetry.AppMetrics) (Store, error) {
	dsn, ok := os.LookupEnv(postgresDsnEnv)
	if !ok {
		return nil, fmt.Errorf("%s is not set", postgresDsnEnv)
	}

	return NewPostgresqlStore(ctx, dsn, metrics)
}

func newMysqlStore(ctx context.Context, metrics telemetry.AppMetrics) (Store, error) {
	dsn, ok := os.LookupEnv(mysqlDsnEnv)
	if !ok {
		return nil, fmt.Errorf("%s is not set", mysqlDsnEnv)
	}

	return NewMysqlStore(ctx, dsn, metrics)
}

// NewPostgresqlStoreFromSqlStore restores a store from the given store and
// stores the DB in the given Postgres address.
func NewPostgresqlStoreFromSqlStore(ctx context.Context, sqliteStore *SqlStore, dsn string, metrics telemetry.AppMetrics) (*SqlStore, error) {
	store, err := NewPostgresqlStore(ctx, dsn, metrics)
	if err != nil {
		return nil, err
	}

	err = copyStore(ctx, sqliteStore, store)
	if err != nil {
		return nil, err
	}

	return store, nil
}

// NewMysqlStoreFromSqlStore restores a store from the given store and stores
// the DB in the given MySQL address.
func NewMysqlStoreFromSqlStore(ctx context.Context, sqliteStore *SqlStore, dsn string, metrics telemetry.AppMetrics) (*SqlStore, error) {
	store, err := NewMysqlStore(ctx, dsn, metrics)
	if err != nil {
		return nil, err
	}

	err = copyStore(ctx, sqliteStore, store)
	if err != nil {
		return nil, err
	}

	return store, nil
}

func copyStore(ctx context.Context, from *SqlStore, to *SqlStore) error {
	var users []*types.User
	if result := from.db.Find(&users); result.Error != nil {
		return fmt.Errorf("failed to read users: %w", result.Error)
	}

	for _, user := range users {
		if err := to.SaveUser(ctx, user); err != nil {
			return fmt.Errorf("failed to copy user %s: %w", user.ID, err)
		}
	}

	var tokens []*types.SessionToken
	if result := from.db.Find(&tokens); result.Error != nil {
		return fmt.Errorf("failed to read session tokens: %w", result.Error)
	}

	for _, token := range tokens {
		if err := to.SaveSessionToken(ctx, token); err != nil {
			return fmt.Errorf("failed to copy session token %s: %w", token.ID, err)
		}
	}

	return nil
}

func getGormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:          logger.Default.LogMode(logger.Silent),
		CreateBatchSize: 400,
		PrepareStmt:     true,
	}
}
