// Package postgresdb provides the PostgreSQL-backed user storage.
// The schema is kept in embedded goose migrations applied on startup.
package postgresdb

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/patric-chuzhbe/usrlinks/internal/models"
)

//go:embed migrations/*.sql
var migrations embed.FS

const uniqueViolationCode = "23505"

const userColumns = `id, name, email, password, created_at, updated_at`

// PostgresDB is a PostgreSQL-backed implementation of the user storage.
// Every operation runs on its own pooled connection which is released on return.
type PostgresDB struct {
	database          *sql.DB
	connectionTimeout time.Duration
}

type initOptions struct {
	DBPreReset bool
}

// InitOption defines a functional option for configuring database initialization.
type InitOption func(*initOptions)

// WithDBPreReset enables or disables dropping all public tables before migration.
// It is meant for test setups.
func WithDBPreReset(value bool) InitOption {
	return func(options *initOptions) {
		options.DBPreReset = value
	}
}

// New establishes a connection to the PostgreSQL database,
// runs schema migrations, and returns a configured PostgresDB instance.
func New(
	ctx context.Context,
	databaseDSN string,
	connectionTimeout time.Duration,
	optionsProto ...InitOption,
) (*PostgresDB, error) {
	options := &initOptions{
		DBPreReset: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	database, err := sql.Open("pgx", databaseDSN)
	if err != nil {
		return nil, err
	}

	result := &PostgresDB{
		database:          database,
		connectionTimeout: connectionTimeout,
	}

	if options.DBPreReset {
		if err := result.resetDB(ctx); err != nil {
			_ = database.Close()
			return nil,
				fmt.Errorf(
					"in internal/db/postgresdb/postgresdb.go/New(): error while `result.resetDB()` calling: %w",
					err,
				)
		}
	}

	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		_ = database.Close()
		return nil,
			fmt.Errorf(
				"in internal/db/postgresdb/postgresdb.go/New(): error while `goose.SetDialect()` calling: %w",
				err,
			)
	}

	if err := goose.UpContext(ctx, result.database, "migrations"); err != nil {
		_ = database.Close()
		return nil,
			fmt.Errorf(
				"in internal/db/postgresdb/postgresdb.go/New(): error while `goose.UpContext()` calling: %w",
				err,
			)
	}

	return result, nil
}

// ListUsers returns every user ordered by id.
func (db *PostgresDB) ListUsers(ctx context.Context) ([]models.User, error) {
	var result []models.User
	err := db.withConn(ctx, func(conn *sql.Conn) error {
		var err error
		result, err = queryUsers(ctx, conn, `SELECT `+userColumns+` FROM users ORDER BY id`)
		return err
	})
	if err != nil {
		return nil, wrapStorageError(err)
	}

	return result, nil
}

// GetUserByID returns models.ErrNotFound when no row has the id.
func (db *PostgresDB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return db.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetUserByEmail matches the email case-insensitively.
func (db *PostgresDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return db.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1) ORDER BY id LIMIT 1`, email)
}

// CreateUser inserts a new row and returns its id.
func (db *PostgresDB) CreateUser(ctx context.Context, name, email, passwordHash string) (int64, error) {
	var id int64
	err := db.withConn(ctx, func(conn *sql.Conn) error {
		return conn.QueryRowContext(
			ctx,
			`INSERT INTO users (name, email, password) VALUES ($1, $2, $3) RETURNING id`,
			name,
			email,
			passwordHash,
		).Scan(&id)
	})
	if err != nil {
		return 0, mapWriteError(err)
	}

	return id, nil
}

// UpdateUser writes the non-nil fields of patch and bumps updated_at.
func (db *PostgresDB) UpdateUser(ctx context.Context, id int64, patch models.UserPatch) error {
	setClauses := []string{}
	args := []any{}
	addClause := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	addClause("name", patch.Name)
	addClause("email", patch.Email)
	addClause("password", patch.PasswordHash)
	setClauses = append(setClauses, "updated_at = now()")
	args = append(args, id)

	query := fmt.Sprintf(
		`UPDATE users SET %s WHERE id = $%d`,
		strings.Join(setClauses, ", "),
		len(args),
	)

	var affected int64
	err := db.withConn(ctx, func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return mapWriteError(err)
	}
	if affected == 0 {
		return models.ErrNotFound
	}

	return nil
}

// DeleteUser reports whether a row was removed.
func (db *PostgresDB) DeleteUser(ctx context.Context, id int64) (bool, error) {
	var affected int64
	err := db.withConn(ctx, func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return false, wrapStorageError(err)
	}

	return affected > 0, nil
}

// SearchUsersByName returns users whose name contains term, ignoring case.
// LIKE wildcards inside term are matched literally.
func (db *PostgresDB) SearchUsersByName(ctx context.Context, term string) ([]models.User, error) {
	var result []models.User
	err := db.withConn(ctx, func(conn *sql.Conn) error {
		var err error
		result, err = queryUsers(
			ctx,
			conn,
			`SELECT `+userColumns+` FROM users WHERE name ILIKE $1 ESCAPE '\' ORDER BY id`,
			"%"+escapeLike(term)+"%",
		)
		return err
	})
	if err != nil {
		return nil, wrapStorageError(err)
	}

	return result, nil
}

func (db *PostgresDB) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := db.withConn(ctx, func(conn *sql.Conn) error {
		return conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	})
	if err != nil {
		return 0, wrapStorageError(err)
	}

	return count, nil
}

// Ping verifies connectivity with the PostgreSQL database within the configured timeout.
func (db *PostgresDB) Ping(ctx context.Context) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, db.connectionTimeout)
	defer cancel()

	return db.database.PingContext(ctxWithTimeout)
}

// Close closes the database connection and releases any associated resources.
func (db *PostgresDB) Close() error {
	return db.database.Close()
}

func (db *PostgresDB) getUser(ctx context.Context, query string, arg any) (*models.User, error) {
	var usr models.User
	err := db.withConn(ctx, func(conn *sql.Conn) error {
		return scanUser(conn.QueryRowContext(ctx, query, arg), &usr)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, wrapStorageError(err)
	}

	return &usr, nil
}

// withConn takes a connection from the pool for the duration of fn.
func (db *PostgresDB) withConn(ctx context.Context, fn func(conn *sql.Conn) error) error {
	conn, err := db.database.Conn(ctx)
	if err != nil {
		return fmt.Errorf(
			"in internal/db/postgresdb/postgresdb.go/withConn(): error while `db.database.Conn()` calling: %w",
			err,
		)
	}
	defer conn.Close()

	return fn(conn)
}

func (db *PostgresDB) resetDB(ctx context.Context) error {
	_, err := db.database.ExecContext(
		ctx,
		`
			DO $$
			DECLARE
				r RECORD;
			BEGIN
				FOR r IN (SELECT tablename FROM pg_tables WHERE schemaname = 'public') LOOP
					EXECUTE 'DROP TABLE IF EXISTS ' || quote_ident(r.tablename) || ' CASCADE';
				END LOOP;
			END $$;
		`,
	)
	if err != nil {
		return fmt.Errorf(
			"in internal/db/postgresdb/postgresdb.go/resetDB(): error while `db.database.ExecContext()` calling: %w",
			err,
		)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner, usr *models.User) error {
	return row.Scan(&usr.ID, &usr.Name, &usr.Email, &usr.PasswordHash, &usr.CreatedAt, &usr.UpdatedAt)
}

func queryUsers(ctx context.Context, conn *sql.Conn, query string, args ...any) ([]models.User, error) {
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []models.User{}
	for rows.Next() {
		var usr models.User
		if err := scanUser(rows, &usr); err != nil {
			return nil, err
		}
		result = append(result, usr)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		if strings.Contains(pgErr.ConstraintName, "email") {
			return models.ErrEmailTaken
		}
		return models.ErrConflict
	}

	return wrapStorageError(err)
}

func wrapStorageError(err error) error {
	return fmt.Errorf("%w: %w", models.ErrStorage, err)
}

func escapeLike(term string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
}
