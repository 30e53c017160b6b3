package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/patric-chuzhbe/usrlinks/internal/logger"
	"github.com/patric-chuzhbe/usrlinks/internal/models"
	"github.com/patric-chuzhbe/usrlinks/internal/passwords"
	"github.com/patric-chuzhbe/usrlinks/internal/validate"
)

// Client-facing messages of the user management API.
const (
	MsgMissingCreateFields = "Missing required fields: name, password and email"
	MsgMissingUpdateFields = "At least one field (name, email or password) is required"
	MsgInvalidName         = "Invalid name (1-100 characters required)"
	MsgInvalidEmail        = "Invalid email format"
	MsgShortPassword       = "Password must be at least 6 characters"
	MsgInvalidUserID       = "Invalid user ID"
	MsgMissingSearchTerm   = "Please provide a name to search (min 1 char required)"
	MsgSearchTermTooLong   = "Search term too long (maximum 100 characters)"
	MsgMissingCredentials  = "Email and password are required"
)

const maxSearchTermLength = 100

type userReader interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	SearchUsersByName(ctx context.Context, term string) ([]models.User, error)
	CountUsers(ctx context.Context) (int64, error)
}

type userWriter interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (int64, error)
	UpdateUser(ctx context.Context, id int64, patch models.UserPatch) error
	DeleteUser(ctx context.Context, id int64) (bool, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type userStorage interface {
	userReader
	userWriter
	pinger
}

type passwordCodec interface {
	Hash(password string) (string, error)
	Verify(password, stored string) bool
}

// Users implements the user management operations on top of a user storage.
type Users struct {
	db    userStorage
	codec passwordCodec
}

// UsersOption configures Users.
type UsersOption func(*Users)

// WithPasswordCodec replaces the default password codec.
func WithPasswordCodec(codec passwordCodec) UsersOption {
	return func(u *Users) {
		u.codec = codec
	}
}

func NewUsers(db userStorage, optionsProto ...UsersOption) *Users {
	result := &Users{
		db:    db,
		codec: passwords.New(passwords.DefaultIterations),
	}
	for _, protoOption := range optionsProto {
		protoOption(result)
	}

	return result
}

func (s *Users) List(ctx context.Context) ([]models.User, error) {
	return s.db.ListUsers(ctx)
}

// Get returns the user with the decimal id rawID.
func (s *Users) Get(ctx context.Context, rawID string) (*models.User, error) {
	id, err := parseUserID(rawID)
	if err != nil {
		return nil, err
	}

	return s.db.GetUserByID(ctx, id)
}

// Create validates req, hashes the password and stores the user with trimmed name and email.
func (s *Users) Create(ctx context.Context, req models.CreateUserRequest) (int64, error) {
	if isAbsent(req.Name, req.Mistyped, "name") ||
		isAbsent(req.Email, req.Mistyped, "email") ||
		isAbsent(req.Password, req.Mistyped, "password") {
		return 0, models.NewValidationError(MsgMissingCreateFields)
	}
	if err := checkUserFields(req.Name, req.Email, req.Password, req.Mistyped); err != nil {
		return 0, err
	}

	name := strings.TrimSpace(*req.Name)
	email := strings.TrimSpace(*req.Email)

	hash, err := s.codec.Hash(*req.Password)
	if err != nil {
		return 0, fmt.Errorf(
			"in internal/service/users.go/Create(): error while `s.codec.Hash()` calling: %w",
			err,
		)
	}

	return s.db.CreateUser(ctx, name, email, hash)
}

// Update applies the provided fields of req to the user with id rawID.
func (s *Users) Update(ctx context.Context, rawID string, req models.UpdateUserRequest) error {
	id, err := parseUserID(rawID)
	if err != nil {
		return err
	}

	// Empty strings count as absent fields.
	if isAbsent(req.Name, req.Mistyped, "name") &&
		isAbsent(req.Email, req.Mistyped, "email") &&
		isAbsent(req.Password, req.Mistyped, "password") {
		return models.NewValidationError(MsgMissingUpdateFields)
	}

	patch := models.UserPatch{}
	if !isBlank(req.Name) {
		name := strings.TrimSpace(*req.Name)
		patch.Name = &name
	}
	if !isBlank(req.Email) {
		email := strings.TrimSpace(*req.Email)
		patch.Email = &email
	}
	var password *string
	if !isBlank(req.Password) {
		password = req.Password
	}
	if err := checkUserFields(patch.Name, patch.Email, password, req.Mistyped); err != nil {
		return err
	}

	if password != nil {
		hash, err := s.codec.Hash(*password)
		if err != nil {
			return fmt.Errorf(
				"in internal/service/users.go/Update(): error while `s.codec.Hash()` calling: %w",
				err,
			)
		}
		patch.PasswordHash = &hash
	}

	return s.db.UpdateUser(ctx, id, patch)
}

// Delete removes the user with id rawID or returns models.ErrNotFound.
func (s *Users) Delete(ctx context.Context, rawID string) error {
	id, err := parseUserID(rawID)
	if err != nil {
		return err
	}

	deleted, err := s.db.DeleteUser(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return models.ErrNotFound
	}

	return nil
}

// Search returns the trimmed term together with the users whose name contains it.
func (s *Users) Search(ctx context.Context, rawTerm string) (string, []models.User, error) {
	term := strings.TrimSpace(rawTerm)
	if term == "" {
		return "", nil, models.NewValidationError(MsgMissingSearchTerm)
	}
	if utf8.RuneCountInString(term) > maxSearchTermLength {
		return "", nil, models.NewValidationError(MsgSearchTermTooLong)
	}

	users, err := s.db.SearchUsersByName(ctx, term)
	if err != nil {
		return "", nil, err
	}

	return term, users, nil
}

// Login checks the credentials. An unknown email and a wrong password both
// yield models.ErrInvalidCredentials.
func (s *Users) Login(ctx context.Context, req models.LoginRequest) (*models.User, error) {
	if isAbsent(req.Email, req.Mistyped, "email") || isAbsent(req.Password, req.Mistyped, "password") {
		return nil, models.NewValidationError(MsgMissingCredentials)
	}
	if req.Mistyped["email"] {
		return nil, models.NewValidationError(MsgInvalidEmail)
	}
	if req.Mistyped["password"] {
		return nil, models.ErrInvalidCredentials
	}

	email := strings.TrimSpace(*req.Email)
	if !validate.Email(email) {
		return nil, models.NewValidationError(MsgInvalidEmail)
	}

	usr, err := s.db.GetUserByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !s.codec.Verify(*req.Password, usr.PasswordHash) {
		return nil, models.ErrInvalidCredentials
	}

	return usr, nil
}

func (s *Users) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

type sampleUser struct {
	name, email, password string
}

var sampleUsers = []sampleUser{
	{"John Doe", "john@example.com", "password123"},
	{"Jane Smith", "jane@example.com", "secret456"},
	{"Bob Johnson", "bob@example.com", "qwerty789"},
}

// SeedSampleUsers inserts the demo users when the storage holds no users yet.
// It returns the number of inserted users.
func (s *Users) SeedSampleUsers(ctx context.Context) (int, error) {
	count, err := s.db.CountUsers(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	inserted := 0
	for _, sample := range sampleUsers {
		hash, err := s.codec.Hash(sample.password)
		if err != nil {
			return inserted, err
		}
		if _, err := s.db.CreateUser(ctx, sample.name, sample.email, hash); err != nil {
			if errors.Is(err, models.ErrEmailTaken) {
				logger.Log.Debugw("sample user already exists", "email", sample.email)
				continue
			}
			return inserted, fmt.Errorf(
				"in internal/service/users.go/SeedSampleUsers(): error while `s.db.CreateUser()` calling: %w",
				err,
			)
		}
		inserted++
	}

	return inserted, nil
}

func isBlank(s *string) bool {
	return s == nil || *s == ""
}

func isAbsent(s *string, mistyped models.MistypedFields, field string) bool {
	return isBlank(s) && !mistyped[field]
}

func parseUserID(rawID string) (int64, error) {
	if !validate.UserID(rawID) {
		return 0, models.NewValidationError(MsgInvalidUserID)
	}
	id, _ := strconv.ParseInt(rawID, 10, 64)

	return id, nil
}

// checkUserFields validates the fields that are present, in the order name, email, password.
// A mistyped field fails its own check.
func checkUserFields(name, email, password *string, mistyped models.MistypedFields) error {
	if mistyped["name"] || (name != nil && !validate.Name(*name)) {
		return models.NewValidationError(MsgInvalidName)
	}
	if mistyped["email"] || (email != nil && !validate.Email(strings.TrimSpace(*email))) {
		return models.NewValidationError(MsgInvalidEmail)
	}
	if mistyped["password"] || (password != nil && !validate.Password(*password)) {
		return models.NewValidationError(MsgShortPassword)
	}

	return nil
}
