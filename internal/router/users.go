package router

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/patric-chuzhbe/usrlinks/internal/ipchecker"
	"github.com/patric-chuzhbe/usrlinks/internal/logger"
	"github.com/patric-chuzhbe/usrlinks/internal/metrics"
	"github.com/patric-chuzhbe/usrlinks/internal/models"
	"github.com/patric-chuzhbe/usrlinks/internal/service"
	"github.com/patric-chuzhbe/usrlinks/internal/validate"
)

type usersService interface {
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, rawID string) (*models.User, error)
	Create(ctx context.Context, req models.CreateUserRequest) (int64, error)
	Update(ctx context.Context, rawID string, req models.UpdateUserRequest) error
	Delete(ctx context.Context, rawID string) error
	Search(ctx context.Context, rawTerm string) (string, []models.User, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.User, error)
	Ping(ctx context.Context) error
}

// UsersRouter holds the handlers of the user management API.
type UsersRouter struct {
	users   usersService
	metrics *metrics.Metrics
}

var (
	createErrors = errorMessages{notFound: "User not found", conflict: "User creation failed"}
	updateErrors = errorMessages{notFound: "User not found", conflict: "Update failed"}
)

// NewUsers returns the router of the user management API.
func NewUsers(users usersService, m *metrics.Metrics, checker *ipchecker.IPChecker) *chi.Mux {
	rt := &UsersRouter{
		users:   users,
		metrics: m,
	}

	router := newMux(m, checker)
	router.Get(`/`, rt.GetHome)
	router.Get(`/ping`, rt.GetPing)
	router.Get(`/users`, rt.GetUsers)
	router.Post(`/users`, rt.PostUsers)
	router.Get(`/user/{id}`, rt.GetUser)
	router.Put(`/user/{id}`, rt.PutUser)
	router.Delete(`/user/{id}`, rt.DeleteUser)
	router.Get(`/search`, rt.GetSearch)
	router.Post(`/login`, rt.PostLogin)

	return router
}

func (rt *UsersRouter) GetHome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("User Management System"))
}

// GetPing reports whether the storage is reachable.
func (rt *UsersRouter) GetPing(w http.ResponseWriter, r *http.Request) {
	if err := rt.users.Ping(r.Context()); err != nil {
		logger.Log.Errorw("storage ping failed", "err", err)
		writeError(w, http.StatusInternalServerError, msgDatabaseError)
		return
	}
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "pong"})
}

func (rt *UsersRouter) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := rt.users.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err, createErrors)
		return
	}

	writeJSON(w, http.StatusOK, models.UsersResponse{Users: users, Count: len(users)})
}

func (rt *UsersRouter) GetUser(w http.ResponseWriter, r *http.Request) {
	usr, err := rt.users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err, createErrors)
		return
	}

	writeJSON(w, http.StatusOK, models.UserResponse{User: *usr})
}

func (rt *UsersRouter) PostUsers(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if !decodeJSONRequest(w, r, &req) {
		return
	}

	id, err := rt.users.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err, createErrors)
		return
	}

	rt.metrics.Inc(metrics.EventUserCreated)
	logger.Log.Infow("user created", "user_id", id)
	writeJSON(w, http.StatusCreated, models.CreateUserResponse{Message: "User created successfully", UserID: id})
}

// PutUser validates the id before looking at the body.
func (rt *UsersRouter) PutUser(w http.ResponseWriter, r *http.Request) {
	rawID := chi.URLParam(r, "id")
	if !validate.UserID(rawID) {
		writeError(w, http.StatusBadRequest, service.MsgInvalidUserID)
		return
	}

	var req models.UpdateUserRequest
	if !decodeJSONRequest(w, r, &req) {
		return
	}

	if err := rt.users.Update(r.Context(), rawID, req); err != nil {
		writeServiceError(w, r, err, updateErrors)
		return
	}

	logger.Log.Infow("user updated", "user_id", rawID)
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "User updated successfully"})
}

func (rt *UsersRouter) DeleteUser(w http.ResponseWriter, r *http.Request) {
	rawID := chi.URLParam(r, "id")
	if err := rt.users.Delete(r.Context(), rawID); err != nil {
		writeServiceError(w, r, err, updateErrors)
		return
	}

	logger.Log.Infow("user deleted", "user_id", rawID)
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "User deleted successfully"})
}

func (rt *UsersRouter) GetSearch(w http.ResponseWriter, r *http.Request) {
	term, users, err := rt.users.Search(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		writeServiceError(w, r, err, createErrors)
		return
	}

	writeJSON(w, http.StatusOK, models.SearchUsersResponse{Users: users, Count: len(users), SearchTerm: term})
}

func (rt *UsersRouter) PostLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeJSONRequest(w, r, &req) {
		return
	}

	usr, err := rt.users.Login(r.Context(), req)
	if errors.Is(err, models.ErrInvalidCredentials) {
		rt.metrics.Inc(metrics.EventLoginFailed)
		logger.Log.Warnw("failed login attempt")
		writeJSON(w, http.StatusUnauthorized, models.LoginFailedResponse{Status: "failed", Error: "Invalid credentials"})
		return
	}
	if err != nil {
		writeServiceError(w, r, err, createErrors)
		return
	}

	logger.Log.Infow("successful login", "user_id", usr.ID)
	writeJSON(w, http.StatusOK, models.LoginResponse{Status: "success", UserID: usr.ID, Name: usr.Name})
}
