package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/hongminglow/profile-auth/internal/auth"
	"github.com/hongminglow/profile-auth/internal/http/respond"
	"github.com/hongminglow/profile-auth/internal/models"
	"github.com/hongminglow/profile-auth/internal/models/dto"
	"github.com/hongminglow/profile-auth/internal/storage"
)

const (
	loginPath   = "/auth/login"
	profilePath = "/auth/profile"

	maxFormBytes = 1 << 20

	msgUsernameTaken      = "This username is already registered!"
	msgInvalidCredentials = "Incorrect username or password!"
	msgFieldsRequired     = "Name, surname, username and password are required."
	msgInternal           = "Something went wrong. Please try again."
)

// AuthHandler owns the register/login/logout/profile pages.
type AuthHandler struct {
	store    storage.UserStore
	hasher   *auth.PasswordHasher
	sessions auth.Sessions
	logger   *zap.Logger

	// dummyHash is compared against when the username is unknown so both
	// login failure paths cost one bcrypt comparison.
	dummyHash string
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(store storage.UserStore, hasher *auth.PasswordHasher, sessions auth.Sessions, logger *zap.Logger) *AuthHandler {
	dummy, err := hasher.Hash("dummy-password-for-unknown-users")
	if err != nil {
		logger.Warn("auth: could not prepare dummy hash", zap.Error(err))
	}
	return &AuthHandler{
		store:     store,
		hasher:    hasher,
		sessions:  sessions,
		logger:    logger,
		dummyHash: dummy,
	}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/auth/register", h.handleRegister)
	mux.HandleFunc(loginPath, h.handleLogin)
	mux.HandleFunc("/auth/logout", h.handleLogout)
	mux.HandleFunc(profilePath, h.handleProfile)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		render(w, h.logger, http.StatusOK, "register", pageData{Title: "Register", Message: flash(r)})
	case http.MethodPost:
		h.register(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		render(w, h.logger, http.StatusBadRequest, "register", pageData{Title: "Register", Error: msgFieldsRequired})
		return
	}
	req := dto.RegisterFromForm(r)
	page := pageData{
		Title: "Register",
		Form:  map[string]string{"name": req.Name, "surname": req.Surname, "username": req.Username},
	}
	if req.Name == "" || req.Surname == "" || req.Username == "" || req.Password == "" {
		page.Error = msgFieldsRequired
		render(w, h.logger, http.StatusUnprocessableEntity, "register", page)
		return
	}

	// The lookup gives the common case a friendly answer; the unique
	// constraint behind CreateUser is what actually guarantees uniqueness.
	if _, err := h.store.FindByUsername(r.Context(), req.Username); err == nil {
		page.Error = msgUsernameTaken
		render(w, h.logger, http.StatusOK, "register", page)
		return
	} else if !errors.Is(err, storage.ErrNotFound) {
		h.logger.Error("register: lookup username", zap.String("username", req.Username), zap.Error(err))
		page.Error = msgInternal
		render(w, h.logger, http.StatusInternalServerError, "register", page)
		return
	}

	passwordHash, err := h.hasher.Hash(req.Password)
	if err != nil {
		h.logger.Error("register: hash password", zap.Error(err))
		page.Error = msgInternal
		render(w, h.logger, http.StatusInternalServerError, "register", page)
		return
	}

	created, err := h.store.CreateUser(r.Context(), models.User{
		Name:         req.Name,
		Surname:      req.Surname,
		Username:     req.Username,
		PasswordHash: passwordHash,
	})
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrAlreadyExists):
			page.Error = msgUsernameTaken
			render(w, h.logger, http.StatusOK, "register", page)
		default:
			h.logger.Error("register: create user", zap.String("username", req.Username), zap.Error(err))
			page.Error = msgInternal
			render(w, h.logger, http.StatusInternalServerError, "register", page)
		}
		return
	}

	h.logger.Info("user registered", zap.Int64("user_id", created.ID), zap.String("username", created.Username))
	respond.Redirect(w, r, loginPath, "reg_success", http.StatusSeeOther)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		render(w, h.logger, http.StatusOK, "login", pageData{Title: "Log in", Message: flash(r)})
	case http.MethodPost:
		h.login(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		render(w, h.logger, http.StatusBadRequest, "login", pageData{Title: "Log in", Error: msgInvalidCredentials})
		return
	}
	req := dto.LoginFromForm(r)
	// nothing from the request is echoed so both failure modes render the same page
	page := pageData{Title: "Log in"}

	user, err := h.store.FindByUsername(r.Context(), req.Username)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		h.hasher.Verify(req.Password, h.dummyHash)
		page.Error = msgInvalidCredentials
		render(w, h.logger, http.StatusUnauthorized, "login", page)
		return
	case err != nil:
		h.logger.Error("login: fetch user", zap.String("username", req.Username), zap.Error(err))
		page.Error = msgInternal
		render(w, h.logger, http.StatusInternalServerError, "login", page)
		return
	}

	if !h.hasher.Verify(req.Password, user.PasswordHash) {
		page.Error = msgInvalidCredentials
		render(w, h.logger, http.StatusUnauthorized, "login", page)
		return
	}

	if err := h.sessions.Issue(r.Context(), w, user.ID); err != nil {
		h.logger.Error("login: issue session", zap.Int64("user_id", user.ID), zap.Error(err))
		page.Error = msgInternal
		render(w, h.logger, http.StatusInternalServerError, "login", page)
		return
	}

	h.logger.Info("user logged in", zap.Int64("user_id", user.ID))
	respond.Redirect(w, r, profilePath, "login_success", http.StatusFound)
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	if err := h.sessions.Revoke(w, r); err != nil {
		h.logger.Warn("logout: revoke session", zap.Error(err))
	}
	respond.Redirect(w, r, loginPath, "logout_success", http.StatusFound)
}

func (h *AuthHandler) handleProfile(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.viewProfile(w, r)
	case http.MethodPost:
		h.updateProfile(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (h *AuthHandler) viewProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.sessions.Read(r)
	if !ok {
		respond.Redirect(w, r, loginPath, "auth_required", http.StatusFound)
		return
	}

	user, err := h.store.FindByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// stale session: the user behind the cookie is gone
			if err := h.sessions.Revoke(w, r); err != nil {
				h.logger.Warn("profile: revoke stale session", zap.Error(err))
			}
			respond.Redirect(w, r, loginPath, "", http.StatusFound)
			return
		}
		h.logger.Error("profile: fetch user", zap.Int64("user_id", userID), zap.Error(err))
		http.Error(w, msgInternal, http.StatusInternalServerError)
		return
	}

	render(w, h.logger, http.StatusOK, "profile", pageData{
		Title:   "Profile",
		Message: flash(r),
		User:    &user,
		Profile: user.Profile,
	})
}

func (h *AuthHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.sessions.Read(r)
	if !ok {
		respond.Redirect(w, r, loginPath, "", http.StatusFound)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		h.logger.Warn("profile: parse form", zap.Int64("user_id", userID), zap.Error(err))
		respond.Redirect(w, r, profilePath, "update_error", http.StatusFound)
		return
	}
	fields, err := dto.ProfileFromForm(r)
	if err != nil {
		h.logger.Warn("profile: invalid form", zap.Int64("user_id", userID), zap.Error(err))
		respond.Redirect(w, r, profilePath, "update_error", http.StatusFound)
		return
	}

	if err := h.store.UpdateProfile(r.Context(), userID, fields); err != nil {
		var pe *storage.PersistenceError
		switch {
		case errors.Is(err, storage.ErrNotFound):
			h.logger.Warn("profile: no profile row", zap.Int64("user_id", userID))
		case errors.As(err, &pe):
			h.logger.Error("profile: persistence failure", zap.Int64("user_id", userID), zap.String("op", pe.Op), zap.Error(pe.Err))
		default:
			h.logger.Error("profile: update failed", zap.Int64("user_id", userID), zap.Error(err))
		}
		respond.Redirect(w, r, profilePath, "update_error", http.StatusFound)
		return
	}

	respond.Redirect(w, r, profilePath, "update_success", http.StatusFound)
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
}
