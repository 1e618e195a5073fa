package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/hongminglow/profile-auth/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = parsePages("index", "register", "login", "profile")

// flashMessages maps the msg query parameter onto display text.
var flashMessages = map[string]string{
	"reg_success":    "Registration successful. You can log in now.",
	"login_success":  "You are logged in.",
	"logout_success": "You have been logged out.",
	"auth_required":  "Please log in to continue.",
	"update_success": "Profile updated.",
	"update_error":   "The profile could not be updated. Please try again.",
}

type pageData struct {
	Title   string
	Message string
	Error   string
	Form    map[string]string
	User    *models.User
	Profile *models.Profile
}

func parsePages(names ...string) map[string]*template.Template {
	funcs := template.FuncMap{
		"str": func(v *string) string {
			if v == nil {
				return ""
			}
			return *v
		},
		"num": func(v *int) string {
			if v == nil {
				return ""
			}
			return strconv.Itoa(*v)
		},
	}
	out := make(map[string]*template.Template, len(names))
	for _, name := range names {
		out[name] = template.Must(template.New(name).Funcs(funcs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html"))
	}
	return out
}

// render executes into a buffer first so a template error never leaves a
// half-written page.
func render(w http.ResponseWriter, logger *zap.Logger, status int, page string, data pageData) {
	tmpl, ok := pages[page]
	if !ok {
		logger.Error("render: unknown page", zap.String("page", page))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		logger.Error("render: execute template", zap.String("page", page), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		logger.Debug("render: write response", zap.Error(err))
	}
}

func flash(r *http.Request) string {
	return flashMessages[r.URL.Query().Get("msg")]
}

// HomeHandler serves the landing page.
type HomeHandler struct {
	logger *zap.Logger
}

func NewHomeHandler(logger *zap.Logger) *HomeHandler {
	return &HomeHandler{logger: logger}
}

// Register wires the handler into a ServeMux.
func (h *HomeHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/", h.handle)
}

func (h *HomeHandler) handle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w, http.MethodGet, http.MethodHead)
		return
	}
	render(w, h.logger, http.StatusOK, "index", pageData{Title: "Welcome", Message: flash(r)})
}
