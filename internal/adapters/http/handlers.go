package web

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/csrf"

	"gritgym/internal/adapters/http/middleware"
	"gritgym/internal/application/orchestrators"
	"gritgym/internal/domain/payment"
)

//go:embed templates/*.html
var templateFS embed.FS

var baseFuncs = template.FuncMap{
	"add": func(a, b int) int { return a + b },
	"sub": func(a, b int) int { return a - b },
}

// pageTemplates holds one parsed layout+page set per page template.
var pageTemplates = mustParsePages(
	"login.html",
	"payments.html",
	"payment_detail.html",
	"expiry.html",
	"members.html",
	"analytics.html",
)

func mustParsePages(names ...string) map[string]*template.Template {
	out := make(map[string]*template.Template, len(names))
	for _, name := range names {
		funcs := template.FuncMap{
			"csrfField":    func() template.HTML { return "" },
			"currentEmail": func() string { return "" },
			"isLoggedIn":   func() bool { return false },
		}
		for k, v := range baseFuncs {
			funcs[k] = v
		}
		out[name] = template.Must(template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name))
	}
	return out
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("internal_error", "error", err.Error())
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// mutationStatus maps a mutation error to an HTTP status and operator-facing text.
func mutationStatus(err error) (int, string) {
	switch {
	case errors.Is(err, payment.ErrNotFound):
		return http.StatusNotFound, capitalize(err.Error())
	case errors.Is(err, payment.ErrInvalidTransition),
		errors.Is(err, payment.ErrNotApproved),
		errors.Is(err, payment.ErrExpiryInPast),
		errors.Is(err, payment.ErrInvalidDuration),
		errors.Is(err, orchestrators.ErrInvalidDate),
		errors.Is(err, orchestrators.ErrInvalidInput):
		return http.StatusBadRequest, capitalize(err.Error())
	default:
		slog.Error("internal_error", "error", err.Error())
		return http.StatusInternalServerError, "Could not update the payment. Please try again."
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// renderTemplate renders a page inside the layout with per-request helpers.
func renderTemplate(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	base, ok := pageTemplates[name]
	if !ok {
		internalError(w, errors.New("unknown template "+name))
		return
	}
	tpl, err := base.Clone()
	if err != nil {
		internalError(w, err)
		return
	}
	sess, loggedIn := middleware.GetSessionFromContext(r.Context())
	tpl.Funcs(template.FuncMap{
		"csrfField":    func() template.HTML { return csrf.TemplateField(r) },
		"currentEmail": func() string { return sess.Email },
		"isLoggedIn":   func() bool { return loggedIn },
	})

	var buf strings.Builder
	if err := tpl.Execute(&buf, data); err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(buf.String()))
}
