package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/rs/cors"
	"golang.org/x/text/language"

	"github.com/DAVIDafergan/tatpro-intake/internal/admin"
	"github.com/DAVIDafergan/tatpro-intake/internal/domain"
	"github.com/DAVIDafergan/tatpro-intake/internal/ports"
	"github.com/DAVIDafergan/tatpro-intake/internal/pricing"
	"github.com/DAVIDafergan/tatpro-intake/internal/report"
	"github.com/DAVIDafergan/tatpro-intake/internal/templates"
)

// Response messages of the public API. Clients match on them, so they are
// not localized.
const (
	msgSaved        = "נשלח בהצלחה!"
	msgSaveFailed   = "תקלה בשמירה"
	msgLoadFailed   = "תקלה בטעינת נתונים"
	msgBadRequest   = "בקשה לא תקינה"
	msgWrongCode    = "קוד גישה שגוי."
	msgLoginFailed  = "תקלה באימות"
	msgDeleted      = "נמחק בהצלחה"
	msgNotFound     = "הרשומה לא נמצאה"
	msgUnauthorized = "נדרשת הרשאת מנהל"
)

// CookieName carries the admin token for browser sessions.
const CookieName = "admin_token"

const maxBodyBytes = 1 << 20

type Handler struct {
	store     ports.DocumentStore
	checker   ports.AdminChecker
	tokens    *admin.Tokens
	reports   []ports.ReportWriter
	table     *pricing.Table
	tag       language.Tag
	staticDir string
}

type Option func(*Handler)

// WithReports registers one export endpoint per writer, keyed by its extension.
func WithReports(rw ...ports.ReportWriter) Option {
	return func(h *Handler) { h.reports = append(h.reports, rw...) }
}

func WithLocale(tag language.Tag) Option { return func(h *Handler) { h.tag = tag } }
func WithStaticDir(dir string) Option    { return func(h *Handler) { h.staticDir = dir } }
func WithTable(t *pricing.Table) Option  { return func(h *Handler) { h.table = t } }

func New(store ports.DocumentStore, checker ports.AdminChecker, tokens *admin.Tokens, opts ...Option) *Handler {
	h := &Handler{
		store:   store,
		checker: checker,
		tokens:  tokens,
		table:   pricing.Default(),
		tag:     language.Hebrew,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/submit", h.submit)
	mux.HandleFunc("GET /api/all-forms", h.listAll)
	mux.HandleFunc("POST /api/admin-login", h.adminLogin)
	mux.Handle("DELETE /api/forms/{id}", h.requireAdmin(h.deleteForm))
	for _, rw := range h.reports {
		mux.Handle("GET /api/admin/export."+rw.Extension(), h.requireAdmin(h.export(rw)))
	}
	mux.HandleFunc("GET /admin/leads", h.leads)
	mux.HandleFunc("GET /healthz", h.healthz)
	mux.HandleFunc("GET /", h.spa)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})
	return c.Handler(mux)
}

type errorBody struct {
	Error string `json:"error"`
}

type messageBody struct {
	Message string `json:"message"`
}

type loginBody struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
	Message string `json:"message,omitempty"`
}

// submit stores any JSON object verbatim. Arrays, scalars and null are
// rejected so every stored document has a field set.
func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	var doc domain.Document
	if err := dec.Decode(&doc); err != nil || doc == nil {
		writeJSON(w, http.StatusBadRequest, errorBody{msgBadRequest})
		return
	}
	d, err := h.store.Insert(r.Context(), doc)
	if err != nil {
		slog.Error("save submission", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{msgSaveFailed})
		return
	}
	slog.Info("new form received", "id", d.ID)
	writeJSON(w, http.StatusOK, messageBody{msgSaved})
}

func (h *Handler) listAll(w http.ResponseWriter, r *http.Request) {
	docs, err := h.store.List(r.Context())
	if err != nil {
		slog.Error("list submissions", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{msgLoadFailed})
		return
	}
	out := make([]domain.Document, len(docs))
	for i, d := range docs {
		out[i] = d.Flatten()
	}
	writeJSON(w, http.StatusOK, out)
}

// adminLogin accepts {"code": "..."} as JSON or as a form field so the leads
// page login form works with and without script.
func (h *Handler) adminLogin(w http.ResponseWriter, r *http.Request) {
	code, form, err := loginCode(w, r)
	if err != nil {
		h.loginRejected(w, r, form, http.StatusBadRequest, msgBadRequest, textBadRequest)
		return
	}
	ok, err := h.checker.Check(r.Context(), code)
	if err != nil {
		slog.Error("check admin code", "err", err)
		h.loginRejected(w, r, form, http.StatusInternalServerError, msgLoginFailed, textLoginFailed)
		return
	}
	if !ok {
		slog.Warn("admin login rejected", "remote", r.RemoteAddr)
		h.loginRejected(w, r, form, http.StatusUnauthorized, msgWrongCode, textWrongCode)
		return
	}
	token, err := h.tokens.Issue()
	if err != nil {
		slog.Error("issue admin token", "err", err)
		h.loginRejected(w, r, form, http.StatusInternalServerError, msgLoginFailed, textLoginFailed)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokens.TTL() / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   r.TLS != nil,
	})
	switch {
	case isHTMX(r):
		w.Header().Set("HX-Redirect", "/admin/leads")
		writeJSON(w, http.StatusOK, loginBody{Success: true})
	case form:
		http.Redirect(w, r, "/admin/leads", http.StatusSeeOther)
	default:
		writeJSON(w, http.StatusOK, loginBody{Success: true, Token: token})
	}
}

// loginRejected answers in a shape the caller can show. htmx only swaps 2xx
// responses, so its fragment goes out as 200.
func (h *Handler) loginRejected(w http.ResponseWriter, r *http.Request, form bool, status int, apiMsg, textKey string) {
	switch {
	case isHTMX(r):
		render(w, r, templates.LoginError(h.text(textKey)))
	case form:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		render(w, r, templates.Login(h.lang(), h.text(textAdminAccess), h.text(textEnter), h.text(textKey)))
	default:
		writeJSON(w, status, loginBody{Message: apiMsg})
	}
}

// loginCode reads the code and reports whether it came from a form post.
func loginCode(w http.ResponseWriter, r *http.Request) (code string, form bool, err error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/x-www-form-urlencoded" || ct == "multipart/form-data" {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		return r.PostFormValue("code"), true, nil
	}
	var body struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		return "", false, err
	}
	return body.Code, false, nil
}

func isHTMX(r *http.Request) bool { return r.Header.Get("HX-Request") == "true" }

func (h *Handler) deleteForm(w http.ResponseWriter, r *http.Request) {
	err := h.store.Delete(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, ports.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{msgNotFound})
	case err != nil:
		slog.Error("delete submission", "id", r.PathValue("id"), "err", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{msgSaveFailed})
	default:
		slog.Info("submission deleted", "id", r.PathValue("id"))
		writeJSON(w, http.StatusOK, messageBody{msgDeleted})
	}
}

func (h *Handler) export(rw ports.ReportWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docs, err := h.store.List(r.Context())
		if err != nil {
			slog.Error("export submissions", "format", rw.Extension(), "err", err)
			writeJSON(w, http.StatusInternalServerError, errorBody{msgLoadFailed})
			return
		}
		// Render fully before writing headers so a failure can still be a 500.
		var buf bytes.Buffer
		if err := rw.Write(&buf, docs); err != nil {
			slog.Error("render export", "format", rw.Extension(), "err", err)
			writeJSON(w, http.StatusInternalServerError, errorBody{msgLoadFailed})
			return
		}
		w.Header().Set("Content-Type", rw.ContentType())
		w.Header().Set("Content-Disposition", `attachment; filename="leads.`+rw.Extension()+`"`)
		w.Write(buf.Bytes())
	}
}

func (h *Handler) leads(w http.ResponseWriter, r *http.Request) {
	lang := h.lang()
	if !h.authorized(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusUnauthorized)
		render(w, r, templates.Login(lang, h.text(textAdminAccess), h.text(textEnter), ""))
		return
	}
	docs, err := h.store.List(r.Context())
	if err != nil {
		slog.Error("list submissions", "err", err)
		http.Error(w, msgLoadFailed, http.StatusInternalServerError)
		return
	}
	text := templates.LeadsText{
		Title:   report.Title(h.tag),
		Empty:   h.text(textNoLeads),
		Confirm: h.text(textConfirmDelete),
	}
	render(w, r, templates.Leads(lang, text, report.Headers(h.tag), report.Leads(docs, h.table, h.tag)))
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// spa serves files from the client build and falls back to its index.html
// so client-side routes survive a reload.
func (h *Handler) spa(w http.ResponseWriter, r *http.Request) {
	if h.staticDir != "" {
		dir := http.Dir(h.staticDir)
		if serveFile(w, r, dir, path.Clean("/"+r.URL.Path)) || serveFile(w, r, dir, "/index.html") {
			return
		}
	}
	render(w, r, templates.Entry(h.lang(), "TAT PRO", h.text(textNoBuild)))
}

func serveFile(w http.ResponseWriter, r *http.Request, dir http.Dir, name string) bool {
	f, err := dir.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil || st.IsDir() {
		return false
	}
	http.ServeContent(w, r, st.Name(), st.ModTime(), f)
	return true
}

// requireAdmin admits requests carrying a valid token as a bearer header or
// in the session cookie.
func (h *Handler) requireAdmin(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.authorized(r) {
			writeJSON(w, http.StatusUnauthorized, errorBody{msgUnauthorized})
			return
		}
		next(w, r)
	})
}

func (h *Handler) authorized(r *http.Request) bool {
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		c, err := r.Cookie(CookieName)
		if err != nil {
			return false
		}
		raw = c.Value
	}
	return h.tokens.Verify(strings.TrimSpace(raw)) == nil
}

func (h *Handler) lang() string {
	base, _ := h.tag.Base()
	return base.String()
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), 500)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write response", "err", err)
	}
}
