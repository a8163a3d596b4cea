package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"paper-analyzer/internal/document"
	"paper-analyzer/internal/httputil"
	"paper-analyzer/internal/llm"
	"paper-analyzer/internal/report"
	"paper-analyzer/internal/session"
)

const sessionCookie = "paper_session"

type sessionForm struct {
	Provider string `validate:"required,oneof=openai openrouter gemini"`
	Model    string `validate:"required"`
	APIKey   string `validate:"required"`
	BaseURL  string `validate:"omitempty,url"`
}

type askForm struct {
	Question string `validate:"required,min=3,max=2000"`
}

func (s *server) indexHandler(w http.ResponseWriter, r *http.Request) {
	sess, err := s.currentSession(r)
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		s.deps.Log.Warn("session lookup failed", "err", err)
	}
	s.render(w, http.StatusOK, pageData{Session: viewSession(sess)})
}

func (s *server) saveSessionHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		s.renderError(w, nil, "invalid form", err, http.StatusBadRequest)
		return
	}
	form := sessionForm{
		Provider: strings.TrimSpace(r.PostFormValue("provider")),
		Model:    strings.TrimSpace(r.PostFormValue("model")),
		APIKey:   strings.TrimSpace(r.PostFormValue("api_key")),
		BaseURL:  strings.TrimSpace(r.PostFormValue("base_url")),
	}
	if form.Model == "" {
		form.Model = llm.DefaultModel(llm.Provider(form.Provider))
	}
	if err := httputil.Validator.Struct(form); err != nil {
		s.renderError(w, nil, httputil.ValidationError(err), err, http.StatusBadRequest)
		return
	}

	cfg := llm.ProviderConfig{
		Provider: llm.Provider(form.Provider),
		Model:    form.Model,
		APIKey:   form.APIKey,
		BaseURL:  form.BaseURL,
	}
	client, err := s.newClient(ctx, cfg)
	if err != nil {
		s.renderError(w, nil, "invalid model settings", err, http.StatusBadRequest)
		return
	}
	if v, ok := client.(llm.KeyVerifier); ok {
		if err := v.VerifyKey(ctx); err != nil {
			s.renderError(w, nil, "API key verification failed", err, http.StatusUnauthorized)
			return
		}
	}

	if old, err := r.Cookie(sessionCookie); err == nil {
		if err := s.sessions.Delete(ctx, old.Value); err != nil {
			s.deps.Log.Warn("failed to delete previous session", "err", err)
		}
	}
	sess := &session.Session{ID: uuid.NewString(), Provider: cfg, CreatedAt: time.Now()}
	if err := s.sessions.Save(ctx, sess, s.deps.Config.SessionTTL); err != nil {
		httputil.Fail(s.deps.Log, w, "failed to save session", err, http.StatusInternalServerError)
		return
	}
	s.deps.Log.Info("session created", "provider", cfg.Provider, "model", cfg.Model)

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID,
		Path:     "/",
		MaxAge:   int(s.deps.Config.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *server) clearSessionHandler(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if err := s.sessions.Delete(r.Context(), c.Value); err != nil {
			s.deps.Log.Warn("failed to delete session", "err", err)
		}
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *server) analyzeHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	doc, name, ok := s.readUpload(w, r, sess)
	if !ok {
		return
	}

	ctx := r.Context()
	runID := uuid.NewString()
	log := s.deps.Log.With("run_id", runID, "filename", name)

	analyzer, err := s.newAnalyzer(ctx, sess.Provider, runID)
	if err != nil {
		s.renderError(w, sess, "invalid model settings", err, http.StatusBadRequest)
		return
	}
	log.Info("analysis started", "pages", doc.NumPages())
	res, err := analyzer.Analyze(ctx, doc, runDir(s.deps.Config.OutputDir, runID, name))
	if err != nil {
		s.renderError(w, sess, "analysis failed: "+err.Error(), err, statusFor(err))
		return
	}

	files, err := report.Read(res.Dir)
	if err != nil {
		s.renderError(w, sess, "failed to read analysis results", err, http.StatusInternalServerError)
		return
	}
	background, err := s.pages.markdown(files.Background)
	if err != nil {
		s.renderError(w, sess, "failed to render background", err, http.StatusInternalServerError)
		return
	}
	figures, err := s.pages.markdown(files.Figures)
	if err != nil {
		s.renderError(w, sess, "failed to render figures", err, http.StatusInternalServerError)
		return
	}

	s.render(w, http.StatusOK, pageData{
		Session: viewSession(sess),
		Result: &resultView{
			RunID:      runID,
			Dir:        res.Dir,
			Title:      res.Details.Title,
			Authors:    res.Details.Authors,
			Abstract:   res.Details.Abstract,
			Figures:    res.Figures,
			Calls:      res.Calls,
			Background: background,
			Report:     figures,
		},
	})
}

func (s *server) askHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	doc, name, ok := s.readUpload(w, r, sess)
	if !ok {
		return
	}
	form := askForm{Question: strings.TrimSpace(r.FormValue("question"))}
	if err := httputil.Validator.Struct(form); err != nil {
		s.renderError(w, sess, httputil.ValidationError(err), err, http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	analyzer, err := s.newAnalyzer(ctx, sess.Provider, uuid.NewString())
	if err != nil {
		s.renderError(w, sess, "invalid model settings", err, http.StatusBadRequest)
		return
	}
	resp, err := analyzer.Ask(ctx, doc, form.Question)
	if err != nil {
		s.renderError(w, sess, "question failed: "+err.Error(), err, statusFor(err))
		return
	}
	answer, err := s.pages.markdown(resp.Content())
	if err != nil {
		s.renderError(w, sess, "failed to render answer", err, http.StatusInternalServerError)
		return
	}
	s.render(w, http.StatusOK, pageData{
		Session: viewSession(sess),
		Answer:  &answerView{Source: name, Question: form.Question, Answer: answer},
	})
}

func (s *server) modelsHandler(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, llm.Catalog())
}

func (s *server) currentSession(r *http.Request) (*session.Session, error) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil, session.ErrNotFound
	}
	return s.sessions.Get(r.Context(), c.Value)
}

func (s *server) requireSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.currentSession(r)
	if err != nil {
		s.renderError(w, nil, "choose a model and API key first", err, http.StatusUnauthorized)
		return nil, false
	}
	return sess, true
}

// readUpload validates the uploaded PDF and extracts its text.
func (s *server) readUpload(w http.ResponseWriter, r *http.Request, sess *session.Session) (document.Document, string, bool) {
	maxFileSize := s.deps.Config.MaxUploadSize

	if r.ContentLength > maxFileSize {
		s.renderError(w, sess, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusBadRequest)
		return document.Document{}, "", false
	}
	// Chunked bodies carry no ContentLength; cap what the form parser reads.
	r.Body = http.MaxBytesReader(w, r.Body, maxFileSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.renderError(w, sess, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), err, http.StatusBadRequest)
			return document.Document{}, "", false
		}
		s.renderError(w, sess, "file is required", err, http.StatusBadRequest)
		return document.Document{}, "", false
	}
	defer file.Close()

	if header.Size > maxFileSize {
		s.renderError(w, sess, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusBadRequest)
		return document.Document{}, "", false
	}

	// Browsers often send octet-stream; fall back to the extension.
	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		if strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
			contentType = "application/pdf"
		}
	}
	if contentType != "application/pdf" {
		s.renderError(w, sess, "unsupported file type (only PDF allowed)", nil, http.StatusBadRequest)
		return document.Document{}, "", false
	}

	content, err := io.ReadAll(file)
	if err != nil {
		s.renderError(w, sess, "failed to read file", err, http.StatusInternalServerError)
		return document.Document{}, "", false
	}
	name := filepath.Base(header.Filename)
	doc, err := s.parse(name, content)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, document.ErrNoText) {
			status = http.StatusUnprocessableEntity
		}
		s.renderError(w, sess, "could not extract text from PDF", err, status)
		return document.Document{}, "", false
	}
	return doc, name, true
}

func (s *server) render(w http.ResponseWriter, status int, data pageData) {
	if err := s.pages.render(w, status, data); err != nil {
		s.deps.Log.Error("render failed", "err", err)
	}
}

// renderError logs err and shows message on the page.
func (s *server) renderError(w http.ResponseWriter, sess *session.Session, message string, err error, status int) {
	s.deps.Log.Error(message, "err", err, "status", status)
	s.render(w, status, pageData{Session: viewSession(sess), Error: message})
}

// runDir is the output directory of one web run. Runs never share a
// directory, so figures_analysis.txt only ever holds that run's answers.
func runDir(root, runID, filename string) string {
	return report.Dir(filepath.Join(root, runID), filename)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, llm.ErrConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, llm.ErrNetwork), errors.Is(err, llm.ErrStructuredOutput):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func viewSession(sess *session.Session) *sessionView {
	if sess == nil {
		return nil
	}
	return &sessionView{
		Provider: string(sess.Provider.Provider),
		Model:    sess.Provider.Model,
		Key:      maskKey(sess.Provider.APIKey),
	}
}

func maskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
