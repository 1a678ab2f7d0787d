package console

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/maltedev/product-compare/internal/backend"
	"github.com/maltedev/product-compare/internal/compare"
	"github.com/maltedev/product-compare/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server serves the comparison page and turns its form posts into session
// updates and backend calls.
type Server struct {
	session   *Session
	backend   Backend
	templates *template.Template
	logger    *slog.Logger
}

func NewServer(state *compare.State, b Backend, logger *slog.Logger) (*Server, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"lines": func(s string) []string { return strings.Split(s, "\n") },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Server{
		session:   NewSession(state),
		backend:   b,
		templates: tmpl,
		logger:    logger.With("component", "console"),
	}, nil
}

func (s *Server) Session() *Session {
	return s.session
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/", s.handleIndex)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})

	r.Post("/render", s.handleRender)
	r.Post("/select", s.handleSetChecked)
	r.Post("/select/{platform}/{id}", s.handleToggle)
	r.Post("/select-all", s.handleSelectAll)
	r.Post("/unselect-all", s.handleUnselectAll)
	r.Post("/uncertainty/{id}", s.handleUncertainty)
	r.Post("/export", s.handleExport)

	r.Route("/maintenance/{action}", func(r chi.Router) {
		r.Get("/", s.handleMaintenanceConfirm)
		r.Post("/", s.handleMaintenanceRun)
	})

	r.Route("/labels/delete", func(r chi.Router) {
		r.Get("/", s.handleLabelForm)
		r.Post("/confirm", s.handleLabelConfirm)
		r.Post("/", s.handleLabelDelete)
	})

	return r
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if q := r.URL.Query(); q.Has("q") {
		s.session.SetSearch(q.Get("q"))
	}

	view, err := s.session.View()
	if err != nil {
		s.logger.Error("failed to build page view", "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	s.render(w, http.StatusOK, "page.html", view)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	idx := r.FormValue("momo_index")
	if err := s.session.SetMomoIndex(idx); err != nil {
		s.logger.Warn("invalid momo index", "momo_index", idx, "error", err)
		s.session.Flash(NoticeError, "無效的 MOMO 商品編號，已顯示全部商品")
	}
	s.redirectHome(w, r)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	platform, err := models.ParsePlatform(chi.URLParam(r, "platform"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id := models.ProductID(chi.URLParam(r, "id"))

	if _, err := s.session.Toggle(platform, id); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.redirectHome(w, r)
}

// handleSetChecked is the checkbox-style path: the form says what the state
// should be instead of flipping it.
func (s *Server) handleSetChecked(w http.ResponseWriter, r *http.Request) {
	platform, err := models.ParsePlatform(r.FormValue("platform"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id := models.ProductID(r.FormValue("id"))
	checked := r.FormValue("checked") == "on" || r.FormValue("checked") == "true"

	if err := s.session.SetChecked(platform, id, checked); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.redirectHome(w, r)
}

func (s *Server) handleSelectAll(w http.ResponseWriter, r *http.Request) {
	s.session.SelectAll()
	s.redirectHome(w, r)
}

func (s *Server) handleUnselectAll(w http.ResponseWriter, r *http.Request) {
	s.session.UnselectAll()
	s.redirectHome(w, r)
}

func (s *Server) handleUncertainty(w http.ResponseWriter, r *http.Request) {
	id := models.ProductID(chi.URLParam(r, "id"))
	raw := r.FormValue("uncertainty")
	// the row button submits the whole export form
	if _, ok := r.Form[UncertaintyField(id)]; ok {
		raw = r.Form.Get(UncertaintyField(id))
	}

	err := s.session.SetUncertainty(id, raw)
	switch {
	case errors.Is(err, ErrCardNotRendered):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case err != nil:
		s.session.Flash(NoticeError, err.Error())
	}
	s.redirectHome(w, r)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	if err := s.session.ApplyUncertaintyInputs(r.PostForm); err != nil {
		s.logger.Info("export rejected", "reason", err)
		s.session.Flash(NoticeError, err.Error())
		s.redirectHome(w, r)
		return
	}

	export, err := s.session.BuildExport()
	if err != nil {
		s.logger.Info("export rejected", "reason", err)
		s.session.Flash(NoticeError, err.Error())
		s.redirectHome(w, r)
		return
	}

	if _, err := s.backend.SaveSelection(r.Context(), export.Request); err != nil {
		s.logger.Error("failed to save selection", "error", err)
		msg := unreachableMessage
		if backend.IsRejected(err) {
			msg = "儲存到資料庫失敗！"
		}
		s.session.Flash(NoticeError, msg)
		s.redirectHome(w, r)
		return
	}

	s.logger.Info("selection exported",
		"selected", export.SelectedCount,
		"momo", len(export.Request.MomoProducts),
		"pchome", len(export.Request.Products))
	s.session.Flash(NoticeSuccess, fmt.Sprintf("匯出成功！已匯出 %d 個商品", export.SelectedCount))

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", compare.ReportFilename))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(export.Report))
}

type confirmView struct {
	Title  string
	Prompt string
	Action string
	Fields map[string]string
}

func (s *Server) handleMaintenanceConfirm(w http.ResponseWriter, r *http.Request) {
	action, ok := findMaintenanceAction(chi.URLParam(r, "action"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	s.render(w, http.StatusOK, "confirm.html", confirmView{
		Title:  action.Label,
		Prompt: action.Prompt,
		Action: "/maintenance/" + action.Name,
	})
}

func (s *Server) handleMaintenanceRun(w http.ResponseWriter, r *http.Request) {
	action, ok := findMaintenanceAction(chi.URLParam(r, "action"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	if r.FormValue("confirm") != "yes" {
		http.Redirect(w, r, "/maintenance/"+action.Name, http.StatusSeeOther)
		return
	}

	msg, err := action.Run(r.Context(), s.backend)
	if err != nil {
		s.logger.Error("maintenance action failed", "action", action.Name, "error", err)
		s.session.Flash(NoticeError, err.Error())
	} else {
		s.logger.Info("maintenance action completed", "action", action.Name)
		s.session.Flash(NoticeSuccess, msg)
	}
	s.redirectHome(w, r)
}

type labelFormView struct {
	Mode      string
	Index     string
	SKU       string
	Error     string
	MomoCount int
}

func (s *Server) handleLabelForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "label_delete.html", labelFormView{
		Mode:      string(compare.LabelByIndex),
		MomoCount: len(s.session.state.Momo),
	})
}

func (s *Server) handleLabelConfirm(w http.ResponseWriter, r *http.Request) {
	form := labelFormView{
		Mode:      r.FormValue("mode"),
		Index:     r.FormValue("index"),
		SKU:       r.FormValue("sku"),
		MomoCount: len(s.session.state.Momo),
	}

	mode, err := compare.ParseLabelMode(form.Mode)
	if err != nil {
		form.Mode = string(compare.LabelByIndex)
		form.Error = err.Error()
		s.render(w, http.StatusBadRequest, "label_delete.html", form)
		return
	}

	input := form.Index
	if mode == compare.LabelBySKU {
		input = form.SKU
	}

	target, err := s.session.ResolveLabelTarget(mode, input)
	if err != nil {
		form.Error = err.Error()
		s.render(w, http.StatusBadRequest, "label_delete.html", form)
		return
	}

	s.render(w, http.StatusOK, "confirm.html", confirmView{
		Title:  "刪除標記資料",
		Prompt: target.ConfirmPrompt(),
		Action: "/labels/delete",
		Fields: map[string]string{"sku": target.SKU},
	})
}

func (s *Server) handleLabelDelete(w http.ResponseWriter, r *http.Request) {
	sku := strings.TrimSpace(r.FormValue("sku"))
	if sku == "" || r.FormValue("confirm") != "yes" {
		http.Redirect(w, r, "/labels/delete", http.StatusSeeOther)
		return
	}

	resp, err := s.backend.DeleteLabeledProduct(r.Context(), sku)
	if err != nil {
		s.logger.Error("failed to delete labeled product", "sku", sku, "error", err)
		s.session.Flash(NoticeError, failure("刪除失敗", err).Error())
		s.redirectHome(w, r)
		return
	}

	var momo, pchome int64
	if resp.Deleted != nil {
		momo, pchome = resp.Deleted.MomoProducts, resp.Deleted.Products
	}
	s.logger.Info("labeled product deleted", "sku", sku, "momo_products", momo, "products", pchome)
	s.session.Flash(NoticeSuccess, fmt.Sprintf("刪除成功！已刪除 %d 筆 MOMO 商品及 %d 筆對應的 PChome 商品", momo, pchome))
	s.redirectHome(w, r)
}

func (s *Server) redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("failed to execute template", "template", name, "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
