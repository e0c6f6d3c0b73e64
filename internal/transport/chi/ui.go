package chi

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recommender/internal/domain"
	domassess "github.com/kailas-cloud/recommender/internal/domain/assessment"
	"github.com/kailas-cloud/recommender/internal/logger"
	recommenduc "github.com/kailas-cloud/recommender/internal/usecase/recommend"
)

// descriptionPreview is how many runes of a description a result card shows.
const descriptionPreview = 300

//go:embed templates/index.html
var templatesFS embed.FS

var indexTemplate = template.Must(
	template.New("index.html").
		Funcs(template.FuncMap{"join": strings.Join}).
		ParseFS(templatesFS, "templates/index.html"),
)

type uiCard struct {
	URL         string
	Name        string
	Description string
	TestTypes   []string
	Duration    int
	Remote      bool
}

type uiPage struct {
	Query      string
	Limit      int
	Limits     []int
	Submitted  bool
	Technical  string
	Behavioral string
	Items      []uiCard
	Error      string
}

func (s *Server) newPage() uiPage {
	limits := make([]int, 0, recommenduc.MaxLimit)
	for i := recommenduc.MinLimit; i <= recommenduc.MaxLimit; i++ {
		limits = append(limits, i)
	}
	return uiPage{Limit: s.defaultLimit, Limits: limits}
}

// Index handles GET /: the empty form.
func (s *Server) Index(w http.ResponseWriter, _ *http.Request) {
	s.renderPage(w, http.StatusOK, s.newPage())
}

// Submit handles POST /: runs a recommendation from the form and renders the cards.
func (s *Server) Submit(w http.ResponseWriter, r *http.Request) {
	page := s.newPage()
	page.Submitted = true

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		page.Error = "Invalid form submission."
		s.renderPage(w, http.StatusBadRequest, page)
		return
	}

	page.Query = r.PostFormValue("query")
	if v, err := strconv.Atoi(r.PostFormValue("limit")); err == nil {
		page.Limit = recommenduc.ClampLimit(v)
	}

	rec, err := s.recommend.Recommend(r.Context(), page.Query, page.Limit)
	if err != nil {
		logger.FromContext(r.Context()).Warn("Form recommendation failed", zap.Error(err))
		page.Error = uiErrorMessage(err)
		s.renderPage(w, errorStatus(err), page)
		return
	}

	page.Technical = rec.Queries.Technical
	page.Behavioral = rec.Queries.Behavioral
	page.Items = make([]uiCard, len(rec.Items))
	for i, it := range rec.Items {
		page.Items[i] = toCard(it)
	}
	s.renderPage(w, http.StatusOK, page)
}

func (s *Server) renderPage(w http.ResponseWriter, status int, page uiPage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := indexTemplate.Execute(w, page); err != nil {
		s.logger.Error("render index page", zap.Error(err))
	}
}

func toCard(r domassess.Record) uiCard {
	return uiCard{
		URL:         r.URL(),
		Name:        r.Name(),
		Description: logger.TruncateForLog(r.Description(), descriptionPreview),
		TestTypes:   r.TestTypes(),
		Duration:    r.Duration(),
		Remote:      r.RemoteSupport() == domassess.SupportYes,
	}
}

func uiErrorMessage(err error) string {
	if errors.Is(err, domain.ErrNotReady) {
		return "The assessment catalog is still loading. Please try again shortly."
	}
	return "Something went wrong while searching the catalog. Please try again."
}
