// Package handler exposes stored daily reports, bulletin resolution and the
// holiday calendar over HTTP.
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/FACorreiaa/afa-daily-reports/internal/domain/calendar"
	"github.com/FACorreiaa/afa-daily-reports/internal/domain/report"
	"github.com/FACorreiaa/afa-daily-reports/internal/domain/report/repository"
	"github.com/FACorreiaa/afa-daily-reports/pkg/export"
)

const (
	searchWindow    = 366
	maxSearchResult = 200
)

// Calendar is the holiday lookup the handler needs
type Calendar interface {
	Holidays(ctx context.Context, year int) ([]calendar.Holiday, error)
	HolidaySetFor(ctx context.Context, date time.Time) (report.HolidaySet, error)
}

// Handler serves the daily report API
type Handler struct {
	repo     repository.DailyReportRepository
	calendar Calendar
	factory  *report.ReaderFactory
	fileType report.FileType
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new daily report handler
func NewHandler(repo repository.DailyReportRepository, cal Calendar, factory *report.ReaderFactory, fileType report.FileType, logger *slog.Logger) *Handler {
	if fileType == "" {
		fileType = report.FileTypePDF
	}
	return &Handler{
		repo:     repo,
		calendar: cal,
		factory:  factory,
		fileType: fileType,
		validate: newValidator(),
		logger:   logger,
	}
}

// Routes mounts the API under /api/v1
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Route("/daily-reports", func(r chi.Router) {
		r.Get("/", h.GetDailyReport)
		r.Get("/search", h.SearchProducts)
		r.Get("/resolve", h.Resolve)
		r.Get("/export", h.Export)
	})
	r.Get("/calendar/{year}", h.GetCalendar)
	return r
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, status int, err error) {
	resp := errorResponse{Error: http.StatusText(status)}
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		resp.Fields = make(map[string]string, len(verrs))
		for _, fe := range verrs {
			resp.Fields[fe.Field()] = fe.Tag()
		}
	case status < http.StatusInternalServerError && err != nil:
		resp.Error = err.Error()
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
	}
	render.Status(r, status)
	render.JSON(w, r, resp)
}

type dailyReportQuery struct {
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	Category string `json:"category" validate:"required,product_type"`
	Source   string `json:"source" validate:"omitempty,supply_type"`
}

// GetDailyReport returns one stored report.
// The source defaults to the market stage of the category's bulletin.
func (h *Handler) GetDailyReport(w http.ResponseWriter, r *http.Request) {
	q := dailyReportQuery{
		Date:     r.URL.Query().Get("date"),
		Category: r.URL.Query().Get("category"),
		Source:   r.URL.Query().Get("source"),
	}
	if err := h.validate.Struct(q); err != nil {
		h.respondError(w, r, http.StatusBadRequest, err)
		return
	}

	date, _ := report.ParseDay(q.Date)
	if q.Source == "" {
		q.Source = report.SupplyTypeOf(report.ProductType(q.Category)).String()
	}

	dr, err := h.repo.Get(r.Context(), date, q.Category, q.Source)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.respondError(w, r, http.StatusNotFound, err)
			return
		}
		h.respondError(w, r, http.StatusInternalServerError, err)
		return
	}
	render.JSON(w, r, dr)
}

type searchQuery struct {
	Product  string `json:"product" validate:"required,max=64"`
	From     string `json:"from" validate:"omitempty,datetime=2006-01-02"`
	To       string `json:"to" validate:"omitempty,datetime=2006-01-02"`
	Category string `json:"category" validate:"omitempty,product_type"`
}

// ProductMatch is one price of a product matching a search
type ProductMatch struct {
	Date         string  `json:"date"`
	Category     string  `json:"category"`
	Source       string  `json:"source"`
	ProductName  string  `json:"product_name"`
	AveragePrice float64 `json:"average_price"`
	Rank         int     `json:"rank"`
}

// SearchProducts fuzzy-matches product names across stored reports,
// best matches first, newest first within a rank.
func (h *Handler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	q := searchQuery{
		Product:  r.URL.Query().Get("product"),
		From:     r.URL.Query().Get("from"),
		To:       r.URL.Query().Get("to"),
		Category: r.URL.Query().Get("category"),
	}
	if err := h.validate.Struct(q); err != nil {
		h.respondError(w, r, http.StatusBadRequest, err)
		return
	}

	filter := repository.ListFilter{Category: q.Category, Limit: searchWindow}
	if q.From != "" {
		filter.From, _ = report.ParseDay(q.From)
	}
	if q.To != "" {
		filter.To, _ = report.ParseDay(q.To)
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		h.respondError(w, r, http.StatusBadRequest, errors.New("to is before from"))
		return
	}

	reports, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.respondError(w, r, http.StatusInternalServerError, err)
		return
	}

	matches := make([]ProductMatch, 0)
	for _, dr := range reports {
		for _, p := range dr.Products {
			rank := fuzzy.RankMatchNormalizedFold(q.Product, p.ProductName)
			if rank < 0 {
				continue
			}
			matches = append(matches, ProductMatch{
				Date:         dr.Date.Format(report.DateLayout),
				Category:     dr.Category,
				Source:       dr.Source,
				ProductName:  p.ProductName,
				AveragePrice: p.AveragePrice,
				Rank:         rank,
			})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Rank != matches[j].Rank {
			return matches[i].Rank < matches[j].Rank
		}
		return matches[i].Date > matches[j].Date
	})
	if len(matches) > maxSearchResult {
		matches = matches[:maxSearchResult]
	}
	render.JSON(w, r, matches)
}

type resolveQuery struct {
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
	Product string `json:"product" validate:"required,product_type"`
}

// Resolution describes the bulletin expected for a date and product type
type Resolution struct {
	Date                 string   `json:"date"`
	ProductType          string   `json:"product_type"`
	ROCYear              int      `json:"roc_year"`
	Family               string   `json:"family"`
	CalculatedReportDate *string  `json:"calculated_report_date"`
	Filename             string   `json:"filename"`
	SupplyType           string   `json:"supply_type"`
	Category             string   `json:"category"`
	ProductLabel         string   `json:"product_label"`
	SelectedColumns      []string `json:"selected_columns"`
	PrevDayIsHoliday     bool     `json:"prev_day_is_holiday"`
}

// Resolve reports which bulletin is expected for a date and product type.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	q := resolveQuery{
		Date:    r.URL.Query().Get("date"),
		Product: r.URL.Query().Get("product"),
	}
	if err := h.validate.Struct(q); err != nil {
		h.respondError(w, r, http.StatusBadRequest, err)
		return
	}
	date, _ := report.ParseDay(q.Date)

	holidays, err := h.calendar.HolidaySetFor(r.Context(), date)
	if err != nil {
		h.respondError(w, r, http.StatusBadGateway, err)
		return
	}
	reader, err := h.factory.GetReader(date, h.fileType, report.ProductType(q.Product), holidays)
	if err != nil {
		h.respondError(w, r, http.StatusInternalServerError, err)
		return
	}
	render.JSON(w, r, NewResolution(reader))
}

// NewResolution describes reader's bulletin
func NewResolution(reader *report.Reader) Resolution {
	meta := reader.Meta()
	res := Resolution{
		Date:             meta.Date().Format(report.DateLayout),
		ProductType:      meta.ProductType().String(),
		ROCYear:          meta.ROCYear(),
		Family:           string(meta.Family()),
		Filename:         meta.Filename(),
		SupplyType:       reader.SupplyType().String(),
		Category:         reader.Category().String(),
		ProductLabel:     reader.ProductLabel(),
		SelectedColumns:  reader.SelectedColumns(),
		PrevDayIsHoliday: reader.PrevDayIsHoliday(),
	}
	if d, ok := meta.CalculatedReportDate(); ok {
		s := d.Format(report.DateLayout)
		res.CalculatedReportDate = &s
	}
	return res
}

type exportQuery struct {
	From     string `json:"from" validate:"required,datetime=2006-01-02"`
	To       string `json:"to" validate:"required,datetime=2006-01-02"`
	Category string `json:"category" validate:"omitempty,product_type"`
	Format   string `json:"format" validate:"omitempty,oneof=csv xlsx excel"`
}

// Export streams the reports of a date range as CSV or XLSX.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	q := exportQuery{
		From:     r.URL.Query().Get("from"),
		To:       r.URL.Query().Get("to"),
		Category: r.URL.Query().Get("category"),
		Format:   r.URL.Query().Get("format"),
	}
	if err := h.validate.Struct(q); err != nil {
		h.respondError(w, r, http.StatusBadRequest, err)
		return
	}
	if q.Format == "" {
		q.Format = string(export.FormatCSV)
	}
	format, _ := export.ParseFormat(q.Format)
	from, _ := report.ParseDay(q.From)
	to, _ := report.ParseDay(q.To)

	reports, err := h.repo.List(r.Context(), repository.ListFilter{From: from, To: to, Category: q.Category, Limit: searchWindow})
	if err != nil {
		h.respondError(w, r, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="daily_reports_%s_%s.%s"`, q.From, q.To, format))
	if err := export.Write(w, format, reports); err != nil {
		h.logger.Error("export failed", slog.Any("error", err))
	}
}

// GetCalendar returns the cleaned holidays of a year.
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1912 || year > 2100 {
		h.respondError(w, r, http.StatusBadRequest, errors.New("invalid year"))
		return
	}

	holidays, err := h.calendar.Holidays(r.Context(), year)
	if err != nil {
		h.respondError(w, r, http.StatusBadGateway, err)
		return
	}
	if holidays == nil {
		holidays = []calendar.Holiday{}
	}
	render.JSON(w, r, holidays)
}
