package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/seuros/covidboard/internal/dashboard"
	"github.com/seuros/covidboard/internal/diseasesh"
	"github.com/seuros/covidboard/internal/logging"
	"github.com/seuros/covidboard/internal/middleware"
	"github.com/seuros/covidboard/internal/stats"
)

// Locator maps a client IP to an ISO alpha-2 country code, or "" when unknown.
type Locator func(ip string) string

// Handler serves the dashboard API on top of the caller's session coordinator.
type Handler struct {
	locate Locator
}

// NewHandler creates a dashboard handler. A nil locator disables suggestions.
func NewHandler(locate Locator) *Handler {
	if locate == nil {
		locate = func(string) string { return "" }
	}
	return &Handler{locate: locate}
}

// RegisterRoutes mounts the dashboard API on router, normally the /api group.
// The session middleware must already be installed on router.
func (h *Handler) RegisterRoutes(router fiber.Router) {
	router.Get("/dashboard", h.View)
	router.Post("/dashboard/country", h.SelectCountry)
	router.Post("/dashboard/metric", h.SelectMetric)
	router.Delete("/dashboard/notice", h.DismissNotice)
	router.Get("/dashboard/table", h.Table)
	router.Get("/dashboard/map", h.Map)
	router.Get("/dashboard/chart", h.Chart)
	router.Get("/countries", h.Countries)
}

// View returns the header, info cards and any pending notice
// GET /api/dashboard
func (h *Handler) View(c fiber.Ctx) error {
	coordinator := middleware.GetCoordinator(c)
	if coordinator == nil {
		return noSession(c)
	}
	return c.JSON(viewOf(coordinator.Snapshot()))
}

// SelectCountry switches the dashboard to a country or back to worldwide
// POST /api/dashboard/country
func (h *Handler) SelectCountry(c fiber.Ctx) error {
	coordinator := middleware.GetCoordinator(c)
	if coordinator == nil {
		return noSession(c)
	}

	var req SelectCountryRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	err := coordinator.OnCountrySelect(c.Context(), req.Country)
	switch {
	case err == nil, errors.Is(err, dashboard.ErrSuperseded):
		// A superseded request still answers with whatever is current.
		return c.JSON(viewOf(coordinator.Snapshot()))
	case errors.Is(err, dashboard.ErrInvalidCountry):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid country code",
		})
	default:
		logging.L().Warn("country selection failed",
			zap.String("country", req.Country),
			zap.String("kind", diseasesh.KindOf(err).String()),
			zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(viewOf(coordinator.Snapshot()))
	}
}

// SelectMetric changes which metric drives the map and chart
// POST /api/dashboard/metric
func (h *Handler) SelectMetric(c fiber.Ctx) error {
	coordinator := middleware.GetCoordinator(c)
	if coordinator == nil {
		return noSession(c)
	}

	var req SelectMetricRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := coordinator.OnMetricTypeSelect(strings.TrimSpace(req.Metric)); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid metric type",
		})
	}
	return c.JSON(viewOf(coordinator.Snapshot()))
}

// DismissNotice clears the failure banner
// DELETE /api/dashboard/notice
func (h *Handler) DismissNotice(c fiber.Ctx) error {
	coordinator := middleware.GetCoordinator(c)
	if coordinator == nil {
		return noSession(c)
	}
	coordinator.DismissNotice()
	return c.SendStatus(fiber.StatusNoContent)
}

// Table returns the ranked country leaderboard
// GET /api/dashboard/table?page=1&per=25&sort_by=cases
func (h *Handler) Table(c fiber.Ctx) error {
	coordinator := middleware.GetCoordinator(c)
	if coordinator == nil {
		return noSession(c)
	}

	params := ParsePaginationParams(c)
	ranked := stats.SortBy(coordinator.Snapshot().TableData, params.SortBy)
	page := pageOf(ranked, params)

	rows := make([]TableRow, 0, len(page))
	for i, r := range page {
		total := r.Total(params.SortBy)
		rows = append(rows, TableRow{
			Rank:    params.Offset + i + 1,
			Country: r.CountryName,
			ISOCode: r.ISOCode(),
			Flag:    r.FlagURL(),
			Value:   total.N,
			Display: stats.PrettyPrintTotal(total),
		})
	}

	return c.JSON(PaginatedResponse{
		Data:       rows,
		Pagination: BuildPaginationMeta(params, len(ranked)),
	})
}

// Map returns marker circles and choropleth shades for the current metric
// GET /api/dashboard/map
func (h *Handler) Map(c fiber.Ctx) error {
	coordinator := middleware.GetCoordinator(c)
	if coordinator == nil {
		return noSession(c)
	}

	state := coordinator.Snapshot()
	choropleth, total := stats.Choropleth(state.MapCountries, state.CasesType)

	return c.JSON(MapResponse{
		Center:     state.MapCenter,
		Zoom:       state.MapZoom,
		CasesType:  state.CasesType,
		Style:      stats.StyleFor(state.CasesType),
		Markers:    state.MapMarkers(),
		Choropleth: choropleth,
		Total:      total,
	})
}

// Chart returns daily new values for the current metric
// GET /api/dashboard/chart
func (h *Handler) Chart(c fiber.Ctx) error {
	coordinator := middleware.GetCoordinator(c)
	if coordinator == nil {
		return noSession(c)
	}

	state := coordinator.Snapshot()
	return c.JSON(ChartResponse{
		CasesType: state.CasesType,
		Points:    state.ChartData(),
	})
}

// Countries returns the selector options with a suggestion for the visitor
// GET /api/countries
func (h *Handler) Countries(c fiber.Ctx) error {
	coordinator := middleware.GetCoordinator(c)
	if coordinator == nil {
		return noSession(c)
	}

	state := coordinator.Snapshot()
	resp := CountriesResponse{
		Selected: state.SelectedCountry,
		Options:  state.Countries,
	}

	if code := strings.ToUpper(h.locate(c.IP())); code != "" {
		for _, opt := range state.Countries {
			if opt.Value == code {
				resp.Suggested = code
				break
			}
		}
	}
	return c.JSON(resp)
}

func viewOf(state dashboard.State) ViewResponse {
	return ViewResponse{
		SelectedCountry: state.SelectedCountry,
		CasesType:       state.CasesType,
		CountryInfo:     state.CountryInfo,
		Cards:           state.Cards(),
		MapCenter:       state.MapCenter,
		MapZoom:         state.MapZoom,
		Notice:          state.Notice,
	}
}

func noSession(c fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Session not initialized",
	})
}
