package web

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"labor-stats/connectors/config"
	"labor-stats/connectors/erp"
	"labor-stats/connectors/localdata"
	"labor-stats/domain/analytics"
	"labor-stats/domain/catalog"
	"labor-stats/domain/quote"
)

// Run starts the Echo web server exposing the catalog, the dashboard
// series and the quote-draft operations as JSON APIs.
//
// Usage:
//
//	labor-stats web [-addr :8080]
//
// The server keeps one dataset and one quote draft in memory. The domain
// packages assume a single logical writer, so every handler goes through
// the state mutex.
func Run(args []string) error {
	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	addr := fs.String("addr", ":8080", "http listen address (host:port)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(config.Path())
	if err != nil {
		return err
	}

	s := &state{cfg: cfg, client: erp.New(cfg), draft: quote.NewDraft(nil)}
	s.loadLocal()

	e := echo.New()
	e.HideBanner = true
	s.routes(e)
	return e.Start(*addr)
}

// state is the server's single in-memory dataset plus the active quote
// draft. All access is serialized through mu.
type state struct {
	mu     sync.Mutex
	cfg    *config.Config
	client *erp.Client

	res        catalog.Result
	draft      *quote.Draft
	status     string
	source     string
	lastUpdate time.Time
}

// loadLocal builds the catalog from the bundled dataset. Failures degrade
// to an empty catalog with a visible status, never an error.
func (s *state) loadLocal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := localdata.Load(s.cfg.Data.LocalFile)
	if err != nil {
		slog.Warn("web.local.failed", "err", err)
		s.res = catalog.Result{Tickets: []catalog.Ticket{}, OTs: []catalog.OT{}}
		s.status = "Error cargando datos locales"
		s.source = "Datos locales"
		s.draft.SetUniverse(nil)
		return
	}
	s.res = catalog.Build(rows)
	s.status = fmt.Sprintf("%d tickets cargados (datos locales)", len(s.res.Tickets))
	s.source = "Datos locales"
	s.lastUpdate = time.Now()
	s.draft.SetUniverse(s.res.OTs)
	slog.Info("web.local.loaded", "tickets", len(s.res.Tickets), "ots", len(s.res.OTs))
}

// refresh re-fetches from the ERP, falling back to the local dataset on
// any failure. Rebuilding replaces the whole catalog; the quote draft
// keeps its items but sees the new OT universe.
func (s *state) refresh(ctx context.Context) {
	rows, err := s.client.FetchRows(ctx)
	if err != nil {
		slog.Warn("web.refresh.failed", "err", err)
		s.loadLocal()
		s.mu.Lock()
		s.status = fmt.Sprintf("Error de API (%v) - usando datos locales", err)
		s.mu.Unlock()
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.res = catalog.Build(rows)
	s.status = fmt.Sprintf("%d registros desde API", len(s.res.Tickets))
	s.source = "API ERP"
	s.lastUpdate = time.Now()
	s.draft.SetUniverse(s.res.OTs)
	slog.Info("web.refresh.done", "tickets", len(s.res.Tickets), "ots", len(s.res.OTs))
}

func (s *state) routes(e *echo.Echo) {
	e.GET("/api/catalog", s.handleCatalog)
	e.POST("/api/refresh", s.handleRefresh)

	// Dashboard series: every endpoint filters by the same query params
	// (sector, ticket, from, to) and returns its points in ranked order.
	serveSeries := func(route string, fn func([]catalog.OT) any) {
		e.GET(route, func(c echo.Context) error {
			s.mu.Lock()
			ots := analytics.Filter(s.res.OTs, specFromQuery(c))
			payload := fn(ots)
			s.mu.Unlock()
			return c.JSON(http.StatusOK, payload)
		})
	}
	topN := func(c echo.Context, def int) int {
		if n, err := strconv.Atoi(c.QueryParam("n")); err == nil && n > 0 {
			return n
		}
		return def
	}

	serveSeries("/api/dashboard/kpis", func(ots []catalog.OT) any { return analytics.KPIs(ots) })
	serveSeries("/api/dashboard/sector_cost", func(ots []catalog.OT) any { return analytics.SectorCost(ots) })
	serveSeries("/api/dashboard/sector_hours", func(ots []catalog.OT) any { return analytics.SectorHours(ots) })
	serveSeries("/api/dashboard/sector_ots", func(ots []catalog.OT) any { return analytics.SectorOTCount(ots) })
	serveSeries("/api/dashboard/ticket_cost", func(ots []catalog.OT) any { return analytics.TicketCost(ots) })
	serveSeries("/api/dashboard/ticket_hours", func(ots []catalog.OT) any { return analytics.TicketHours(ots) })
	serveSeries("/api/dashboard/ticket_ots", func(ots []catalog.OT) any { return analytics.TicketOTCount(ots) })
	serveSeries("/api/dashboard/avg_cost_per_ot", func(ots []catalog.OT) any { return analytics.AvgCostPerOT(ots) })
	serveSeries("/api/dashboard/subject_cost", func(ots []catalog.OT) any { return analytics.SubjectCost(ots) })
	serveSeries("/api/dashboard/subject_tickets", func(ots []catalog.OT) any { return analytics.SubjectTickets(ots) })
	serveSeries("/api/dashboard/subject_ots", func(ots []catalog.OT) any { return analytics.SubjectOTs(ots) })
	serveSeries("/api/dashboard/pareto", func(ots []catalog.OT) any { return analytics.ParetoByTicket(ots) })
	serveSeries("/api/dashboard/scatter", func(ots []catalog.OT) any { return analytics.ScatterBySector(ots) })

	e.GET("/api/dashboard/techs_per_ot", func(c echo.Context) error {
		n := topN(c, analytics.TopTechnicians)
		s.mu.Lock()
		payload := analytics.TechniciansPerOT(analytics.Filter(s.res.OTs, specFromQuery(c)), n)
		s.mu.Unlock()
		return c.JSON(http.StatusOK, payload)
	})
	e.GET("/api/dashboard/top_ots_cost", func(c echo.Context) error {
		n := topN(c, s.cfg.Dashboard.TopNCost)
		s.mu.Lock()
		payload := analytics.TopOTsByCost(analytics.Filter(s.res.OTs, specFromQuery(c)), n)
		s.mu.Unlock()
		return c.JSON(http.StatusOK, payload)
	})
	e.GET("/api/dashboard/top_ots_hours", func(c echo.Context) error {
		n := topN(c, s.cfg.Dashboard.TopNHours)
		s.mu.Lock()
		payload := analytics.TopOTsByHours(analytics.Filter(s.res.OTs, specFromQuery(c)), n)
		s.mu.Unlock()
		return c.JSON(http.StatusOK, payload)
	})

	// Quote draft
	e.GET("/api/quote/search", s.handleSearch)
	e.POST("/api/quote/ticket", s.handleSelectTicket)
	e.GET("/api/quote", s.handleQuote)
	e.POST("/api/quote/items", s.handleAddItem)
	e.PATCH("/api/quote/items/:id", s.handleUpdateItem)
	e.DELETE("/api/quote/items/:id", s.handleDeleteItem)
	e.POST("/api/quote/assign", s.handleAssign)
	e.POST("/api/quote/unassign", s.handleUnassign)
	e.GET("/api/quote/summary.txt", s.handleSummary)
	e.GET("/api/quote/export.csv", s.handleCSV)
}

// specFromQuery builds the filter from repeatable sector/ticket params and
// the inclusive from/to date bounds.
func specFromQuery(c echo.Context) analytics.FilterSpec {
	params := c.QueryParams()
	return analytics.FilterSpec{
		Sectors:   params["sector"],
		Tickets:   params["ticket"],
		DateStart: c.QueryParam("from"),
		DateEnd:   c.QueryParam("to"),
	}
}

func (s *state) handleCatalog(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, map[string]any{
		"tickets":     s.res.Tickets,
		"ots":         s.res.OTs,
		"status":      s.status,
		"source":      s.source,
		"last_update": s.lastUpdate,
	})
}

func (s *state) handleRefresh(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), s.cfg.Timeout())
	defer cancel()
	s.refresh(ctx)
	return s.handleCatalog(c)
}

func (s *state) handleSearch(c echo.Context) error {
	limit := 15
	if n, err := strconv.Atoi(c.QueryParam("limit")); err == nil && n > 0 {
		limit = n
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, s.res.SearchTickets(c.QueryParam("q"), limit))
}

func (s *state) handleSelectTicket(c echo.Context) error {
	var body struct {
		ID string `json:"id"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, found := s.res.FindTicket(body.ID)
	if !found {
		return echo.NewHTTPError(http.StatusNotFound, "unknown ticket "+body.ID)
	}
	s.draft.SelectTicket(ticket)
	return c.JSON(http.StatusOK, s.quotePayload())
}

func (s *state) handleQuote(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, s.quotePayload())
}

func (s *state) handleAddItem(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item := s.draft.AddItem()
	return c.JSON(http.StatusCreated, item)
}

func (s *state) handleUpdateItem(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "bad item id")
	}
	var body struct {
		Name   *string `json:"name"`
		Factor *string `json:"factor"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if body.Name != nil {
		s.draft.RenameItem(id, *body.Name)
	}
	if body.Factor != nil {
		s.draft.SetFactor(id, *body.Factor)
	}
	return c.JSON(http.StatusOK, s.quotePayload())
}

func (s *state) handleDeleteItem(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "bad item id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.DeleteItem(id)
	return c.JSON(http.StatusOK, s.quotePayload())
}

func (s *state) handleAssign(c echo.Context) error {
	var body struct {
		OTID   string `json:"ot_id"`
		ItemID int64  `json:"item_id"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	// Unknown OT ids are a silent no-op per the draft contract.
	s.draft.AssignOT(body.OTID, body.ItemID)
	return c.JSON(http.StatusOK, s.quotePayload())
}

func (s *state) handleUnassign(c echo.Context) error {
	var body struct {
		ItemID int64  `json:"item_id"`
		OTID   string `json:"ot_id"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.UnassignOT(body.ItemID, body.OTID)
	return c.JSON(http.StatusOK, s.quotePayload())
}

func (s *state) handleSummary(c echo.Context) error {
	s.mu.Lock()
	text := s.draft.Summary(time.Now(), s.source)
	s.mu.Unlock()
	if text == "" {
		return echo.NewHTTPError(http.StatusConflict, "no ticket selected")
	}
	return c.String(http.StatusOK, text)
}

func (s *state) handleCSV(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft.Ticket == nil {
		return echo.NewHTTPError(http.StatusConflict, "no ticket selected")
	}
	name := fmt.Sprintf("cotizacion_%s.csv", s.draft.Ticket.ID)
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", []byte(s.draft.CSV()))
}

// quotePayload snapshots the draft with derived totals and the available
// pool; callers hold the mutex.
func (s *state) quotePayload() map[string]any {
	items := make([]map[string]any, 0, len(s.draft.Items))
	for _, item := range s.draft.Items {
		items = append(items, map[string]any{
			"id":     item.ID,
			"name":   item.Name,
			"factor": item.Factor,
			"ots":    item.OTs,
			"total":  quote.ItemTotal(item),
		})
	}
	return map[string]any{
		"ticket":      s.draft.Ticket,
		"items":       items,
		"available":   s.draft.AvailableOTs(),
		"grand_total": s.draft.GrandTotal(),
	}
}
