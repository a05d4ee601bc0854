package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mishannn/landparser-go/internal/export"
	"github.com/mishannn/landparser-go/internal/geo"
	"github.com/mishannn/landparser-go/internal/listing"
	"github.com/mishannn/landparser-go/internal/metrics"
	"github.com/mishannn/landparser-go/internal/pipeline"
	"github.com/mishannn/landparser-go/internal/session"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Runner interface {
	Run(ctx context.Context, coord geo.Coordinate, creds pipeline.Credentials) pipeline.Result
}

type Server struct {
	runner   Runner
	state    *session.State
	exporter *export.Exporter
	creds    pipeline.Credentials
	logger   *zap.Logger
	now      func() time.Time
}

// NewServer builds the dashboard API. creds is used for scrape requests that carry no credentials of their own.
func NewServer(runner Runner, state *session.State, exporter *export.Exporter, creds pipeline.Credentials, logger *zap.Logger) *Server {
	return &Server{
		runner:   runner,
		state:    state,
		exporter: exporter,
		creds:    creds,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.logRequests)

	api := router.Group("/api")
	api.POST("/scrape", s.scrape)
	api.GET("/result", s.result)
	api.GET("/export", s.exportArea)
	api.GET("/selections", s.listSelections)
	api.POST("/selections", s.addSelection)
	api.DELETE("/selections", s.clearSelections)
	api.DELETE("/selections/:index", s.removeSelection)
	api.GET("/selections/export", s.exportSelections)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()

	s.logger.Debug("request handled",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", c.Writer.Status()),
		zap.Duration("duration", time.Since(start)),
	)
}

type ScrapeRequest struct {
	Lat         *float64              `json:"lat" binding:"required"`
	Lon         *float64              `json:"lon" binding:"required"`
	Credentials *pipeline.Credentials `json:"credentials"`
}

func (s *Server) scrape(c *gin.Context) {
	var req ScrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request data", "details": err.Error()})
		return
	}

	if err := s.state.Begin(); err != nil {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
		return
	}

	creds := s.creds
	if req.Credentials != nil {
		creds = *req.Credentials
	}

	result := s.runScrape(c.Request.Context(), geo.Coordinate{Lat: *req.Lat, Lon: *req.Lon}, creds)

	status := http.StatusOK
	switch result.Signal {
	case pipeline.SignalAuthError:
		status = http.StatusUnauthorized
	case pipeline.SignalGenericError:
		status = http.StatusBadGateway
	}

	c.JSON(status, gin.H{
		"runId":        result.RunID,
		"districtName": result.DistrictName,
		"signal":       result.Signal,
		"count":        len(result.Rows),
	})
}

// runScrape releases the session even when the runner panics; the panic then reaches gin.Recovery.
func (s *Server) runScrape(ctx context.Context, coord geo.Coordinate, creds pipeline.Credentials) (result pipeline.Result) {
	result = pipeline.Result{DistrictName: pipeline.UnknownDistrict, Signal: pipeline.SignalGenericError}
	defer func() {
		s.state.Finish(result)
	}()

	return s.runner.Run(ctx, coord, creds)
}

func parseViewOptions(c *gin.Context) (session.ViewOptions, error) {
	opts := session.ViewOptions{Ascending: true}

	if v := c.Query("excludeLowFloors"); v != "" {
		exclude, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("can't parse excludeLowFloors: %w", err)
		}
		opts.ExcludeLowFloors = exclude
	}

	if v := c.Query("ascending"); v != "" {
		ascending, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("can't parse ascending: %w", err)
		}
		opts.Ascending = ascending
	}

	sortParam := c.DefaultQuery("sort", string(listing.SortByPrice))
	for _, name := range strings.Split(sortParam, ",") {
		if strings.TrimSpace(name) == "" {
			continue
		}
		key, err := listing.ParseSortKey(strings.TrimSpace(name))
		if err != nil {
			return opts, err
		}
		opts.SortKeys = append(opts.SortKeys, key)
	}

	return opts, nil
}

func (s *Server) currentView(c *gin.Context) (session.View, bool) {
	opts, err := parseViewOptions(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return session.View{}, false
	}

	view, err := s.state.CurrentView(opts)
	if errors.Is(err, session.ErrNoResult) {
		status := http.StatusNotFound
		if s.state.Busy() {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return session.View{}, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return session.View{}, false
	}

	return view, true
}

func (s *Server) result(c *gin.Context) {
	view, ok := s.currentView(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) writeWorkbook(c *gin.Context, kind string, fileName string, data []byte) {
	if data == nil {
		metrics.Exports.WithLabelValues(kind, "error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "can't build workbook"})
		return
	}

	metrics.Exports.WithLabelValues(kind, "ok").Inc()
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(fileName))
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (s *Server) exportArea(c *gin.Context) {
	view, ok := s.currentView(c)
	if !ok {
		return
	}

	if len(view.Rows) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no listings to export"})
		return
	}

	date := s.now().Format(export.DateLayout)
	data := s.exporter.Area(view.Rows, view.Summary, view.AreaName, date, view.ExcludeLowFloors)
	s.writeWorkbook(c, "area", export.AreaFileName(view.AreaName, date, view.ExcludeLowFloors), data)
}

type SelectionInfo struct {
	Index        int    `json:"index"`
	Name         string `json:"name"`
	Listings     int    `json:"listings"`
	SummaryLines int    `json:"summaryLines"`
}

func (s *Server) listSelections(c *gin.Context) {
	selections := s.state.Selections()

	infos := make([]SelectionInfo, 0, len(selections))
	for i, selection := range selections {
		infos = append(infos, SelectionInfo{
			Index:        i,
			Name:         selection.DisplayName(),
			Listings:     len(selection.Detail),
			SummaryLines: len(selection.Summary),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"selections": infos,
		"max":        s.state.MaxSelections(),
	})
}

func (s *Server) addSelection(c *gin.Context) {
	opts, err := parseViewOptions(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	selection, err := s.state.AddCurrentSelection(opts)
	switch {
	case errors.Is(err, session.ErrNoResult):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case errors.Is(err, session.ErrSelectionExists), errors.Is(err, session.ErrSelectionLimit):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, SelectionInfo{
		Index:        len(s.state.Selections()) - 1,
		Name:         selection.DisplayName(),
		Listings:     len(selection.Detail),
		SummaryLines: len(selection.Summary),
	})
}

func (s *Server) removeSelection(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid selection index"})
		return
	}

	if err := s.state.RemoveSelection(index); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "selection removed"})
}

func (s *Server) clearSelections(c *gin.Context) {
	s.state.ClearSelections()
	c.JSON(http.StatusOK, gin.H{"message": "selections cleared"})
}

func (s *Server) exportSelections(c *gin.Context) {
	selections := s.state.Selections()
	if len(selections) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": export.ErrNoSelections.Error()})
		return
	}

	date := s.now().Format(export.DateLayout)
	data := s.exporter.Combined(selections, date)
	s.writeWorkbook(c, "combined", export.CombinedFileName(selections, date), data)
}
