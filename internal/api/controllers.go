package api

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/HatimDz/crypto-sub000/internal/backtest"
	"github.com/HatimDz/crypto-sub000/internal/events"
	"github.com/HatimDz/crypto-sub000/internal/learning"
	"github.com/HatimDz/crypto-sub000/internal/market"
	"github.com/HatimDz/crypto-sub000/internal/signal"
	"github.com/HatimDz/crypto-sub000/pkg/db"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type analysisQuery struct {
	Interval string `form:"interval"`
	Limit    int    `form:"limit"`
	Profile  string `form:"profile"`
}

func (q *analysisQuery) normalize() {
	if q.Interval == "" {
		q.Interval = "1d"
	}
	if q.Limit <= 0 {
		q.Limit = 200
	}
	if q.Limit > 1000 {
		q.Limit = 1000
	}
}

type backtestRequest struct {
	Symbol          string  `json:"symbol" binding:"required,min=1"`
	Interval        string  `json:"interval"`
	Limit           int     `json:"limit"`
	InitialCapital  float64 `json:"initial_capital"`
	MinConfidence   float64 `json:"min_confidence"`
	Adaptive        bool    `json:"adaptive"`
	AllowShort      bool    `json:"allow_short"`
	UseOptimalEntry bool    `json:"use_optimal_entry"`
	LearningRate    float64 `json:"learning_rate"`
	Profile         string  `json:"profile"`
}

type tradeOutcomeRequest struct {
	Profit        float64            `json:"profit"`
	ProfitPercent float64            `json:"profit_percent"`
	Indicators    map[string]float64 `json:"indicators" binding:"required"`
	ClosedAt      time.Time          `json:"closed_at"`
}

type listRunsQuery struct {
	Limit int `form:"limit"`
}

func (q *listRunsQuery) normalize() {
	if q.Limit <= 0 {
		q.Limit = 50
	}
	if q.Limit > 200 {
		q.Limit = 200
	}
}

func respondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, gin.H{
		"code":  code,
		"error": msg,
	})
}

// fetchSeries pulls candles from the provider and maps failures to HTTP
// errors. Returns false when a response has already been written.
func (s *Server) fetchSeries(c *gin.Context, symbol, interval string, limit int) (market.Series, bool) {
	series, err := s.Provider.History(c.Request.Context(), symbol, interval, limit)
	if err != nil {
		log.Printf("[API] history fetch %s/%s failed: %v", symbol, interval, err)
		respondError(c, http.StatusBadGateway, "MARKET_DATA_UNAVAILABLE", "could not fetch market data")
		return nil, false
	}
	if len(series) == 0 {
		respondError(c, http.StatusNotFound, "NO_DATA", "no candles for symbol")
		return nil, false
	}
	return series, true
}

// resolveAnalysis picks indicator settings and weights for a symbol:
// profile settings when requested, persisted learned weights when present,
// profile seed weights otherwise.
func (s *Server) resolveAnalysis(c *gin.Context, symbol, profileName string) (signal.Settings, signal.WeightMap, bool) {
	settings := signal.DefaultSettings()
	weights := signal.DefaultWeights()

	if profileName != "" {
		profile, ok := s.Profiles[profileName]
		if !ok {
			respondError(c, http.StatusBadRequest, "UNKNOWN_PROFILE", "unknown analysis profile")
			return nil, nil, false
		}
		settings = profile.Settings()
		weights = profile.SeedWeights()
	}

	if persisted, err := s.queries.LoadWeights(c.Request.Context(), symbol); err == nil {
		weights = persisted
	} else if !errors.Is(err, db.ErrNotFound) {
		log.Printf("[API] load weights for %s failed: %v", symbol, err)
	}

	return settings, weights, true
}

func (s *Server) getSignal(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))

	var q analysisQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_QUERY", "invalid query parameters")
		return
	}
	q.normalize()

	settings, weights, ok := s.resolveAnalysis(c, symbol, q.Profile)
	if !ok {
		return
	}
	series, ok := s.fetchSeries(c, symbol, q.Interval, q.Limit)
	if !ok {
		return
	}

	sig := signal.Generate(series, len(series)-1, settings, weights)

	if s.Bus != nil {
		s.Bus.Publish(events.EventSignal, events.SignalEvent{
			Symbol:   symbol,
			Interval: q.Interval,
			Signal:   sig,
			At:       time.Now().UTC(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol":   symbol,
		"interval": q.Interval,
		"asOf":     series.Last().Date,
		"price":    series.Last().Close,
		"signal":   sig,
	})
}

func (s *Server) getOptimalPrices(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))

	var q analysisQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_QUERY", "invalid query parameters")
		return
	}
	q.normalize()

	settings, weights, ok := s.resolveAnalysis(c, symbol, q.Profile)
	if !ok {
		return
	}
	series, ok := s.fetchSeries(c, symbol, q.Interval, q.Limit)
	if !ok {
		return
	}

	buy, sell := signal.OptimalPrices(series, settings, weights)

	c.JSON(http.StatusOK, gin.H{
		"symbol":           symbol,
		"interval":         q.Interval,
		"currentPrice":     series.Last().Close,
		"optimalBuyPrice":  buy,
		"optimalSellPrice": sell,
	})
}

func (s *Server) runBacktest(c *gin.Context) {
	var req backtestRequest
	if err := c.BindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid backtest request")
		return
	}
	if req.InitialCapital < 0 || req.MinConfidence < 0 || req.MinConfidence > 100 || req.LearningRate < 0 {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "capital, confidence and learning rate must be non-negative")
		return
	}

	symbol := strings.ToUpper(req.Symbol)
	if req.Interval == "" {
		req.Interval = "1d"
	}
	if req.Limit <= 0 {
		req.Limit = 500
	}
	if req.InitialCapital == 0 {
		req.InitialCapital = 10000
	}
	if req.MinConfidence == 0 {
		req.MinConfidence = 60
	}

	settings, weights, ok := s.resolveAnalysis(c, symbol, req.Profile)
	if !ok {
		return
	}
	series, ok := s.fetchSeries(c, symbol, req.Interval, req.Limit)
	if !ok {
		return
	}

	cfg := backtest.Config{
		Symbol:          symbol,
		InitialCapital:  req.InitialCapital,
		MinConfidence:   req.MinConfidence,
		Settings:        settings,
		Weights:         weights,
		Adaptive:        req.Adaptive,
		LearningRate:    req.LearningRate,
		AllowShort:      req.AllowShort,
		UseOptimalEntry: req.UseOptimalEntry,
	}
	if s.Bus != nil {
		cfg.OnProgress = func(bar, total int) {
			s.Bus.Publish(events.EventBacktestProgress, events.BacktestProgressEvent{
				Symbol: symbol,
				Bar:    bar,
				Total:  total,
			})
		}
		cfg.OnTrade = func(trade backtest.Trade) {
			s.Bus.Publish(events.EventTradeClosed, events.TradeClosedEvent{
				Symbol: symbol,
				Trade:  trade,
			})
		}
	}

	report := backtest.Run(c.Request.Context(), series, cfg)

	// Persistence failure must not lose the computed report.
	if err := s.queries.SaveBacktestRun(c.Request.Context(), report, req.Adaptive); err != nil {
		log.Printf("[API] save backtest run %s failed: %v", report.RunID, err)
	}

	if s.Bus != nil {
		s.Bus.Publish(events.EventBacktestDone, events.BacktestDoneEvent{
			RunID:          report.RunID,
			Symbol:         symbol,
			TotalReturnPct: report.TotalReturnPct,
			TradeCount:     len(report.Trades),
		})
	}

	c.JSON(http.StatusCreated, report)
}

func (s *Server) listBacktests(c *gin.Context) {
	var q listRunsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_QUERY", "invalid query parameters")
		return
	}
	q.normalize()

	runs, err := s.queries.ListBacktestRuns(c.Request.Context(), q.Limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	if runs == nil {
		runs = []db.BacktestRun{}
	}
	c.JSON(http.StatusOK, runs)
}

func (s *Server) getBacktest(c *gin.Context) {
	report, err := s.queries.GetBacktestRun(c.Request.Context(), c.Param("id"))
	if errors.Is(err, db.ErrNotFound) {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "backtest run not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) getLearningState(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))
	state := s.Learner.StateFor(symbol)
	c.JSON(http.StatusOK, state.Snapshot())
}

func (s *Server) recordTradeOutcome(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))

	var req tradeOutcomeRequest
	if err := c.BindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid trade outcome payload")
		return
	}
	if len(req.Indicators) == 0 {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "at least one indicator contribution is required")
		return
	}
	if req.ClosedAt.IsZero() {
		req.ClosedAt = time.Now().UTC()
	}

	outcome := learning.TradeOutcome{
		ID:            uuid.NewString(),
		Symbol:        symbol,
		Profit:        req.Profit,
		ProfitPercent: req.ProfitPercent,
		Win:           req.Profit > 0,
		Indicators:    req.Indicators,
		ClosedAt:      req.ClosedAt,
	}

	state, err := s.Learner.Record(outcome)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	if err := s.queries.SaveTradeOutcome(c.Request.Context(), outcome); err != nil {
		log.Printf("[API] save trade outcome %s failed: %v", outcome.ID, err)
	}

	if s.Bus != nil {
		s.Bus.Publish(events.EventWeightsUpdated, events.WeightsUpdatedEvent{
			Symbol:  symbol,
			Weights: state.Weights.Clone(),
			At:      time.Now().UTC(),
		})
	}

	c.JSON(http.StatusCreated, gin.H{
		"outcomeId":   outcome.ID,
		"totalTrades": state.TotalTrades,
		"weights":     state.Weights,
	})
}

func (s *Server) resetLearning(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))
	if err := s.Learner.Reset(symbol); err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "status": "reset"})
}

func (s *Server) getWeights(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))

	weights, err := s.queries.LoadWeights(c.Request.Context(), symbol)
	source := "persisted"
	if errors.Is(err, db.ErrNotFound) {
		weights = signal.DefaultWeights()
		source = "default"
	} else if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol":  symbol,
		"source":  source,
		"weights": weights,
	})
}

func (s *Server) putWeights(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))

	var req map[string]float64
	if err := c.BindJSON(&req); err != nil || len(req) == 0 {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "weights object is required")
		return
	}

	weights := make(signal.WeightMap, len(req))
	for name, w := range req {
		if !knownIndicator(name) {
			respondError(c, http.StatusBadRequest, "UNKNOWN_INDICATOR", "unknown indicator "+name)
			return
		}
		if w < 0 {
			respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "weights must be non-negative")
			return
		}
		weights[name] = w
	}
	weights.Normalize()

	if err := s.queries.SaveWeights(c.Request.Context(), symbol, weights); err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	if s.Bus != nil {
		s.Bus.Publish(events.EventWeightsUpdated, events.WeightsUpdatedEvent{
			Symbol:  symbol,
			Weights: weights.Clone(),
			At:      time.Now().UTC(),
		})
	}

	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "weights": weights})
}

func (s *Server) deleteWeights(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))
	if err := s.queries.ResetWeights(c.Request.Context(), symbol); err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "status": "reset"})
}

func knownIndicator(name string) bool {
	for _, known := range signal.AllIndicators {
		if name == known {
			return true
		}
	}
	return false
}
