package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"BasketMint/internal/fund"
	"BasketMint/internal/market"
	"BasketMint/internal/minimum"
	"BasketMint/internal/model"
)

// FundService is the engine surface exposed over HTTP.
type FundService interface {
	CreateFund(req fund.CreateFundRequest) (string, error)
	Deposit(fundID, asset string, amount decimal.Decimal, contributor string) (model.Deposit, error)
	Issue(fundID, contributor string) (fund.Issuance, error)
	Deactivate(fundID string) error
	Fund(fundID string) (model.Fund, error)
	NAV(fundID string) (decimal.Decimal, error)
	PricePerShare(fundID string) (decimal.Decimal, error)
	Minimum() minimum.Result
}

// MarketWriter accepts manual market condition updates.
type MarketWriter interface {
	Update(liquidity decimal.Decimal, volatilityBP, demandBP int64) (model.MarketCondition, error)
}

// Server encapsulates dependencies for the HTTP API.
type Server struct {
	Funds    FundService
	Market   MarketWriter
	Gatherer prometheus.Gatherer
	Log      *zap.Logger

	router http.Handler
}

// New constructs the admin router. A nil gatherer disables /metrics.
func New(funds FundService, mkt MarketWriter, gatherer prometheus.Gatherer, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{Funds: funds, Market: mkt, Gatherer: gatherer, Log: log}
	s.router = s.buildRouter()
	return s
}

// Handler exposes the configured HTTP router.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimw.Recoverer)

	r.Get("/minimum", s.GetMinimum)
	r.Post("/market", s.UpdateMarket)
	r.Route("/funds", func(fr chi.Router) {
		fr.Post("/", s.CreateFund)
		fr.Get("/{id}", s.GetFund)
		fr.Post("/{id}/deposits", s.Deposit)
		fr.Post("/{id}/issue", s.Issue)
		fr.Post("/{id}/deactivate", s.Deactivate)
		fr.Get("/{id}/nav", s.GetNAV)
	})
	if s.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.Log.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", chimw.GetReqID(r.Context())))
	})
}

type minimumResponse struct {
	Minimum       decimal.Decimal       `json:"minimum"`
	Tier          string                `json:"tier"`
	Base          decimal.Decimal       `json:"base"`
	VolatilityAdj decimal.Decimal       `json:"volatility_adjustment"`
	DemandAdj     decimal.Decimal       `json:"demand_adjustment"`
	Condition     model.MarketCondition `json:"condition"`
}

func toMinimumResponse(res minimum.Result) minimumResponse {
	return minimumResponse{
		Minimum:       res.Minimum,
		Tier:          res.TierLabel,
		Base:          res.Base,
		VolatilityAdj: res.VolatilityAdj,
		DemandAdj:     res.DemandAdj,
		Condition:     res.Condition,
	}
}

// GetMinimum reports the current dynamic minimum and the inputs behind it.
func (s *Server) GetMinimum(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toMinimumResponse(s.Funds.Minimum()))
}

// UpdateMarket overwrites the market condition snapshot.
func (s *Server) UpdateMarket(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Liquidity    decimal.Decimal `json:"liquidity"`
		VolatilityBP int64           `json:"volatility_bp"`
		DemandBP     int64           `json:"demand_bp"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if _, err := s.Market.Update(req.Liquidity, req.VolatilityBP, req.DemandBP); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMinimumResponse(s.Funds.Minimum()))
}

// CreateFund registers a new fund.
func (s *Server) CreateFund(w http.ResponseWriter, r *http.Request) {
	var req fund.CreateFundRequest
	if !decodeBody(w, r, &req) {
		return
	}
	id, err := s.Funds.CreateFund(req)
	if err != nil {
		writeError(w, err)
		return
	}
	f, err := s.Funds.Fund(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

// GetFund returns a fund snapshot.
func (s *Server) GetFund(w http.ResponseWriter, r *http.Request) {
	f, err := s.Funds.Fund(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// Deposit records a contribution.
func (s *Server) Deposit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Asset       string          `json:"asset"`
		Amount      decimal.Decimal `json:"amount"`
		Contributor string          `json:"contributor"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Contributor) == "" {
		writeErrorStatus(w, http.StatusBadRequest, errors.New("contributor is required"))
		return
	}
	d, err := s.Funds.Deposit(chi.URLParam(r, "id"), req.Asset, req.Amount, req.Contributor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// Issue mints shares for the contributor's pending value.
func (s *Server) Issue(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Contributor string `json:"contributor"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	out, err := s.Funds.Issue(chi.URLParam(r, "id"), req.Contributor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Deactivate closes a fund to new deposits and issuance.
func (s *Server) Deactivate(w http.ResponseWriter, r *http.Request) {
	if err := s.Funds.Deactivate(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetNAV values the fund at live prices.
func (s *Server) GetNAV(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	nav, err := s.Funds.NAV(id)
	if err != nil {
		writeError(w, err)
		return
	}
	pps, err := s.Funds.PricePerShare(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]decimal.Decimal{
		"nav":             nav,
		"price_per_share": pps,
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, errors.New("invalid request body: "+err.Error()))
		return false
	}
	return true
}

// statusFor maps engine errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, fund.ErrFundNotFound):
		return http.StatusNotFound
	case errors.Is(err, fund.ErrInvalidAllocation),
		errors.Is(err, fund.ErrInvalidFund),
		errors.Is(err, fund.ErrUnknownAsset),
		errors.Is(err, fund.ErrInvalidAmount),
		errors.Is(err, market.ErrNegativeInput):
		return http.StatusBadRequest
	case errors.Is(err, fund.ErrFundInactive):
		return http.StatusConflict
	case errors.Is(err, fund.ErrBelowMinimum),
		errors.Is(err, fund.ErrNoContribution):
		return http.StatusUnprocessableEntity
	case errors.Is(err, fund.ErrValuationUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeErrorStatus(w, statusFor(err), err)
}

func writeErrorStatus(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
