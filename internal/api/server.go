// Package api exposes the public request/response contract over HTTP.
package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/eugenegl/solspy-sub000/internal/domain"
	"github.com/eugenegl/solspy-sub000/internal/solana"
	"github.com/eugenegl/solspy-sub000/internal/stats"
)

const defaultWindowDays = 7

const lamportsPerSol = 1e9

// Classifier resolves a raw address string.
type Classifier interface {
	Classify(ctx context.Context, raw string) domain.AddressClassification
}

// PortfolioSource assembles a wallet's holdings.
type PortfolioSource interface {
	Portfolio(ctx context.Context, wallet string) *domain.Portfolio
}

// StatsSource computes windowed sandwich rollups and listings.
type StatsSource interface {
	Snapshot(ctx context.Context, windowDays int) (*domain.StatsSnapshot, error)
	Recent(ctx context.Context, windowDays, limit int) ([]*domain.SandwichEvent, error)
}

// NetworkSource serves the cached recent blockhash / fee anchor.
type NetworkSource interface {
	Latest(ctx context.Context) *solana.LatestBlockhash
}

// Server wires the core components behind the HTTP contract.
type Server struct {
	classifier Classifier
	portfolio  PortfolioSource
	stats      StatsSource
	network    NetworkSource
	logger     *log.Logger
}

// NewServer creates an API server over the given components.
func NewServer(classifier Classifier, portfolio PortfolioSource, statsSource StatsSource, network NetworkSource, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		classifier: classifier,
		portfolio:  portfolio,
		stats:      statsSource,
		network:    network,
		logger:     logger,
	}
}

// Router builds the gin engine with all public routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	s.RegisterRoutes(r)
	return r
}

// RegisterRoutes attaches the public endpoints.
func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/search", s.handleSearch)
	r.GET("/sandwiches", s.handleSandwiches)
	r.GET("/network", s.handleNetwork)
}

// handleNetwork returns the cached recent blockhash, for clients that
// need a fresh fee anchor. 503 until the first successful refresh.
func (s *Server) handleNetwork(c *gin.Context) {
	latest := s.network.Latest(c.Request.Context())
	if latest == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "network state not yet available"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"blockhash":               latest.Blockhash,
		"last_valid_block_height": latest.LastValidBlockHeight,
		"slot":                    latest.Slot,
	})
}

// searchResponse is the payload for GET /search.
type searchResponse struct {
	Address string             `json:"address"`
	Type    domain.AddressKind `json:"type"`
	Balance *domain.Asset      `json:"balance,omitempty"`
	Assets  []domain.Asset     `json:"assets,omitempty"`
}

func (s *Server) handleSearch(c *gin.Context) {
	address := strings.TrimSpace(c.Query("address"))
	if address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address is required"})
		return
	}

	cls := s.classifier.Classify(c.Request.Context(), address)
	if cls.Kind == domain.KindUnknown {
		c.JSON(http.StatusNotFound, gin.H{"error": "address could not be resolved"})
		return
	}

	resp := searchResponse{Address: address, Type: cls.Kind}
	if cls.Kind == domain.KindWallet {
		p := s.portfolio.Portfolio(c.Request.Context(), address)
		resp.Balance = &p.Native
		resp.Assets = p.Tokens
	}

	c.JSON(http.StatusOK, resp)
}

// sandwichView is a SandwichEvent with lamport amounts converted to SOL
// for presentation.
type sandwichView struct {
	TokenAddress   string  `json:"token_address"`
	AttackerWallet string  `json:"attacker_wallet"`
	SolDrained     float64 `json:"sol_drained"`
	BuyTxHash      string  `json:"buy_tx_hash"`
	SellTxHash     string  `json:"sell_tx_hash"`
	VictimWallet   string  `json:"victim_wallet"`
	VictimAmountIn float64 `json:"victim_amount_in"`
	VictimTxHash   string  `json:"victim_tx_hash"`
	Slot           int64   `json:"slot"`
	OccurredAt     int64   `json:"occurred_at"`
	Source         string  `json:"source"`
	LiquidityPool  string  `json:"liquidity_pool,omitempty"`
}

// sandwichesResponse is the payload for GET /sandwiches.
type sandwichesResponse struct {
	Stats      *domain.StatsSnapshot `json:"stats"`
	Sandwiches []sandwichView        `json:"sandwiches"`
}

func (s *Server) handleSandwiches(c *gin.Context) {
	days := defaultWindowDays
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be an integer"})
			return
		}
		days = parsed
	}

	ctx := c.Request.Context()

	snapshot, err := s.stats.Snapshot(ctx, days)
	if err != nil {
		if errors.Is(err, stats.ErrWindowOutOfRange) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.logger.Printf("sandwich snapshot failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats unavailable"})
		return
	}

	events, err := s.stats.Recent(ctx, days, stats.MaxPageSize)
	if err != nil {
		s.logger.Printf("sandwich listing failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats unavailable"})
		return
	}

	views := make([]sandwichView, 0, len(events))
	for _, e := range events {
		views = append(views, sandwichView{
			TokenAddress:   e.TokenAddress,
			AttackerWallet: e.AttackerWallet,
			SolDrained:     float64(e.SolDrained) / lamportsPerSol,
			BuyTxHash:      e.BuyTxHash,
			SellTxHash:     e.SellTxHash,
			VictimWallet:   e.VictimWallet,
			VictimAmountIn: float64(e.VictimAmountIn) / lamportsPerSol,
			VictimTxHash:   e.VictimTxHash,
			Slot:           e.Slot,
			OccurredAt:     e.OccurredAt,
			Source:         e.Source,
			LiquidityPool:  e.LiquidityPool,
		})
	}

	c.JSON(http.StatusOK, sandwichesResponse{Stats: snapshot, Sandwiches: views})
}
