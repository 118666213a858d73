package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"battlesim/internal/batch"
	"battlesim/internal/combat"
	"battlesim/internal/config"
	"battlesim/internal/util"
)

const maxBatchRuns = 10000

// battleNamespace scopes the name-based battle ids.
var battleNamespace = uuid.MustParse("6f0d5c8e-3b1a-4c52-9a57-2d8e4b0f7c11")

type Report struct {
	BattleID string         `json:"battle_id"`
	Seed     int64          `json:"seed"`
	Outcome  combat.Outcome `json:"outcome"`
}

type BatchReport struct {
	BattleID string        `json:"battle_id"`
	Summary  batch.Summary `json:"summary"`
}

type Handler struct {
	log *zap.Logger
}

func NewHandler(log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{log: log}
}

// BattleID derives a stable id from the seed and the prepared scenario, so
// identical requests get identical ids.
func BattleID(sc *config.Scenario) string {
	body, _ := json.Marshal(sc)
	name := strconv.FormatInt(sc.Seed, 10) + ":" + string(body)
	return uuid.NewSHA1(battleNamespace, []byte(name)).String()
}

// Simulate handles POST /api/battles/simulate. An optional ?seed= query
// parameter overrides the scenario seed.
func (h *Handler) Simulate(c *gin.Context) {
	sc, in, ok := h.bindScenario(c)
	if !ok {
		return
	}
	id := BattleID(sc)
	out := combat.Simulate(in, util.New(sc.Seed), combat.WithLogger(h.log.With(zap.String("battle", id))))
	c.JSON(http.StatusOK, Report{BattleID: id, Seed: sc.Seed, Outcome: out})
}

// Batch handles POST /api/battles/batch?runs=N&workers=W.
func (h *Handler) Batch(c *gin.Context) {
	runs, err := strconv.Atoi(c.DefaultQuery("runs", "100"))
	if err != nil || runs <= 0 || runs > maxBatchRuns {
		c.JSON(http.StatusBadRequest, gin.H{"error": "runs must be between 1 and " + strconv.Itoa(maxBatchRuns)})
		return
	}
	workers, err := strconv.Atoi(c.DefaultQuery("workers", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid workers"})
		return
	}
	sc, in, ok := h.bindScenario(c)
	if !ok {
		return
	}
	sum, err := batch.Run(c.Request.Context(), in, runs, sc.Seed, workers)
	if err != nil {
		h.log.Warn("batch aborted", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, BatchReport{BattleID: BattleID(sc), Summary: sum})
}

func (h *Handler) bindScenario(c *gin.Context) (*config.Scenario, combat.Input, bool) {
	var sc config.Scenario
	if err := c.ShouldBindJSON(&sc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, combat.Input{}, false
	}
	if s := c.Query("seed"); s != "" {
		seed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid seed"})
			return nil, combat.Input{}, false
		}
		sc.Seed = seed
	}
	in, err := prepare(&sc)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, config.ErrInvalidScenario) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return nil, combat.Input{}, false
	}
	return &sc, in, true
}

func prepare(sc *config.Scenario) (combat.Input, error) {
	if err := sc.Prepare(); err != nil {
		return combat.Input{}, err
	}
	return sc.BattleInput()
}
