package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/manifest-network/powchain/internal/ledger"
	"github.com/manifest-network/powchain/internal/models"
	"github.com/manifest-network/powchain/internal/validator"
)

// Chain is the read-only ledger surface exposed over HTTP.
type Chain interface {
	ID() uuid.UUID
	Len() int
	Block(i int) (models.Block, error)
	Blocks() []models.Block
	Verify() error
}

type BlocksResponse struct {
	LedgerID string         `json:"ledger_id"`
	Length   int            `json:"length"`
	Blocks   []models.Block `json:"blocks"`
}

type ValidationResponse struct {
	LedgerID string `json:"ledger_id"`
	Valid    bool   `json:"valid"`
	Kind     string `json:"kind,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func NewRouter(chain Chain, gatherer prometheus.Gatherer) *mux.Router {
	h := &handlers{chain: chain}

	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.HandleFunc("/blocks", h.listBlocks).Methods(http.MethodGet)
	r.HandleFunc("/blocks/{id}", h.getBlock).Methods(http.MethodGet)
	r.HandleFunc("/chain/validate", h.validateChain).Methods(http.MethodGet)
	return r
}

type handlers struct {
	chain Chain
}

func (h *handlers) listBlocks(w http.ResponseWriter, _ *http.Request) {
	blocks := h.chain.Blocks()
	writeJSON(w, http.StatusOK, BlocksResponse{
		LedgerID: h.chain.ID().String(),
		Length:   len(blocks),
		Blocks:   blocks,
	})
}

// getBlock looks a block up by its 1-based id.
func (h *handlers) getBlock(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil || id == 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "block id must be a positive integer"})
		return
	}

	block, err := h.chain.Block(int(id - 1))
	if errors.Is(err, ledger.ErrIndexOutOfRange) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "block " + strconv.FormatUint(id, 10) + " not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, block)
}

func (h *handlers) validateChain(w http.ResponseWriter, _ *http.Request) {
	resp := ValidationResponse{LedgerID: h.chain.ID().String(), Valid: true}
	if err := h.chain.Verify(); err != nil {
		resp.Valid = false
		resp.Kind = validator.KindOf(err).String()
		resp.Reason = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to write response", "error", err)
	}
}
