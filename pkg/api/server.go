package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/permlabs/dexgate/pkg/dex"
	"github.com/permlabs/dexgate/pkg/proxy"
	"github.com/permlabs/dexgate/pkg/solana"
	"github.com/permlabs/dexgate/pkg/storage"
	"github.com/permlabs/dexgate/pkg/util"
)

// Server exposes the gateway over REST and a WebSocket event feed.
type Server struct {
	proxy     *proxy.MarketProxy
	programID solana.Address
	journal   *storage.Journal
	router    *mux.Router
	hub       *Hub
	clock     util.Clock
	log       *zap.SugaredLogger
}

// NewServer wires the REST routes. journal may be nil to disable auditing.
func NewServer(p *proxy.MarketProxy, programID solana.Address, journal *storage.Journal, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	s := &Server{
		proxy:     p,
		programID: programID,
		journal:   journal,
		router:    mux.NewRouter(),
		hub:       NewHub(log),
		clock:     util.RealClock{},
		log:       log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/execute", s.handleExecute).Methods("POST")
	api.HandleFunc("/requests", s.handleRequests).Methods("GET")
	api.HandleFunc("/derive/{market}/{owner}", s.handleDerive).Methods("GET")

	s.router.HandleFunc("/ws", s.handleWebSocket)
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Start runs the hub and blocks serving HTTP on addr.
func (s *Server) Start(addr string) error {
	go s.hub.Run()

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})

	s.log.Infow("api_server_starting", "addr", addr)
	return http.ListenAndServe(addr, c.Handler(s.router))
}

// Handler returns the routed handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	payload, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid base64 data: %w", err))
		return
	}

	accounts := make([]proxy.Account, len(req.Accounts))
	for i, slot := range req.Accounts {
		key, err := solana.AddressFromBase58(slot.Pubkey)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("account %d: %w", i, err))
			return
		}
		accounts[i] = proxy.Account{Key: key, IsSigner: slot.IsSigner, IsWritable: slot.IsWritable}
		if slot.Owner != "" {
			owner, err := solana.AddressFromBase58(slot.Owner)
			if err != nil {
				writeError(w, http.StatusBadRequest, fmt.Errorf("account %d owner: %w", i, err))
				return
			}
			accounts[i].Owner = owner
		}
	}

	ix, _, _ := dex.Decode(payload)
	name := "unrecognized"
	if ix != nil {
		name = ix.Tag.String()
	}

	runErr := s.proxy.Run(r.Context(), accounts, payload)
	s.record(name, req.Accounts, runErr)

	if runErr != nil {
		writeJSON(w, statusFor(runErr), ExecuteResponse{
			Instruction: name,
			Error:       runErr.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, ExecuteResponse{Forwarded: true, Instruction: name})
}

// record journals the outcome and fans it out to WebSocket subscribers.
func (s *Server) record(instruction string, slots []AccountSlot, runErr error) {
	keys := make([]string, len(slots))
	for i, slot := range slots {
		keys[i] = slot.Pubkey
	}
	rec := &storage.Record{
		Time:        s.clock.Now().UnixMilli(),
		Instruction: instruction,
		Status:      "forwarded",
		Accounts:    keys,
	}
	if runErr != nil {
		rec.Status = "rejected"
		rec.Error = runErr.Error()
	}

	if s.journal != nil {
		if err := s.journal.Append(rec); err != nil {
			s.log.Warnw("journal_append_failed", "err", err)
		}
	}

	s.hub.BroadcastToChannel("requests", WSEvent{Channel: "requests", Data: RequestInfo{
		Seq:         rec.Seq,
		Time:        rec.Time,
		Instruction: rec.Instruction,
		Status:      rec.Status,
		Error:       rec.Error,
		Accounts:    rec.Accounts,
	}})
}

func (s *Server) handleRequests(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		writeJSON(w, http.StatusOK, []RequestInfo{})
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}

	records, err := s.journal.Recent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	infos := make([]RequestInfo, len(records))
	for i, rec := range records {
		infos[i] = RequestInfo{
			Seq:         rec.Seq,
			Time:        rec.Time,
			Instruction: rec.Instruction,
			Status:      rec.Status,
			Error:       rec.Error,
			Accounts:    rec.Accounts,
		}
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleDerive(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	market, err := solana.AddressFromBase58(vars["market"])
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("market: %w", err))
		return
	}
	owner, err := solana.AddressFromBase58(vars["owner"])
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("owner: %w", err))
		return
	}

	openOrders, bump := solana.FindProgramAddress(
		[][]byte{[]byte("open-orders"), market.Bytes(), owner.Bytes()}, s.programID)
	initAuthority, bumpInit := solana.FindProgramAddress(
		[][]byte{[]byte("open-orders-init"), market.Bytes()}, s.programID)

	writeJSON(w, http.StatusOK, DeriveResponse{
		Market:            market.String(),
		Owner:             owner.String(),
		OpenOrders:        openOrders.String(),
		Bump:              bump,
		InitAuthority:     initAuthority.String(),
		InitAuthorityBump: bumpInit,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusFor maps chain errors to HTTP codes: schema and decode problems are
// the caller's fault, policy and authorization failures are forbidden,
// anything else is a venue-side failure.
func statusFor(err error) int {
	switch {
	case errors.Is(err, proxy.ErrUnauthorizedUser), errors.Is(err, proxy.ErrInvalidReferral):
		return http.StatusForbidden
	case errors.Is(err, proxy.ErrNotEnoughAccounts),
		errors.Is(err, proxy.ErrCannotUnpack),
		errors.Is(err, proxy.ErrInvalidInstruction),
		errors.Is(err, proxy.ErrInvalidDexPid):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
