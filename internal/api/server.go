package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"cycles/internal/config"
	"cycles/internal/game"
	"cycles/internal/ledger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const maxRememberedKeys = 256

type Server struct {
	cfg     config.APIConfig
	log     *slog.Logger
	session *game.Session
	ledger  ledger.Store
	hub     *Hub
	mux     *chi.Mux

	idemMu   sync.Mutex
	idem     map[string]purchaseResult
	idemKeys []string
}

type purchaseResult struct {
	status int
	body   any
}

// New wires the HTTP surface around a running session. store may be nil
// when no ledger is configured.
func New(cfg config.APIConfig, logger *slog.Logger, session *game.Session, store ledger.Store, hub *Hub) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:     cfg,
		log:     logger,
		session: session,
		ledger:  store,
		hub:     hub,
		mux:     chi.NewRouter(),
		idem:    make(map[string]purchaseResult),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "run_id": s.session.RunID()})
	})

	r.Route("/v1", func(r chi.Router) {
		// the event stream is long-lived; keep it out of the request timeout
		r.Get("/events", s.handleEvents)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))
			r.Get("/state", s.handleState)
			r.Get("/offers", s.handleOffers)
			r.Post("/purchase", s.handlePurchase)
			r.Post("/sockets/color", s.handleSocketColor)
			r.Get("/ledger", s.handleLedger)
		})
	})
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleOffers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"offers": s.session.Offers()})
}

func (s *Server) handlePurchase(w http.ResponseWriter, r *http.Request) {
	var in game.Purchase
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	key := idempotencyKey(r)
	w.Header().Set("Idempotency-Key", key)
	if prev, ok := s.rememberedPurchase(key); ok {
		writeJSON(w, prev.status, prev.body)
		return
	}

	in.Upgrade = in.Upgrade.Normalize()
	if err := s.session.Purchase(in); err != nil {
		status := domainStatus(err)
		if status < http.StatusInternalServerError {
			s.rememberPurchase(key, purchaseResult{status: status, body: errorBody(err.Error())})
		}
		writeDomainError(w, err)
		return
	}
	snap := s.session.Snapshot()
	body := map[string]any{
		"upgrade": in.Upgrade,
		"cost":    in.Cost,
		"wallet":  snap.Wallet,
		"offers":  snap.Offers,
	}
	s.rememberPurchase(key, purchaseResult{status: http.StatusOK, body: body})
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleSocketColor(w http.ResponseWriter, r *http.Request) {
	var in game.SocketColorInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.session.SetSocketColor(in); err != nil {
		writeDomainError(w, err)
		return
	}
	snap := s.session.Snapshot()
	ring := snap.Rings[in.Ring]
	writeJSON(w, http.StatusOK, ring.Sockets[in.Socket])
}

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	if s.ledger == nil {
		writeError(w, http.StatusNotFound, "ledger disabled")
		return
	}
	limit := 100
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 1000 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 1000")
			return
		}
		limit = parsed
	}
	runID := strings.TrimSpace(r.URL.Query().Get("run_id"))
	if runID == "" {
		runID = s.session.RunID()
	}
	if _, err := uuid.Parse(runID); err != nil {
		writeError(w, http.StatusBadRequest, "run_id must be a UUID")
		return
	}
	entries, err := s.ledger.ListByRun(r.Context(), runID, limit)
	if err != nil {
		s.log.Error("ledger list failed", slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"run_id": runID, "entries": entries})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		writeError(w, http.StatusNotFound, "event stream disabled")
		return
	}
	s.hub.ServeWs(w, r)
}

func (s *Server) rememberedPurchase(key string) (purchaseResult, bool) {
	s.idemMu.Lock()
	defer s.idemMu.Unlock()
	res, ok := s.idem[key]
	return res, ok
}

func (s *Server) rememberPurchase(key string, res purchaseResult) {
	s.idemMu.Lock()
	defer s.idemMu.Unlock()
	if _, ok := s.idem[key]; ok {
		return
	}
	s.idem[key] = res
	s.idemKeys = append(s.idemKeys, key)
	if len(s.idemKeys) > maxRememberedKeys {
		delete(s.idem, s.idemKeys[0])
		s.idemKeys = s.idemKeys[1:]
	}
}

func domainStatus(err error) int {
	switch {
	case errors.Is(err, game.ErrInsufficientFunds):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrColorLocked):
		return http.StatusForbidden
	case errors.Is(err, game.ErrRingNotFound), errors.Is(err, game.ErrSocketNotFound), errors.Is(err, game.ErrUpgradeNotOffered):
		return http.StatusNotFound
	case errors.Is(err, game.ErrStaleOffer):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	writeError(w, domainStatus(err), err.Error())
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func errorBody(message string) map[string]any {
	return map[string]any{"error": strings.TrimSpace(message)}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody(message))
}

func idempotencyKey(r *http.Request) string {
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if key != "" {
		return key
	}
	return uuid.NewString()
}
