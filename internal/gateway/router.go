// Package gateway exposes the HTTP surface: the live feed stream, query
// endpoints over persisted records and operational endpoints.
package gateway

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"nft-auction-feed/internal/broker"
	"nft-auction-feed/internal/observability"
	"nft-auction-feed/internal/storage"
)

// Deps wires the router to its collaborators.
type Deps struct {
	Libraries storage.LibraryStore
	NFTs      storage.NFTStore
	Bids      storage.BidStore
	Winners   storage.WinnerStore

	Broker  broker.Broker
	Logger  *log.Logger
	Metrics *observability.Metrics

	// Healthy gates /healthz. Nil means always healthy.
	Healthy func() bool
}

type router struct {
	broker  broker.Broker
	logger  *log.Logger
	metrics *observability.Metrics
}

// NewRouter builds the HTTP handler.
func NewRouter(deps Deps) http.Handler {
	rt := &router{
		broker:  deps.Broker,
		logger:  deps.Logger,
		metrics: deps.Metrics,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	// ---------------- HEALTH ----------------

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if deps.Healthy != nil && !deps.Healthy() {
			http.Error(w, "degraded", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// ---------------- METRICS ----------------

	r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	// ---------------- LIVE FEED (SSE) ----------------

	r.Get("/events", rt.handleEvents)

	// ---------------- QUERIES ----------------

	r.Get("/collections/{address}", rt.addressQuery(func(ctx context.Context, address string) (any, error) {
		return deps.Libraries.GetByAddress(ctx, address)
	}))

	r.Get("/nfts/{address}", rt.addressQuery(func(ctx context.Context, address string) (any, error) {
		return deps.NFTs.GetByLibraryAddress(ctx, address)
	}))

	r.Get("/placed-bids/{address}", rt.addressQuery(func(ctx context.Context, address string) (any, error) {
		return deps.Bids.GetByNFTAddress(ctx, address)
	}))

	r.Get("/placed-bids/bidder/{address}", rt.addressQuery(func(ctx context.Context, address string) (any, error) {
		return deps.Bids.GetByBidder(ctx, address)
	}))

	r.Get("/winners/{address}", rt.addressQuery(func(ctx context.Context, address string) (any, error) {
		return deps.Winners.GetByNFTName(ctx, address)
	}))

	return r
}

// addressQuery validates the {address} parameter and serves the fetched
// rows. No rows is a 200 with an empty array, never null.
func (rt *router) addressQuery(fetch func(ctx context.Context, address string) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		address := chi.URLParam(r, "address")
		if err := validateAddress(address); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		rows, err := fetch(r.Context(), address)
		if err != nil {
			rt.logger.Printf("[gateway] query %s: %v", r.URL.Path, err)
			writeError(w, http.StatusInternalServerError, "failed to fetch records")
			return
		}

		writeJSON(w, http.StatusOK, rows)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}
	// A nil slice marshals to null; clients expect an array.
	if string(data) == "null" {
		data = []byte("[]")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
