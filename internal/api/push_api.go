// Package api exposes synchronous push dispatch and dispatch record lookup over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/tinywideclouds/go-microservice-base/pkg/middleware"
	"github.com/tinywideclouds/go-microservice-base/pkg/response"
	"github.com/tinywideclouds/go-sns-push-service/internal/payload"
	"github.com/tinywideclouds/go-sns-push-service/pkg/dispatch"
	"github.com/tinywideclouds/go-sns-push-service/pkg/push"
	urn "github.com/tinywideclouds/go-platform/pkg/net/v1"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 100
)

type PushAPI struct {
	Adapter dispatch.Adapter
	// Store is optional; without it sends are not recorded and lookups return 404.
	Store  dispatch.ResultStore
	Logger *slog.Logger
}

func NewPushAPI(adapter dispatch.Adapter, store dispatch.ResultStore, logger *slog.Logger) *PushAPI {
	return &PushAPI{
		Adapter: adapter,
		Store:   store,
		Logger:  logger.With("component", "PushAPI"),
	}
}

// SendResponse is the body returned by Send.
type SendResponse struct {
	RequestID string                `json:"request_id"`
	Results   []push.DispatchResult `json:"results"`
}

// Send dispatches a push.SendRequest synchronously and returns the per-device results.
func (api *PushAPI) Send(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := middleware.GetUserHandleFromContext(ctx)
	if !ok {
		response.WriteJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req push.SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Logger.Warn("Send: JSON Decode failed", "err", err)
		response.WriteJSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if len(req.Installations) == 0 {
		response.WriteJSONError(w, http.StatusBadRequest, "missing installations")
		return
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	results, err := api.Adapter.Send(ctx, req.Notification, req.Installations)
	if err != nil {
		api.Logger.Error("Send: payload construction failed", "request_id", req.RequestID, "err", err)
		if errors.Is(err, payload.ErrUnserializable) && len(results) == 0 {
			response.WriteJSONError(w, http.StatusUnprocessableEntity, "notification data is not serializable")
			return
		}
	}

	record := push.NewDispatchRecord(req.RequestID, requester(userID), results)
	if api.Store != nil {
		if err := api.Store.Save(ctx, record); err != nil {
			api.Logger.Warn("Send: failed to save dispatch record", "request_id", req.RequestID, "err", err)
		}
	}
	api.Logger.Info("Send: dispatched", "request_id", req.RequestID, "transmitted", record.Transmitted, "failed", record.Failed)

	writeJSON(w, http.StatusOK, SendResponse{RequestID: req.RequestID, Results: results})
}

// GetRecord returns the stored dispatch record for {requestID}.
func (api *PushAPI) GetRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := middleware.GetUserHandleFromContext(ctx); !ok {
		response.WriteJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	requestID := r.PathValue("requestID")
	if requestID == "" {
		response.WriteJSONError(w, http.StatusBadRequest, "missing request id")
		return
	}
	if api.Store == nil {
		response.WriteJSONError(w, http.StatusNotFound, "dispatch record not found")
		return
	}

	record, err := api.Store.Fetch(ctx, requestID)
	if err != nil {
		if errors.Is(err, dispatch.ErrNotFound) {
			response.WriteJSONError(w, http.StatusNotFound, "dispatch record not found")
			return
		}
		api.Logger.Error("GetRecord: fetch failed", "request_id", requestID, "err", err)
		response.WriteJSONError(w, http.StatusInternalServerError, "storage failed")
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// ListRecent returns the newest dispatch records. ?limit= is capped at 100.
func (api *PushAPI) ListRecent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := middleware.GetUserHandleFromContext(ctx); !ok {
		response.WriteJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := defaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.WriteJSONError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(n, maxRecentLimit)
	}
	if api.Store == nil {
		writeJSON(w, http.StatusOK, []*push.DispatchRecord{})
		return
	}

	records, err := api.Store.Recent(ctx, limit)
	if err != nil {
		api.Logger.Error("ListRecent: query failed", "err", err)
		response.WriteJSONError(w, http.StatusInternalServerError, "storage failed")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// requester normalizes the caller handle; handles that are not URNs are kept as-is.
func requester(userID string) string {
	if u, err := urn.Parse(userID); err == nil {
		return u.String()
	}
	return userID
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
