package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kikiluvv/slopblend/internal/ffmpeg"
	"github.com/kikiluvv/slopblend/internal/pipeline"
	"github.com/kikiluvv/slopblend/internal/timeline"
	"github.com/kikiluvv/slopblend/internal/transition"
)

const maxBodyBytes = 1 << 20

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))
	r.Get("/transitions", transitionsHandler(cfg))
	r.Post("/compile", compileHandler(cfg))
	r.Post("/blend", blendHandler(cfg))

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: Version,
			UptimeS: int64(time.Since(cfg.StartTime).Seconds()),
		})
	}
}

func transitionsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kinds := transition.Kinds()
		names := make([]string, len(kinds))
		for i, k := range kinds {
			names[i] = k.String()
		}
		WriteJSON(w, http.StatusOK, TransitionsResponse{
			Transitions: names,
			Default:     cfg.Default.Kind.String(),
			Duration:    cfg.Default.Duration,
		})
	}
}

func compileHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, policy, ok := decodeBlendRequest(w, r, cfg.Default)
		if !ok {
			return
		}

		compiled, err := cfg.Pipeline.Compile(r.Context(), req.Clips, policy)
		if err != nil {
			writePipelineError(w, err)
			return
		}

		WriteJSON(w, http.StatusOK, CompiledToResponse(compiled))
	}
}

func blendHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, policy, ok := decodeBlendRequest(w, r, cfg.Default)
		if !ok {
			return
		}

		ctx := r.Context()
		if cfg.BlendTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.BlendTimeout)
			defer cancel()
		}

		res, err := cfg.Pipeline.Blend(ctx, pipeline.BlendRequest{
			Clips:  req.Clips,
			Output: req.Output,
			Policy: policy,
		})
		if err != nil {
			writePipelineError(w, err)
			return
		}

		WriteJSON(w, http.StatusOK, BlendResponse{RunID: res.RunID, Output: res.Output})
	}
}

func decodeBlendRequest(w http.ResponseWriter, r *http.Request, def transition.Spec) (BlendRequest, transition.Policy, bool) {
	var req BlendRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return req, transition.Policy{}, false
	}

	policy, err := req.Policy(def)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), "INVALID_TRANSITION")
		return req, transition.Policy{}, false
	}

	return req, policy, true
}

// Policy resolves the request's transition fields, falling back to def
func (req BlendRequest) Policy(def transition.Spec) (transition.Policy, error) {
	if req.Transitions != nil {
		specs := make([]transition.Spec, len(req.Transitions))
		for i, t := range req.Transitions {
			kind, err := transition.ParseKind(t.Transition)
			if err != nil {
				return transition.Policy{}, fmt.Errorf("transitions[%d]: %w", i, err)
			}
			specs[i] = transition.Spec{Kind: kind, Duration: t.Duration}
			if specs[i].Duration <= 0 {
				specs[i].Duration = def.Duration
			}
		}
		return transition.PerJunction(specs), nil
	}

	spec := def
	if req.Transition != "" {
		kind, err := transition.ParseKind(req.Transition)
		if err != nil {
			return transition.Policy{}, err
		}
		spec.Kind = kind
	}
	if req.Duration > 0 {
		spec.Duration = req.Duration
	}
	return transition.Uniform(spec.Kind, spec.Duration), nil
}

func writePipelineError(w http.ResponseWriter, err error) {
	var (
		probeErr *timeline.ProbeError
		execErr  *ffmpeg.ExecutionError
	)

	switch {
	case timeline.IsValidation(err), errors.Is(err, pipeline.ErrNoOutput):
		WriteError(w, http.StatusBadRequest, err.Error(), "INVALID_INPUT")
	case errors.Is(err, context.DeadlineExceeded):
		WriteError(w, http.StatusGatewayTimeout, err.Error(), "TIMEOUT")
	case errors.As(err, &probeErr):
		WriteError(w, http.StatusUnprocessableEntity, err.Error(), "PROBE_FAILED")
	case errors.As(err, &execErr):
		WriteError(w, http.StatusBadGateway, err.Error(), "EXECUTION_FAILED")
	default:
		WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
	}
}
