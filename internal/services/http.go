package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dpup/prefab/logging"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// APIPrefix is where Handler is mounted
const APIPrefix = "/api/v1/"

// Routes served by Handler
const (
	ComputePath = "/api/v1/trajectories"
	LatestPath  = "/api/v1/trajectories/{vehicle_id}"
)

const maxRequestBytes = 4 << 20

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Reason string `json:"reason,omitempty"`
}

// Handler routes the trajectory API. Unknown paths and wrong methods get the
// same JSON error body as failed calls.
func (s *TrajectoryService) Handler() (*runtime.ServeMux, error) {
	mux := runtime.NewServeMux(runtime.WithRoutingErrorHandler(routingError))
	if err := mux.HandlePath(http.MethodPost, ComputePath, s.handleCompute); err != nil {
		return nil, fmt.Errorf("failed to register %s: %w", ComputePath, err)
	}
	if err := mux.HandlePath(http.MethodGet, LatestPath, s.handleLatest); err != nil {
		return nil, fmt.Errorf("failed to register %s: %w", LatestPath, err)
	}
	return mux, nil
}

func (s *TrajectoryService) handleCompute(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	ctx := logging.EnsureLogger(r.Context())

	var req ComputeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(ctx, w, status.Errorf(codes.InvalidArgument, "invalid request body: %v", err))
		return
	}

	resp, err := s.Compute(ctx, &req)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, resp)
}

func (s *TrajectoryService) handleLatest(w http.ResponseWriter, r *http.Request, params map[string]string) {
	ctx := logging.EnsureLogger(r.Context())

	resp, err := s.GetLatest(ctx, params["vehicle_id"])
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, resp)
}

// routingError answers requests no route accepted
func routingError(ctx context.Context, _ *runtime.ServeMux, _ runtime.Marshaler, w http.ResponseWriter, r *http.Request, httpStatus int) {
	ctx = logging.EnsureLogger(ctx)
	body := ErrorResponse{Error: http.StatusText(httpStatus)}
	switch httpStatus {
	case http.StatusMethodNotAllowed:
		body.Code = codes.Unimplemented.String()
		body.Error = fmt.Sprintf("method %s not allowed on %s", r.Method, r.URL.Path)
	case http.StatusNotFound:
		body.Code = codes.NotFound.String()
		body.Error = fmt.Sprintf("unknown path %s", r.URL.Path)
	default:
		body.Code = codes.InvalidArgument.String()
	}
	writeJSON(ctx, w, httpStatus, body)
}

// writeError maps a status error onto its HTTP code the way the gateway does
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	st := status.Convert(err)
	body := ErrorResponse{
		Error: st.Message(),
		Code:  st.Code().String(),
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			body.Reason = info.GetReason()
		}
	}
	writeJSON(ctx, w, runtime.HTTPStatusFromCode(st.Code()), body)
}

func writeJSON(ctx context.Context, w http.ResponseWriter, code int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Errorw(ctx, "Failed to encode response", "error", err)
		http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(data); err != nil {
		logging.Errorw(ctx, "Failed to write response", "error", err)
	}
}
