package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"pulse-node/pkg/defaults"
	perrors "pulse-node/pkg/errors"
	"pulse-node/pkg/log"
	"pulse-node/pkg/models"
	"pulse-node/pkg/types"

	"github.com/gorilla/mux"
)

// Health reports that the service is alive.
func (api *ClusterAPI) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.HealthResponse{
		Status:   "healthy",
		Service:  defaults.ServiceName,
		Instance: api.instance,
	})
}

// ListNodes returns the aggregated snapshot of every node.
func (api *ClusterAPI) ListNodes(w http.ResponseWriter, r *http.Request) {
	states := api.svc.Nodes(r.Context())

	writeJSON(w, http.StatusOK, types.NewNodeList(states))
}

// GetNode returns one node with its GPU readings.
func (api *ClusterAPI) GetNode(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	state, err := api.svc.Node(r.Context(), id)
	if err != nil {
		api.writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, types.NewNodeDetail(state))
}

// ApplyAction runs a lifecycle action against a node.
func (api *ClusterAPI) ApplyAction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	action := models.LifecycleAction(vars["action"])

	transition, err := api.svc.Apply(r.Context(), vars["id"], action)
	if err != nil {
		api.writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, types.NewTransitionResponse(action, transition))
}

// ClusterStatus returns the fleet summary.
func (api *ClusterAPI) ClusterStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.NewClusterStatus(api.svc.Status(r.Context())))
}

func (api *ClusterAPI) notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, types.ErrorResponse{Error: fmt.Sprintf("no route for %s", r.URL.Path)})
}

func (api *ClusterAPI) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, types.ErrorResponse{Error: fmt.Sprintf("method %s not allowed", r.Method)})
}

func (api *ClusterAPI) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	if status == http.StatusInternalServerError {
		log.GetLogger(r.Context()).WithError(err).Error("request failed")
	}

	writeJSON(w, status, types.ErrorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, perrors.ErrNodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, perrors.ErrFaultInjectionDisabled):
		return http.StatusForbidden
	case errors.Is(err, perrors.ErrUnknownAction), errors.Is(err, perrors.ErrNodeIDRequired),
		errors.Is(err, perrors.ErrInvalidNodeID):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
