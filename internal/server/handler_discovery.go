package server

import "net/http"

type endpointInfo struct {
	Path        string   `json:"path"`
	Methods     []string `json:"methods"`
	Description string   `json:"description"`
}

type discoveryResponse struct {
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	Description string         `json:"description"`
	Endpoints   []endpointInfo `json:"endpoints"`
}

func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	respondOK(w, reqID, discoveryResponse{
		Name:        "schedsim API",
		Version:     "v1",
		Description: "Discrete-time CPU scheduling simulator (FCFS, RR, SRTF, SJF)",
		Endpoints: []endpointInfo{
			{"/api/v1/simulations", []string{"GET", "POST"}, "Run and list simulations. POST accepts ?dry_run=true to skip persisting"},
			{"/api/v1/simulations/{id}", []string{"GET", "DELETE"}, "Single simulation run with full result"},
			{"/api/v1/simulations/{id}/report", []string{"GET"}, "Rendered report; ?format=text|csv|json|yaml"},
			{"/api/v1/comparisons", []string{"POST"}, "Run one workload under several algorithms"},
			{"/api/v1/health", []string{"GET"}, "Server health and version"},
			{"/ui/", []string{"GET"}, "HTML dashboard of stored simulations"},
		},
	})
}
