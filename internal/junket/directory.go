package junket

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/junketops/junket-engine/internal/model"
)

// CreateCustomerRequest is the JSON body for POST /customers.
type CreateCustomerRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	AgentID string `json:"agentId"`
	Notes   string `json:"notes"`
}

// CreateAgentRequest is the JSON body for POST /agents.
type CreateAgentRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// CreateStaffRequest is the JSON body for POST /staff.
type CreateStaffRequest struct {
	Name     string `json:"name"`
	Position string `json:"position"`
	Phone    string `json:"phone"`
}

// --- Customers ---

// CreateCustomer handles POST /api/v1/customers
func (s *Service) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if err := decode(r, &req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, "name is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if req.AgentID != "" {
		if _, err := s.store.GetAgent(ctx, req.AgentID); err != nil {
			s.writeStoreError(w, r, "agent", err)
			return
		}
	}

	c := &model.Customer{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(req.Name),
		Phone:     req.Phone,
		Email:     req.Email,
		AgentID:   req.AgentID,
		Notes:     req.Notes,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateCustomer(ctx, c); err != nil {
		s.writeStoreError(w, r, "customer", err)
		return
	}

	s.logger.Info("customer created", "id", c.ID, "agent_id", c.AgentID)
	writeJSON(w, http.StatusCreated, c)
}

// ListCustomers handles GET /api/v1/customers
func (s *Service) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := s.store.ListCustomers(r.Context())
	if err != nil {
		s.writeStoreError(w, r, "customers", err)
		return
	}
	writeJSON(w, http.StatusOK, customers)
}

// DeleteCustomer handles DELETE /api/v1/customers/{customerID}
func (s *Service) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "customerID")
	if err := s.store.DeleteCustomer(r.Context(), id); err != nil {
		s.writeStoreError(w, r, "customer", err)
		return
	}
	s.logger.Info("customer deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// --- Agents ---

// CreateAgent handles POST /api/v1/agents
func (s *Service) CreateAgent(w http.ResponseWriter, r *http.Request) {
	var req CreateAgentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, "name is required", http.StatusBadRequest)
		return
	}

	a := &model.Agent{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(req.Name),
		Phone:     req.Phone,
		Email:     req.Email,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateAgent(r.Context(), a); err != nil {
		s.writeStoreError(w, r, "agent", err)
		return
	}

	s.logger.Info("agent created", "id", a.ID)
	writeJSON(w, http.StatusCreated, a)
}

// ListAgents handles GET /api/v1/agents
func (s *Service) ListAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := s.store.ListAgents(r.Context())
	if err != nil {
		s.writeStoreError(w, r, "agents", err)
		return
	}
	writeJSON(w, http.StatusOK, agents)
}

// DeleteAgent handles DELETE /api/v1/agents/{agentID}
func (s *Service) DeleteAgent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "agentID")
	if err := s.store.DeleteAgent(r.Context(), id); err != nil {
		s.writeStoreError(w, r, "agent", err)
		return
	}
	s.logger.Info("agent deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// --- Staff ---

// CreateStaff handles POST /api/v1/staff
func (s *Service) CreateStaff(w http.ResponseWriter, r *http.Request) {
	var req CreateStaffRequest
	if err := decode(r, &req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, "name is required", http.StatusBadRequest)
		return
	}

	st := &model.Staff{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(req.Name),
		Position:  req.Position,
		Phone:     req.Phone,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateStaff(r.Context(), st); err != nil {
		s.writeStoreError(w, r, "staff", err)
		return
	}

	s.logger.Info("staff created", "id", st.ID)
	writeJSON(w, http.StatusCreated, st)
}

// ListStaff handles GET /api/v1/staff
func (s *Service) ListStaff(w http.ResponseWriter, r *http.Request) {
	staff, err := s.store.ListStaff(r.Context())
	if err != nil {
		s.writeStoreError(w, r, "staff", err)
		return
	}
	writeJSON(w, http.StatusOK, staff)
}

// DeleteStaff handles DELETE /api/v1/staff/{staffID}
func (s *Service) DeleteStaff(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "staffID")
	if err := s.store.DeleteStaff(r.Context(), id); err != nil {
		s.writeStoreError(w, r, "staff", err)
		return
	}
	s.logger.Info("staff deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}
