package httpapi

import (
	"database/sql"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"officehub/internal/domain"
	"officehub/internal/repository"
)

// DirectoryHandler 办公室/员工目录 CRUD（贴着仓储的薄端点）
type DirectoryHandler struct {
	employees repository.EmployeesRepository
	offices   repository.OfficesRepository
	logger    *zap.Logger
}

func NewDirectoryHandler(employees repository.EmployeesRepository, offices repository.OfficesRepository, logger *zap.Logger) *DirectoryHandler {
	return &DirectoryHandler{employees: employees, offices: offices, logger: logger}
}

type employeeView struct {
	ID         int64  `json:"id"`
	UserID     *int64 `json:"user_id"`
	OfficeID   *int64 `json:"office_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	Role       string `json:"role,omitempty"`
	Department string `json:"department,omitempty"`
	Status     string `json:"status"`
}

type employeeRequest struct {
	UserID     *int64 `json:"user_id"`
	OfficeID   *int64 `json:"office_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Status     string `json:"status"`
}

func toEmployeeView(e *domain.Employee) *employeeView {
	v := &employeeView{
		ID:         e.ID,
		FirstName:  e.FirstName,
		LastName:   e.LastName,
		Email:      e.Email,
		Phone:      e.Phone.String,
		Role:       e.Role.String,
		Department: e.Department.String,
		Status:     e.Status,
	}
	if e.UserID.Valid {
		id := e.UserID.Int64
		v.UserID = &id
	}
	if e.OfficeID.Valid {
		id := e.OfficeID.Int64
		v.OfficeID = &id
	}
	return v
}

func applyEmployeeRequest(e *domain.Employee, req employeeRequest) {
	e.FirstName = req.FirstName
	e.LastName = req.LastName
	e.Email = req.Email
	e.Phone = sql.NullString{String: req.Phone, Valid: req.Phone != ""}
	e.Role = sql.NullString{String: req.Role, Valid: req.Role != ""}
	e.Department = sql.NullString{String: req.Department, Valid: req.Department != ""}
	if req.Status != "" {
		e.Status = req.Status
	}
	if req.UserID != nil {
		e.UserID = sql.NullInt64{Int64: *req.UserID, Valid: true}
	}
	if req.OfficeID != nil {
		e.OfficeID = sql.NullInt64{Int64: *req.OfficeID, Valid: true}
	}
}

// Employees GET|POST /api/v1/employees
func (h *DirectoryHandler) Employees(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		employees, err := h.employees.ListEmployees(r.Context(), r.URL.Query().Get("status"))
		if err != nil {
			writeError(w, err)
			return
		}
		views := make([]*employeeView, 0, len(employees))
		for _, e := range employees {
			views = append(views, toEmployeeView(e))
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{"employees": views, "total": len(views)}))
	case http.MethodPost:
		var req employeeRequest
		if err := readBodyJSON(r, 1<<20, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
			return
		}
		var e domain.Employee
		applyEmployeeRequest(&e, req)
		created, err := h.employees.CreateEmployee(r.Context(), &e)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, Ok(toEmployeeView(created)))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// EmployeeByID GET|PUT|DELETE /api/v1/employees/{id}
func (h *DirectoryHandler) EmployeeByID(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimPrefix(r.URL.Path, "/api/v1/employees/")
	id, err := parseID(raw)
	if err != nil || id == 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		e, err := h.employees.GetEmployee(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(toEmployeeView(e)))
	case http.MethodPut:
		e, err := h.employees.GetEmployee(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		var req employeeRequest
		if err := readBodyJSON(r, 1<<20, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
			return
		}
		applyEmployeeRequest(e, req)
		if err := h.employees.UpdateEmployee(r.Context(), e); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(toEmployeeView(e)))
	case http.MethodDelete:
		if err := h.employees.DeleteEmployee(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{"deleted": id}))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

type officeView struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
	Capacity int    `json:"capacity"`
}

type officeRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Capacity int    `json:"capacity"`
}

func toOfficeView(o *domain.Office) *officeView {
	return &officeView{
		ID:       o.ID,
		Name:     o.Name,
		Location: o.Location.String,
		Capacity: o.Capacity,
	}
}

// Offices GET|POST /api/v1/offices
func (h *DirectoryHandler) Offices(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		offices, err := h.offices.ListOffices(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		views := make([]*officeView, 0, len(offices))
		for _, o := range offices {
			views = append(views, toOfficeView(o))
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{"offices": views, "total": len(views)}))
	case http.MethodPost:
		var req officeRequest
		if err := readBodyJSON(r, 1<<20, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
			return
		}
		office := &domain.Office{
			Name:     req.Name,
			Location: sql.NullString{String: req.Location, Valid: req.Location != ""},
			Capacity: req.Capacity,
		}
		created, err := h.offices.CreateOffice(r.Context(), office)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, Ok(toOfficeView(created)))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// OfficeByID GET|PUT|DELETE /api/v1/offices/{id}
func (h *DirectoryHandler) OfficeByID(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimPrefix(r.URL.Path, "/api/v1/offices/")
	id, err := parseID(raw)
	if err != nil || id == 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		o, err := h.offices.GetOffice(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(toOfficeView(o)))
	case http.MethodPut:
		o, err := h.offices.GetOffice(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		var req officeRequest
		if err := readBodyJSON(r, 1<<20, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
			return
		}
		if req.Name != "" {
			o.Name = req.Name
		}
		o.Location = sql.NullString{String: req.Location, Valid: req.Location != ""}
		o.Capacity = req.Capacity
		if err := h.offices.UpdateOffice(r.Context(), o); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(toOfficeView(o)))
	case http.MethodDelete:
		if err := h.offices.DeleteOffice(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{"deleted": id}))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
