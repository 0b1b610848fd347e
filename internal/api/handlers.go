// Package api exposes HTTP handlers for the litterbox service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"example.com/litterbox/internal/auth"
	"example.com/litterbox/internal/domain"
)

const (
	// dateTimeLayout is the timestamp format accepted by the usage endpoint.
	dateTimeLayout = "2006-01-02T15:04:05"

	defaultUsageLimit = 1000
	maxUsageLimit     = 1000
)

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service *domain.Service
	authCfg auth.Config
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service, authCfg auth.Config) *Handler {
	return &Handler{service: service, authCfg: authCfg}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/register", h.register)
	mux.HandleFunc("/v1/login", h.login)
	mux.HandleFunc("/v1/cats", h.cats)
	mux.HandleFunc("/v1/cats/", h.catSubresource)
	mux.HandleFunc("/v1/litterboxes", h.litterboxes)
	mux.HandleFunc("/v1/edge-devices", h.edgeDevices)
	mux.HandleFunc("/healthz", healthz)
}

// PublicRoutes reports which paths bypass bearer-token authentication.
func PublicRoutes(r *http.Request) bool {
	switch r.URL.Path {
	case "/v1/register", "/v1/login", "/healthz":
		return true
	}
	return false
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "unsupported method")
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.service.RegisterUser(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateUser) {
			writeError(w, http.StatusConflict, "username or email already taken")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, RegisterResponse{ID: user.ID, Username: user.Username})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "unsupported method")
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "unable to parse body")
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid username or password")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	token, err := auth.Issue(user.ID, h.authCfg, time.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{AccessToken: token})
}

func (h *Handler) cats(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createCat(w, r)
	case http.MethodGet:
		h.listCats(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "unsupported method")
	}
}

func (h *Handler) catSubresource(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/cats/")
	parts := strings.Split(rest, "/")
	if len(parts) == 2 && parts[1] == "litterbox-usage" && parts[0] != "" {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "unsupported method")
			return
		}
		h.listUsage(w, r, parts[0])
		return
	}
	writeError(w, http.StatusNotFound, "not found")
}

func (h *Handler) createCat(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var req CreateCatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "unable to parse body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	cat, err := h.service.CreateCat(r.Context(), claims.Subject, req.Name, req.Breed, req.Age)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, toCatView(*cat))
}

func (h *Handler) listCats(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	cats, err := h.service.ListCats(r.Context(), claims.Subject)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	views := make([]CatView, 0, len(cats))
	for _, cat := range cats {
		views = append(views, toCatView(cat))
	}
	writeJSON(w, http.StatusOK, ListCatsResponse{Cats: views})
}

func (h *Handler) litterboxes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "unsupported method")
		return
	}

	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var req CreateLitterboxRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "unable to parse body")
		return
	}
	if strings.TrimSpace(req.CatID) == "" || strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "cat_id and name are required")
		return
	}

	box, err := h.service.CreateLitterbox(r.Context(), claims.Subject, req.CatID, req.Name)
	if err != nil {
		writeOwnershipError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, LitterboxView{ID: box.ID, CatID: box.CatID, Name: box.Name})
}

func (h *Handler) edgeDevices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "unsupported method")
		return
	}

	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var req RegisterDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "unable to parse body")
		return
	}
	if strings.TrimSpace(req.DeviceID) == "" || strings.TrimSpace(req.LitterboxID) == "" {
		writeError(w, http.StatusBadRequest, "device_id and litterbox_id are required")
		return
	}

	device, err := h.service.RegisterEdgeDevice(r.Context(), claims.Subject, req.DeviceID, req.LitterboxID, req.Name, req.DeviceType)
	if err != nil {
		writeOwnershipError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, DeviceView{
		ID:          device.ID,
		LitterboxID: device.LitterboxID,
		Name:        device.DeviceName,
		DeviceType:  device.DeviceType,
	})
}

func (h *Handler) listUsage(w http.ResponseWriter, r *http.Request, catID string) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	start, err := time.Parse(dateTimeLayout, r.URL.Query().Get("start_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "start_date must be formatted as 2006-01-02T15:04:05")
		return
	}
	end, err := time.Parse(dateTimeLayout, r.URL.Query().Get("end_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "end_date must be formatted as 2006-01-02T15:04:05")
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "end_date precedes start_date")
		return
	}

	limit := defaultUsageLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if parsed > maxUsageLimit {
			parsed = maxUsageLimit
		}
		limit = parsed
	}

	records, err := h.service.ListUsage(r.Context(), claims.Subject, catID, start, end, limit)
	if err != nil {
		writeOwnershipError(w, err)
		return
	}

	views := make([]UsageView, 0, len(records))
	for _, rec := range records {
		views = append(views, UsageView{
			ID:              rec.ID,
			EnterTime:       rec.EnterTime,
			ExitTime:        rec.ExitTime,
			DurationMinutes: rec.DurationMinutes,
			CatWeight:       rec.CatWeight,
			DeviceName:      rec.DeviceName,
			LitterboxName:   rec.LitterboxName,
		})
	}
	writeJSON(w, http.StatusOK, UsageResponse{UsageData: views})
}

func writeOwnershipError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrNotOwner):
		writeError(w, http.StatusForbidden, "not owned by caller")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// RegisterRequest is the payload for POST /v1/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate ensures request correctness.
func (r RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return errors.New("username is required")
	}
	if strings.TrimSpace(r.Email) == "" {
		return errors.New("email is required")
	}
	if len(r.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}

// RegisterResponse describes the response body for register.
type RegisterResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// LoginRequest is the payload for POST /v1/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token issued on login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

// CreateCatRequest is the payload for POST /v1/cats.
type CreateCatRequest struct {
	Name  string `json:"name"`
	Breed string `json:"breed"`
	Age   int    `json:"age"`
}

// CatView exposes cat details.
type CatView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Breed     string    `json:"breed,omitempty"`
	Age       int       `json:"age,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ListCatsResponse packages list results.
type ListCatsResponse struct {
	Cats []CatView `json:"cats"`
}

// CreateLitterboxRequest is the payload for POST /v1/litterboxes.
type CreateLitterboxRequest struct {
	CatID string `json:"cat_id"`
	Name  string `json:"name"`
}

// LitterboxView exposes litterbox details.
type LitterboxView struct {
	ID    string `json:"id"`
	CatID string `json:"cat_id"`
	Name  string `json:"name"`
}

// RegisterDeviceRequest is the payload for POST /v1/edge-devices.
type RegisterDeviceRequest struct {
	DeviceID    string `json:"device_id"`
	LitterboxID string `json:"litterbox_id"`
	Name        string `json:"name"`
	DeviceType  string `json:"device_type"`
}

// DeviceView exposes edge device details.
type DeviceView struct {
	ID          string `json:"id"`
	LitterboxID string `json:"litterbox_id"`
	Name        string `json:"name"`
	DeviceType  string `json:"device_type,omitempty"`
}

// UsageView is a derived visit record as served to dashboards.
type UsageView struct {
	ID              string    `json:"id"`
	EnterTime       time.Time `json:"enter_time"`
	ExitTime        time.Time `json:"exit_time"`
	DurationMinutes float64   `json:"duration_minutes"`
	CatWeight       float64   `json:"cat_weight"`
	DeviceName      string    `json:"device_name"`
	LitterboxName   string    `json:"litterbox_name"`
}

// UsageResponse packages visit records for the usage endpoint.
type UsageResponse struct {
	UsageData []UsageView `json:"usage_data"`
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"error": detail})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toCatView(cat domain.Cat) CatView {
	return CatView{
		ID:        cat.ID,
		Name:      cat.Name,
		Breed:     cat.Breed,
		Age:       cat.Age,
		CreatedAt: cat.CreatedAt,
	}
}
