package httpapi

import (
	"net/http"
	"strings"
)

// StubHandler：尚未接通真实后端的前端路由先回空数据，保证页面可渲染不 404。
type StubHandler struct{}

func NewStubHandler() *StubHandler { return &StubHandler{} }

// Assets GET /api/v1/assets[/...]
func (s *StubHandler) Assets(w http.ResponseWriter, r *http.Request) {
	s.emptyCollection(w, r, "assets")
}

// Bookings GET /api/v1/bookings[/...]
func (s *StubHandler) Bookings(w http.ResponseWriter, r *http.Request) {
	s.emptyCollection(w, r, "bookings")
}

func (s *StubHandler) emptyCollection(w http.ResponseWriter, r *http.Request, name string) {
	switch r.Method {
	case http.MethodGet:
		if strings.Contains(strings.Trim(r.URL.Path, "/"), "/"+name+"/") {
			// 单个资源：stub 阶段一律不存在
			writeJSON(w, http.StatusNotFound, Fail(name+" not found"))
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{name: []any{}, "total": 0}))
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		writeJSON(w, http.StatusNotImplemented, Fail(name+" management is not available yet"))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
