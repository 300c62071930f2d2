package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"lingo/internal/account"
	"lingo/internal/auth"
)

type AccountHandler struct {
	Svc *account.Service
}

func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	p, err := h.Svc.Profile(r.Context(), uid)
	if err != nil {
		writeAccountErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type updateNameReq struct {
	Name string `json:"name"`
}

func (h *AccountHandler) UpdateName(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req updateNameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	p, err := h.Svc.UpdateName(r.Context(), uid, req.Name)
	if err != nil {
		writeAccountErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *AccountHandler) CompleteStreak(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	p, err := h.Svc.CompleteStreak(r.Context(), uid, time.Now())
	if err != nil {
		writeAccountErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type completeCourseReq struct {
	CourseID string `json:"courseId"`
}

func (h *AccountHandler) CompleteCourse(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req completeCourseReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.CourseID = strings.TrimSpace(req.CourseID)
	if req.CourseID == "" {
		http.Error(w, "courseId is required", http.StatusBadRequest)
		return
	}

	p, err := h.Svc.CompleteCourse(r.Context(), uid, req.CourseID)
	if err != nil {
		writeAccountErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func writeAccountErr(w http.ResponseWriter, err error) {
	if errors.Is(err, account.ErrNotFound) {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	http.Error(w, "server error", http.StatusInternalServerError)
}
