// ABOUTME: Course endpoints: listing and creation

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/totustuus/forum-api/internal/store"
)

type courseResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := s.store.ListCourses(r.Context())
	if err != nil {
		s.logger.Error("listing courses failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := make([]courseResponse, 0, len(courses))
	for _, c := range courses {
		resp = append(resp, courseResponse{ID: c.ID, Name: c.Name, Category: c.Category})
	}
	writeJSON(w, http.StatusOK, resp)
}

type courseRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

func (s *Server) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	var req courseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var v validator
	v.length("name", req.Name, courseMin, courseMax)
	v.require("category", req.Category)
	if !v.ok() {
		writeFieldErrors(w, v.errs)
		return
	}

	course := &store.Course{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Category:  req.Category,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateCourse(r.Context(), course); err != nil {
		if errors.Is(err, store.ErrDuplicateCourse) {
			writeFieldErrors(w, []FieldError{{Field: "name", Error: "course name already exists"}})
			return
		}
		s.logger.Error("creating course failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Location", "/courses/"+course.ID)
	writeJSON(w, http.StatusCreated, courseResponse{ID: course.ID, Name: course.Name, Category: course.Category})
}
