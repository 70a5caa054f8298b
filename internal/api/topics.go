// ABOUTME: Topic endpoints: cached listing, search, detail, create/update/delete

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/totustuus/forum-api/internal/auth"
	"github.com/totustuus/forum-api/internal/cache"
	"github.com/totustuus/forum-api/internal/markdown"
	"github.com/totustuus/forum-api/internal/store"
)

type topicSummaryResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	Author    string    `json:"author"`
	Course    string    `json:"course"`
	CreatedAt time.Time `json:"created_at"`
}

type topicListResponse struct {
	Topics []topicSummaryResponse `json:"topics"`
	Total  int                    `json:"total"`
	Page   int                    `json:"page"`
	Size   int                    `json:"size"`
}

type topicDetailResponse struct {
	topicSummaryResponse
	MessageHTML string          `json:"message_html"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Replies     []replyResponse `json:"replies"`
}

type replyResponse struct {
	ID          string    `json:"id"`
	Message     string    `json:"message"`
	MessageHTML string    `json:"message_html"`
	Author      string    `json:"author"`
	Solution    bool      `json:"solution"`
	CreatedAt   time.Time `json:"created_at"`
}

func summaryResponse(t *store.TopicSummary) topicSummaryResponse {
	return topicSummaryResponse{
		ID:        t.ID,
		Title:     t.Title,
		Message:   t.Message,
		Status:    t.Status,
		Author:    t.AuthorName,
		Course:    t.CourseName,
		CreatedAt: t.CreatedAt,
	}
}

// listFilter parses list/search query parameters into a store filter.
func listFilter(r *http.Request) store.TopicFilter {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 0 {
		page = 0
	}
	size, _ := strconv.Atoi(q.Get("size"))
	if size <= 0 || size > 100 {
		size = 20
	}

	sort := q.Get("sort")
	desc := true
	if sort == "title" {
		desc = false
	} else {
		sort = "created_at"
	}

	return store.TopicFilter{
		CourseName: q.Get("course"),
		Title:      q.Get("title"),
		Page:       page,
		Size:       size,
		Sort:       sort,
		SortDesc:   desc,
	}
}

func (s *Server) handleListTopics(w http.ResponseWriter, r *http.Request) {
	filter := listFilter(r)
	filter.Title = "" // title filtering is the search endpoint's job

	key := cache.Key(filter.CourseName, "", filter.Page, filter.Size, filter.Sort, filter.SortDesc)
	if body, ok := s.listCache.Get(key); ok {
		s.metrics.CacheHit()
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
		return
	}
	s.metrics.CacheMiss()

	topics, total, err := s.store.ListTopics(r.Context(), filter)
	if err != nil {
		s.logger.Error("listing topics failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := topicListResponse{
		Topics: make([]topicSummaryResponse, 0, len(topics)),
		Total:  total,
		Page:   filter.Page,
		Size:   filter.Size,
	}
	for _, t := range topics {
		resp.Topics = append(resp.Topics, summaryResponse(t))
	}

	body, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("marshaling topic list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.listCache.Add(key, body)

	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

func (s *Server) handleSearchTopics(w http.ResponseWriter, r *http.Request) {
	filter := listFilter(r)
	if filter.Title == "" {
		writeFieldErrors(w, []FieldError{{Field: "title", Error: "must not be blank"}})
		return
	}

	topics, total, err := s.store.ListTopics(r.Context(), filter)
	if err != nil {
		s.logger.Error("searching topics failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := topicListResponse{
		Topics: make([]topicSummaryResponse, 0, len(topics)),
		Total:  total,
		Page:   filter.Page,
		Size:   filter.Size,
	}
	for _, t := range topics {
		resp.Topics = append(resp.Topics, summaryResponse(t))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetTopic(w http.ResponseWriter, r *http.Request) {
	detail, err := s.store.GetTopicDetail(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrTopicNotFound) {
			writeError(w, http.StatusNotFound, "topic not found")
			return
		}
		s.logger.Error("loading topic failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	messageHTML, err := markdown.Render(detail.Message)
	if err != nil {
		s.logger.Error("rendering topic message failed", "topic_id", detail.ID, "error", err)
		messageHTML = ""
	}

	resp := topicDetailResponse{
		topicSummaryResponse: summaryResponse(&detail.TopicSummary),
		MessageHTML:          messageHTML,
		UpdatedAt:            detail.UpdatedAt,
		Replies:              make([]replyResponse, 0, len(detail.Replies)),
	}
	for _, reply := range detail.Replies {
		replyHTML, err := markdown.Render(reply.Message)
		if err != nil {
			s.logger.Error("rendering reply failed", "reply_id", reply.ID, "error", err)
			replyHTML = ""
		}
		resp.Replies = append(resp.Replies, replyResponse{
			ID:          reply.ID,
			Message:     reply.Message,
			MessageHTML: replyHTML,
			Author:      reply.AuthorName,
			Solution:    reply.Solution,
			CreatedAt:   reply.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type topicRequest struct {
	Title      string `json:"title"`
	Message    string `json:"message"`
	CourseName string `json:"course_name"`
}

func (s *Server) handleCreateTopic(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())

	var req topicRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var v validator
	v.length("title", req.Title, titleMin, titleMax)
	v.length("message", req.Message, messageMin, messageMax)
	v.length("course_name", req.CourseName, courseMin, courseMax)
	if !v.ok() {
		writeFieldErrors(w, v.errs)
		return
	}

	course, err := s.store.GetCourseByName(r.Context(), req.CourseName)
	if err != nil {
		if errors.Is(err, store.ErrCourseNotFound) {
			writeFieldErrors(w, []FieldError{{Field: "course_name", Error: "course does not exist"}})
			return
		}
		s.logger.Error("loading course failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	now := time.Now()
	topic := &store.Topic{
		ID:        uuid.New().String(),
		Title:     req.Title,
		Message:   req.Message,
		Status:    store.TopicUnanswered,
		AuthorID:  authCtx.UserID,
		CourseID:  course.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateTopic(r.Context(), topic); err != nil {
		s.logger.Error("creating topic failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.listCache.Purge()

	w.Header().Set("Location", "/topics/"+topic.ID)
	writeJSON(w, http.StatusCreated, map[string]string{"id": topic.ID})
}

type topicUpdateRequest struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

func (s *Server) handleUpdateTopic(w http.ResponseWriter, r *http.Request) {
	var req topicUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var v validator
	v.length("title", req.Title, titleMin, titleMax)
	v.length("message", req.Message, messageMin, messageMax)
	if !v.ok() {
		writeFieldErrors(w, v.errs)
		return
	}

	topic, err := s.store.GetTopic(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrTopicNotFound) {
			writeError(w, http.StatusNotFound, "topic not found")
			return
		}
		s.logger.Error("loading topic failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	topic.Title = req.Title
	topic.Message = req.Message
	topic.UpdatedAt = time.Now()
	if err := s.store.UpdateTopic(r.Context(), topic); err != nil {
		s.logger.Error("updating topic failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.listCache.Purge()

	writeJSON(w, http.StatusOK, map[string]string{"id": topic.ID})
}

func (s *Server) handleDeleteTopic(w http.ResponseWriter, r *http.Request) {
	err := s.store.DeleteTopic(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrTopicNotFound) {
			writeError(w, http.StatusNotFound, "topic not found")
			return
		}
		s.logger.Error("deleting topic failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.listCache.Purge()

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
