// ABOUTME: Reply endpoints: posting under a topic and marking the solution

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/totustuus/forum-api/internal/auth"
	"github.com/totustuus/forum-api/internal/store"
)

type replyRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleCreateReply(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())

	var req replyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var v validator
	v.length("message", req.Message, messageMin, messageMax)
	if !v.ok() {
		writeFieldErrors(w, v.errs)
		return
	}

	reply := &store.Reply{
		ID:        uuid.New().String(),
		TopicID:   r.PathValue("id"),
		Message:   req.Message,
		AuthorID:  authCtx.UserID,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateReply(r.Context(), reply); err != nil {
		if errors.Is(err, store.ErrTopicNotFound) {
			writeError(w, http.StatusNotFound, "topic not found")
			return
		}
		s.logger.Error("creating reply failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.listCache.Purge()

	w.Header().Set("Location", "/topics/"+reply.TopicID)
	writeJSON(w, http.StatusCreated, map[string]string{"id": reply.ID})
}

// handleMarkSolution marks a reply as its topic's accepted solution. Only
// the topic author or a moderator may do this.
func (s *Server) handleMarkSolution(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())
	topicID := r.PathValue("id")

	topic, err := s.store.GetTopic(r.Context(), topicID)
	if err != nil {
		if errors.Is(err, store.ErrTopicNotFound) {
			writeError(w, http.StatusNotFound, "topic not found")
			return
		}
		s.logger.Error("loading topic failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if topic.AuthorID != authCtx.UserID && !authCtx.HasProfile("ROLE_MODERATOR") {
		writeError(w, http.StatusForbidden, "only the topic author may mark a solution")
		return
	}

	err = s.store.MarkSolution(r.Context(), topicID, r.PathValue("replyID"))
	if err != nil {
		if errors.Is(err, store.ErrReplyNotFound) {
			writeError(w, http.StatusNotFound, "reply not found")
			return
		}
		s.logger.Error("marking solution failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.listCache.Purge()

	writeJSON(w, http.StatusOK, map[string]string{"status": "solved"})
}
