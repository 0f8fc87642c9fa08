package handler

import (
	"net/http"

	"github.com/pavelanni/gradewizard/internal/model"
)

func (h *Handler) handleQuestions(w http.ResponseWriter, r *http.Request) {
	var req model.QuestionsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, err, "ErrGenerateQuestions")
		return
	}
	resp, err := h.content.Questions(r.Context(), req)
	if err != nil {
		fail(w, r, err, "ErrGenerateQuestions")
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleStudyPlan(w http.ResponseWriter, r *http.Request) {
	var req model.StudyPlanRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, err, "ErrGenerateStudyPlan")
		return
	}
	resp, err := h.content.StudyPlan(r.Context(), req)
	if err != nil {
		fail(w, r, err, "ErrGenerateStudyPlan")
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req model.FeedbackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, err, "ErrGenerateFeedback")
		return
	}
	resp, err := h.content.Feedback(r.Context(), req)
	if err != nil {
		fail(w, r, err, "ErrGenerateFeedback")
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleQuiz(w http.ResponseWriter, r *http.Request) {
	q, err := h.content.Quiz(r.Context(), r.URL.Query().Get("language"))
	if err != nil {
		fail(w, r, err, "ErrGenerateQuiz")
		return
	}
	respondJSON(w, http.StatusOK, q)
}
