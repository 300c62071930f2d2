package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"lingo/internal/exercise"

	"github.com/go-chi/chi/v5"
)

type ExerciseHandler struct {
	Svc *exercise.Service
}

type reorderDTO struct {
	Sentence    string   `json:"sentence"`
	Words       []string `json:"words"`
	Translation string   `json:"translation"`
}

type multipleChoiceDTO struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	PracticeType string   `json:"practiceType"`
}

type fillBlankDTO struct {
	Sentence string `json:"sentence"`
	Answer   string `json:"answer"`
	Hint     string `json:"hint"`
}

func (h *ExerciseHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	out, err := h.Svc.Reorder(r.Context())
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	dtos := make([]reorderDTO, 0, len(out))
	for _, e := range out {
		dtos = append(dtos, reorderDTO{Sentence: e.Sentence, Words: []string(e.Words), Translation: e.Translation})
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *ExerciseHandler) MultipleChoice(w http.ResponseWriter, r *http.Request) {
	out, err := h.Svc.MultipleChoice(r.Context())
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, mcToDTO(out))
}

func (h *ExerciseHandler) MultipleChoiceByType(w http.ResponseWriter, r *http.Request) {
	practiceType := chi.URLParam(r, "type")

	out, err := h.Svc.MultipleChoiceByType(r.Context(), practiceType)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, mcToDTO(out))
}

func mcToDTO(out []exercise.MultipleChoiceExercise) []multipleChoiceDTO {
	dtos := make([]multipleChoiceDTO, 0, len(out))
	for _, e := range out {
		dtos = append(dtos, multipleChoiceDTO{
			Question:     e.Question,
			Options:      []string(e.Options),
			CorrectIndex: e.CorrectIndex,
			PracticeType: e.PracticeType,
		})
	}
	return dtos
}

func (h *ExerciseHandler) FillBlank(w http.ResponseWriter, r *http.Request) {
	out, err := h.Svc.FillBlank(r.Context())
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	dtos := make([]fillBlankDTO, 0, len(out))
	for _, e := range out {
		dtos = append(dtos, fillBlankDTO{Sentence: e.Sentence, Answer: e.Answer, Hint: e.Hint})
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *ExerciseHandler) Sets(w http.ResponseWriter, r *http.Request) {
	sets, err := h.Svc.Sets(r.Context())
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	out := make([]map[string]any, 0, len(sets))
	for _, s := range sets {
		out = append(out, map[string]any{"setId": s.SetID, "name": s.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ExerciseHandler) SetByID(w http.ResponseWriter, r *http.Request) {
	setID := chi.URLParam(r, "setId")

	set, err := h.Svc.SetByID(r.Context(), setID)
	if err != nil {
		if errors.Is(err, exercise.ErrNotFound) {
			http.Error(w, "exercise set not found", http.StatusNotFound)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (h *ExerciseHandler) Courses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.Svc.Courses(r.Context())
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, courses)
}

func (h *ExerciseHandler) Random(w http.ResponseWriter, r *http.Request) {
	count := 10
	if v := strings.TrimSpace(r.URL.Query().Get("count")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			count = n
		}
	}

	items, err := h.Svc.Random(r.Context(), count)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, items)
}
