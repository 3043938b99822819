// Package handler exposes the blueprint engine over HTTP: matrix
// generation, blueprint assembly, export, and question generation.
package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/mtapang/tosforge/internal/blueprint"
	"github.com/mtapang/tosforge/internal/export"
	"github.com/mtapang/tosforge/internal/i18n"
	"github.com/mtapang/tosforge/internal/llm"
	"github.com/mtapang/tosforge/internal/model"
	"github.com/mtapang/tosforge/internal/store"
	"github.com/mtapang/tosforge/internal/tos"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store  *store.Store
	llm    llm.Generator
	config model.ServerConfig
}

// New creates a new Handler. The generator may be nil when question
// generation is not configured.
func New(s *store.Store, g llm.Generator, cfg model.ServerConfig) (*Handler, error) {
	return &Handler{store: s, llm: g, config: cfg}, nil
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/api/tos", h.handleGenerateTOS)
	r.Post("/api/blueprints", h.handleCreateBlueprint)
	r.Get("/api/blueprints", h.handleListBlueprints)
	r.Get("/api/blueprints/{id}", h.handleGetBlueprint)
	r.Get("/api/blueprints/{id}/export.xlsx", h.handleExportXLSX)
	r.Post("/api/blueprints/{id}/questions", h.handleGenerateQuestions)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

type outcomeRequest struct {
	ID    int64   `json:"id"`
	Text  string  `json:"text"`
	Hours float64 `json:"hours"`
}

type tosRequest struct {
	Outcomes     []outcomeRequest             `json:"outcomes"`
	BloomWeights map[model.CognitiveLevel]int `json:"bloom_weights"`
	TotalItems   int                          `json:"total_items"`
}

type tosResponse struct {
	Matrix      model.BloomMatrix            `json:"matrix"`
	BloomTotals map[model.CognitiveLevel]int `json:"bloom_totals"`
}

func (h *Handler) handleGenerateTOS(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, i18n.T(r.Context(), "ErrBadRequest"))
		return
	}
	if err := validateBody("tos", body); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req tosRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, http.StatusBadRequest, i18n.T(r.Context(), "ErrBadRequest"))
		return
	}

	outcomes := make([]model.Outcome, len(req.Outcomes))
	for i, o := range req.Outcomes {
		outcomes[i] = model.Outcome{ID: o.ID, Text: o.Text, Hours: o.Hours}
	}

	result, err := tos.Generate(outcomes, req.BloomWeights, req.TotalItems)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, tosResponse{
		Matrix:      result.Matrix,
		BloomTotals: result.BloomTotals,
	})
}

type formatRequest struct {
	Name          string `json:"name"`
	Items         int    `json:"items"`
	PointsPerItem string `json:"points_per_item"`
}

type blueprintRequest struct {
	Course struct {
		Code       string `json:"code"`
		Title      string `json:"title"`
		TotalItems int    `json:"total_items"`
	} `json:"course"`
	Name     string            `json:"name"`
	Outcomes []outcomeRequest  `json:"outcomes"`
	Matrix   model.BloomMatrix `json:"matrix"`
	Formats  []formatRequest   `json:"formats"`
	Shuffle  *bool             `json:"shuffle,omitempty"`
	Seed     *uint64           `json:"seed,omitempty"`
}

func (h *Handler) handleCreateBlueprint(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, i18n.T(r.Context(), "ErrBadRequest"))
		return
	}
	if err := validateBody("blueprint", body); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req blueprintRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, http.StatusBadRequest, i18n.T(r.Context(), "ErrBadRequest"))
		return
	}

	outcomes := make([]model.Outcome, len(req.Outcomes))
	for i, o := range req.Outcomes {
		outcomes[i] = model.Outcome{ID: o.ID, Text: o.Text, Hours: o.Hours}
	}

	configs := make([]model.FormatConfig, len(req.Formats))
	for i, f := range req.Formats {
		points, err := decimal.NewFromString(f.PointsPerItem)
		if err != nil {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("format %q: bad points value %q", f.Name, f.PointsPerItem))
			return
		}
		configs[i] = model.FormatConfig{Name: f.Name, ItemCount: f.Items, PointsPerItem: points}
	}

	assignment, err := blueprint.Build(req.Matrix, outcomes, configs, blueprint.DefaultPreferences())
	if err != nil {
		var mismatch *blueprint.CountMismatchError
		if errors.As(err, &mismatch) {
			respondError(w, http.StatusUnprocessableEntity, i18n.Td(r.Context(), "ErrCountMismatch", map[string]any{
				"FormatItems": mismatch.FormatSlots,
				"BloomItems":  mismatch.BloomSlots,
			}))
			return
		}
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if problems := blueprint.VerifyIntegrity(assignment.Slots, req.Matrix, configs); len(problems) > 0 {
		slog.Error("blueprint integrity check failed", "problems", problems)
		respondError(w, http.StatusInternalServerError, "blueprint integrity check failed")
		return
	}

	slots := assignment.Slots
	shuffle := h.config.Shuffle
	if req.Shuffle != nil {
		shuffle = *req.Shuffle
	}
	if shuffle {
		switch {
		case req.Seed != nil:
			slots = blueprint.ShuffleSeeded(slots, *req.Seed)
		case h.config.Seed != 0:
			slots = blueprint.ShuffleSeeded(slots, h.config.Seed)
		default:
			slots = blueprint.Shuffle(slots)
		}
	}

	course, err := h.store.GetCourseByCode(req.Course.Code)
	if errors.Is(err, sql.ErrNoRows) {
		totalItems := req.Course.TotalItems
		if totalItems == 0 {
			totalItems = len(slots)
		}
		id, cerr := h.store.CreateCourse(model.Course{
			Code:       req.Course.Code,
			Title:      req.Course.Title,
			TotalItems: totalItems,
		}, outcomes)
		if cerr != nil {
			slog.Error("create course", "error", cerr)
			respondError(w, http.StatusInternalServerError, cerr.Error())
			return
		}
		course = model.Course{ID: id, Code: req.Course.Code, Title: req.Course.Title, TotalItems: totalItems}
	} else if err != nil {
		slog.Error("look up course", "error", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	blueprintID, err := h.store.SaveBlueprint(course.ID, req.Name, configs, slots)
	if err != nil {
		slog.Error("save blueprint", "error", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	data, err := h.store.BuildExport(blueprintID)
	if err != nil {
		slog.Error("build export", "error", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, data)
}

func (h *Handler) handleListBlueprints(w http.ResponseWriter, r *http.Request) {
	blueprints, err := h.store.ListBlueprints()
	if err != nil {
		slog.Error("list blueprints", "error", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if blueprints == nil {
		blueprints = []model.Blueprint{}
	}
	respondJSON(w, http.StatusOK, blueprints)
}

func (h *Handler) blueprintID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, i18n.T(r.Context(), "ErrBadRequest"))
		return 0, false
	}
	return id, true
}

func (h *Handler) handleGetBlueprint(w http.ResponseWriter, r *http.Request) {
	id, ok := h.blueprintID(w, r)
	if !ok {
		return
	}
	data, err := h.store.BuildExport(id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, i18n.T(r.Context(), "ErrNotFound"))
		return
	}
	if err != nil {
		slog.Error("build export", "blueprint_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, data)
}

func (h *Handler) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	id, ok := h.blueprintID(w, r)
	if !ok {
		return
	}
	data, err := h.store.BuildExport(id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, i18n.T(r.Context(), "ErrNotFound"))
		return
	}
	if err != nil {
		slog.Error("build export", "blueprint_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("%s-%s.xlsx", data.Course.Code, data.Name)))
	if err := export.WriteXLSX(r.Context(), w, data); err != nil {
		slog.Error("write workbook", "blueprint_id", id, "error", err)
	}
}

func (h *Handler) handleGenerateQuestions(w http.ResponseWriter, r *http.Request) {
	if h.llm == nil {
		respondError(w, http.StatusServiceUnavailable, "question generation is not configured")
		return
	}
	id, ok := h.blueprintID(w, r)
	if !ok {
		return
	}

	bp, err := h.store.GetBlueprint(id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, i18n.T(r.Context(), "ErrNotFound"))
		return
	}
	if err != nil {
		slog.Error("load blueprint", "blueprint_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	course, err := h.store.GetCourse(bp.CourseID)
	if err != nil {
		slog.Error("load course", "course_id", bp.CourseID, "error", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	slots, err := h.store.ListAssignedSlots(id)
	if err != nil {
		slog.Error("load slots", "blueprint_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	questions, err := llm.GenerateAll(r.Context(), h.llm, course, slots)
	if err != nil {
		slog.Error("generate questions", "blueprint_id", id, "error", err)
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	for i := range questions {
		questions[i].BlueprintID = id
		qid, err := h.store.InsertGeneratedQuestion(questions[i])
		if err != nil {
			slog.Error("store question", "blueprint_id", id, "position", questions[i].Position, "error", err)
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		questions[i].ID = qid
	}

	respondJSON(w, http.StatusCreated, questions)
}
