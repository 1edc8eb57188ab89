package handlers

import (
	"context"
	"net/http"

	"github.com/Dosada05/competition-brackets/models"
	"github.com/Dosada05/competition-brackets/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(ms services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: ms}
}

// StartMatch godoc
// @Summary Начать матч
// @Tags matches
// @Produce json
// @Param bracketID path int true "Bracket ID"
// @Param matchID path int true "Match ID"
// @Success 200 {object} map[string]interface{} "match"
// @Failure 404 {object} map[string]string "Сетка или матч не найдены"
// @Failure 409 {object} map[string]string "Матч уже завершён"
// @Failure 422 {object} map[string]string "Участники матча ещё не определены"
// @Security BearerAuth
// @Router /brackets/{bracketID}/matches/{matchID}/start [post]
func (h *MatchHandler) StartMatch(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(ctx context.Context, bracketID, matchID int, actor models.Actor) (*models.Match, error) {
		return h.matchService.StartMatch(ctx, bracketID, matchID, actor)
	})
}

// RecordResult godoc
// @Summary Записать результат матча
// @Tags matches
// @Description Победитель передаётся через winner_id или winner_team_id. Повторная запись возможна только с correction=true,
// @Description пока ни один зависимый матч не начат.
// @Accept json
// @Produce json
// @Param bracketID path int true "Bracket ID"
// @Param matchID path int true "Match ID"
// @Param body body services.RecordResultInput true "Результат"
// @Success 200 {object} map[string]interface{} "match"
// @Failure 400 {object} map[string]string "Некорректный JSON"
// @Failure 404 {object} map[string]string "Сетка или матч не найдены"
// @Failure 409 {object} map[string]string "Матч уже завершён или зависимые матчи уже сыграны"
// @Failure 422 {object} map[string]string "Победитель не участвует в матче / неверный счёт"
// @Security BearerAuth
// @Router /brackets/{bracketID}/matches/{matchID}/result [post]
func (h *MatchHandler) RecordResult(w http.ResponseWriter, r *http.Request) {
	var input services.RecordResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	h.transition(w, r, func(ctx context.Context, bracketID, matchID int, actor models.Actor) (*models.Match, error) {
		return h.matchService.RecordResult(ctx, bracketID, matchID, input, actor)
	})
}

// CancelMatch godoc
// @Summary Отменить матч
// @Tags matches
// @Produce json
// @Param bracketID path int true "Bracket ID"
// @Param matchID path int true "Match ID"
// @Success 200 {object} map[string]interface{} "match"
// @Failure 404 {object} map[string]string "Сетка или матч не найдены"
// @Failure 409 {object} map[string]string "Матч уже завершён"
// @Security BearerAuth
// @Router /brackets/{bracketID}/matches/{matchID}/cancel [post]
func (h *MatchHandler) CancelMatch(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(ctx context.Context, bracketID, matchID int, actor models.Actor) (*models.Match, error) {
		return h.matchService.CancelMatch(ctx, bracketID, matchID, actor)
	})
}

func (h *MatchHandler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, bracketID, matchID int, actor models.Actor) (*models.Match, error)) {
	bracketID, err := getIDFromURL(r, "bracketID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	match, err := fn(r.Context(), bracketID, matchID, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
