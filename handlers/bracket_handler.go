package handlers

import (
	"net/http"

	"github.com/Dosada05/competition-brackets/services"
)

type BracketHandler struct {
	bracketService services.BracketService
}

func NewBracketHandler(bs services.BracketService) *BracketHandler {
	return &BracketHandler{bracketService: bs}
}

// CreateBrackets godoc
// @Summary Сгенерировать сетки соревнования
// @Tags brackets
// @Description Строит по одной сетке на каждую весовую категорию (или на всё командное соревнование), у которой сетки ещё нет.
// @Produce json
// @Param competitionID path int true "Competition ID"
// @Success 201 {object} services.CreateBracketsResult
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Failure 404 {object} map[string]string "Соревнование не найдено"
// @Failure 409 {object} map[string]string "Сетка группы перестраивается"
// @Security BearerAuth
// @Router /competitions/{competitionID}/brackets [post]
func (h *BracketHandler) CreateBrackets(w http.ResponseWriter, r *http.Request) {
	competitionID, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	result, err := h.bracketService.CreateBracketsForCompetition(r.Context(), competitionID, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetBrackets godoc
// @Summary Сетки соревнования со всеми матчами
// @Tags brackets
// @Produce json
// @Param competitionID path int true "Competition ID"
// @Success 200 {object} map[string]interface{} "brackets"
// @Failure 404 {object} map[string]string "Соревнование не найдено"
// @Router /competitions/{competitionID}/brackets [get]
func (h *BracketHandler) GetBrackets(w http.ResponseWriter, r *http.Request) {
	competitionID, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	list, err := h.bracketService.GetBracketsForCompetition(r.Context(), competitionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"brackets": list}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetStandings godoc
// @Summary Итоговые места участников сетки
// @Tags brackets
// @Produce json
// @Param bracketID path int true "Bracket ID"
// @Success 200 {object} map[string]interface{} "standings"
// @Failure 404 {object} map[string]string "Сетка не найдена"
// @Router /brackets/{bracketID}/standings [get]
func (h *BracketHandler) GetStandings(w http.ResponseWriter, r *http.Request) {
	bracketID, err := getIDFromURL(r, "bracketID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standings, err := h.bracketService.GetStandings(r.Context(), bracketID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
