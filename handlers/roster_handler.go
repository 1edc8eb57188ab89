package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Dosada05/competition-brackets/services"
)

type RosterHandler struct {
	regenerationService services.RegenerationService
}

func NewRosterHandler(rs services.RegenerationService) *RosterHandler {
	return &RosterHandler{regenerationService: rs}
}

// RosterChanged godoc
// @Summary Состав подтверждённых участников изменился
// @Tags internal
// @Description Вызывается процессом одобрения заявок. Перестраивает сетки затронутых групп; повторный вызов без изменений ничего не меняет.
// @Produce json
// @Param competitionID path int true "Competition ID"
// @Param weight_category_id query int false "Weight category ID"
// @Success 200 {object} map[string]interface{} "results"
// @Failure 404 {object} map[string]string "Соревнование не найдено"
// @Failure 409 {object} map[string]string "Сетка группы уже перестраивается"
// @Security BearerAuth
// @Router /internal/competitions/{competitionID}/roster-changed [post]
func (h *RosterHandler) RosterChanged(w http.ResponseWriter, r *http.Request) {
	competitionID, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var categoryID *int
	if raw := r.URL.Query().Get("weight_category_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			badRequestResponse(w, r, fmt.Errorf("invalid weight_category_id: %q", raw))
			return
		}
		categoryID = &id
	}

	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	results, err := h.regenerationService.OnRosterChanged(r.Context(), competitionID, categoryID, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"results": results}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
