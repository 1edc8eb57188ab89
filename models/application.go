package models

import "time"

type ApplicationStatus string

const (
	ApplicationPending      ApplicationStatus = "PENDING"
	ApplicationConfirmed    ApplicationStatus = "CONFIRMED"
	ApplicationRejected     ApplicationStatus = "REJECTED"
	ApplicationDisqualified ApplicationStatus = "DISQUALIFIED"
)

// Application - заявка спортсмена или команды на соревнование.
// Ведётся внешним процессом одобрения, движок сеток только читает подтверждённые.
type Application struct {
	ID               int               `json:"id" db:"id"`
	CompetitionID    int               `json:"competition_id" db:"competition_id"`
	AthleteID        *int              `json:"athlete_id,omitempty" db:"athlete_id"`
	TeamID           *int              `json:"team_id,omitempty" db:"team_id"`
	WeightCategoryID *int              `json:"weight_category_id,omitempty" db:"weight_category_id"`
	Status           ApplicationStatus `json:"status" db:"status"`
	ConfirmedAt      *time.Time        `json:"confirmed_at,omitempty" db:"confirmed_at"`
	CreatedAt        time.Time         `json:"created_at" db:"created_at"`
}

// Entrant converts a confirmed application into a bracket entrant.
func (a Application) Entrant() (Entrant, bool) {
	switch {
	case a.AthleteID != nil:
		return Athlete(*a.AthleteID, a.WeightCategoryID, a.TeamID), true
	case a.TeamID != nil:
		return Team(*a.TeamID), true
	}
	return Entrant{}, false
}
