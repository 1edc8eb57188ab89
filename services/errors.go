package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден
	ErrCompetitionNotFound = errors.New("competition not found")
	ErrBracketNotFound     = errors.New("bracket not found")
	ErrMatchNotFound       = errors.New("match not found")

	// Ошибки валидации
	ErrValidationFailed = errors.New("validation failed")

	// EmptyGroup не фатальна: группа без подтверждённых участников просто пропускается.
	ErrEmptyGroup = errors.New("no confirmed entrants in group")

	// Ошибки конфликтов
	ErrRegenerationConflict = errors.New("bracket regeneration is already running for this group")

	// Ошибки авторизации
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")
)
