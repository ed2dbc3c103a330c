package game

import "errors"

var (
	ErrParticipantNotFound = errors.New("participant not found")
	ErrCohortNotFound      = errors.New("cohort not found")
)
