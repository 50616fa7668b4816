package model

import "time"

type ActivityAction string

const (
	ActionApplyScene   ActivityAction = "apply_scene"
	ActionPreviewScene ActivityAction = "preview_scene"
	ActionTurnOn       ActivityAction = "turn_on"
	ActionTurnOff      ActivityAction = "turn_off"
)

type ActivityOutcome string

const (
	OutcomeSuccess ActivityOutcome = "success"
	OutcomeFailure ActivityOutcome = "failure"
)

// Activity is one cloud action recorded in the ledger.
type Activity struct {
	ID       string          `json:"id"`
	Action   ActivityAction  `json:"action"`
	DeviceID string          `json:"device_id"`
	Outcome  ActivityOutcome `json:"outcome"`
	Message  string          `json:"message,omitempty"`
	At       time.Time       `json:"at"`
}
