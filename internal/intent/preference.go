package intent

import "strings"

// ToggleAction is the switch direction a preference message asks for.
type ToggleAction string

// Cadence is the report frequency a preference message refers to.
type Cadence string

const (
	ActionEnable  ToggleAction = "activar"
	ActionDisable ToggleAction = "desactivar"

	CadenceDaily   Cadence = "diario"
	CadenceWeekly  Cadence = "semanal"
	CadenceMonthly Cadence = "mensual"
)

// detectPreference works out which toggle and cadence were meant. Cadence
// defaults to daily; a later match overrides an earlier one, so "mensual"
// wins over "semanal" when both appear.
func detectPreference(lower string) PreferenceToggle {
	// "desactivar" contains "activar", so it has to be checked first.
	action := ActionEnable
	if strings.Contains(lower, string(ActionDisable)) {
		action = ActionDisable
	}

	cadence := CadenceDaily
	if strings.Contains(lower, string(CadenceWeekly)) {
		cadence = CadenceWeekly
	}
	if strings.Contains(lower, string(CadenceMonthly)) {
		cadence = CadenceMonthly
	}

	return PreferenceToggle{action: action, cadence: cadence}
}
