package model

// Action is the command a predicted class maps to
type Action string

const (
	ActionStop    Action = "stop"
	ActionLeft    Action = "left"
	ActionFront   Action = "front"
	ActionUnknown Action = "unknown"
)

// ActionFor maps a class label to an action: 0 stops, 1 and 2 turn left,
// 3 moves forward
func ActionFor(label int) Action {
	switch label {
	case 0:
		return ActionStop
	case 1, 2:
		return ActionLeft
	case 3:
		return ActionFront
	default:
		return ActionUnknown
	}
}
