package aiqueue

import "errors"

var (
	// ErrBatteryLow rejects AI work while the device runs on a low battery.
	ErrBatteryLow = errors.New("AI_BATTERY_LOW")

	// ErrTimeout matches every *TimeoutError via errors.Is.
	ErrTimeout = errors.New("AI_TIMEOUT")
)

// TimeoutError reports that a labelled task outlived its budget.
type TimeoutError struct {
	Label string
}

func (e *TimeoutError) Error() string {
	return "AI_TIMEOUT:" + e.Label
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}
