package service

import "fmt"

type RangeReason string

const (
	ReasonTooEarly  RangeReason = "too_early"
	ReasonTooRecent RangeReason = "too_recent"
	ReasonNotFound  RangeReason = "not_found"
)

// RangeError reports a requested date range the store cannot satisfy. It is
// the only error a caller should surface to clients as-is.
type RangeError struct {
	Reason  RangeReason
	Message string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

func tooEarly(start, first string) *RangeError {
	return &RangeError{
		Reason:  ReasonTooEarly,
		Message: fmt.Sprintf("Date %s is too early, our records begin %s.", start, first),
	}
}

func tooRecent(end, last string) *RangeError {
	return &RangeError{
		Reason:  ReasonTooRecent,
		Message: fmt.Sprintf("Date %s is too recent, our records end %s.", end, last),
	}
}

func startNotFound(start string) *RangeError {
	return &RangeError{
		Reason:  ReasonNotFound,
		Message: fmt.Sprintf("Date %s does not exist or is not formatted yyyy-mm-dd.", start),
	}
}

func rangeNotFound() *RangeError {
	return &RangeError{
		Reason:  ReasonNotFound,
		Message: "Date(s) are not formatted yyyy-mm-dd.",
	}
}
