package utils

// Result is what every usecase method hands back to its controller.
type Result struct {
	Data  interface{}
	Error error
}
