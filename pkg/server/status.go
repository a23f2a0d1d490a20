package server

// ResponderStatus is an enum for all possible status conditions for the responder
type ResponderStatus int

const (
	// Stopped indicates the radio is not powered and nothing is advertised
	Stopped ResponderStatus = iota
	// Advertising indicates the walkie service is registered and advertised
	Advertising
	// Crashed indicates the walkie service could not be registered
	Crashed
)

func (s ResponderStatus) String() string {
	return []string{"Stopped", "Advertising", "Crashed"}[s]
}
