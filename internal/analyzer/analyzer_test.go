package analyzer

import (
	"spikewatch/internal/measurement"
)

// stubOracle returns a fixed direction and records every prompt it was asked.
type stubOracle struct {
	direction measurement.Direction
	prompts   []string
}

func (s *stubOracle) AskDirection(prompt string) measurement.Direction {
	s.prompts = append(s.prompts, prompt)
	return s.direction
}
