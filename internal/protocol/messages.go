package protocol

// GENERATE (client -> server)
type GenerateMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	RequestID       string  `json:"request_id,omitempty"`
	Seed            string  `json:"seed"`
	Width           float64 `json:"width"`
	Height          float64 `json:"height"`
	Spacing         float64 `json:"spacing"`
	Chaos           float64 `json:"chaos"`
	// Backend overrides the server's noise backend for this request.
	Backend string `json:"backend,omitempty"`
}

// MAP (server -> client)
type MapMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	RequestID       string       `json:"request_id,omitempty"`
	Digest          string       `json:"digest"`
	Seed            string       `json:"seed"`
	SeedValue       uint64       `json:"seed_value"`
	Width           float64      `json:"width"`
	Height          float64      `json:"height"`
	Spacing         float64      `json:"spacing"`
	Chaos           float64      `json:"chaos"`
	Points          [][2]float64 `json:"points"`
	Elevation       []float64    `json:"elevation"`
	Stats           MapStats     `json:"stats"`
	Cached          bool         `json:"cached,omitempty"`
}

type MapStats struct {
	Count    int     `json:"count"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Mean     float64 `json:"mean"`
	AboveSea float64 `json:"above_sea"`
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	RequestID       string `json:"request_id,omitempty"`
	Code            string `json:"code"`
	Message         string `json:"message"`
}

func NewError(requestID, code, message string) ErrorMsg {
	return ErrorMsg{
		Type:            TypeError,
		ProtocolVersion: Version,
		RequestID:       requestID,
		Code:            code,
		Message:         message,
	}
}
