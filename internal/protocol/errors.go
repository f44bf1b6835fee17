package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"
	ErrProtoVersion    = "E_PROTO_VERSION"

	// Generation.
	ErrBadRequest = "E_BAD_REQUEST"
	ErrTooLarge   = "E_TOO_LARGE"
	ErrConfig     = "E_CONFIG"
	ErrCompute    = "E_COMPUTE"
	ErrTimeout    = "E_TIMEOUT"
	ErrNotFound   = "E_NOT_FOUND"
	ErrInternal   = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrProtoVersion:    {},
	ErrBadRequest:      {},
	ErrTooLarge:        {},
	ErrConfig:          {},
	ErrCompute:         {},
	ErrTimeout:         {},
	ErrNotFound:        {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
