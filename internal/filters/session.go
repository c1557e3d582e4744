package filters

import (
	"encoding/json"

	"github.com/julianstephens/taskdash/internal/constants"
	"github.com/julianstephens/taskdash/internal/logger"
	"github.com/julianstephens/taskdash/internal/models"
)

type envelope struct {
	V       int             `json:"v"`
	Filters json.RawMessage `json:"filters"`
}

// sessionMigrations upgrades an older envelope payload to the next version.
var sessionMigrations = map[int]func(json.RawMessage) json.RawMessage{}

// EncodeSession wraps filters in the versioned session envelope.
func EncodeSession(f models.Filters) []byte {
	payload, _ := json.Marshal(clean(f))
	data, _ := json.Marshal(envelope{V: constants.SessionSchemaVersion, Filters: payload})
	return data
}

// DecodeSession reads a session envelope. Corrupt data and versions without a
// migration path yield the defaults.
func DecodeSession(raw []byte) models.Filters {
	if len(raw) == 0 {
		return Default()
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logger.Debug("discarding unreadable session filters", "error", err)
		return Default()
	}
	if env.V > constants.SessionSchemaVersion {
		logger.Debug("discarding session filters from a newer version", "version", env.V)
		return Default()
	}
	payload := env.Filters
	for v := env.V; v != constants.SessionSchemaVersion; v++ {
		migrate, ok := sessionMigrations[v]
		if !ok {
			logger.Debug("discarding session filters with unsupported version", "version", env.V)
			return Default()
		}
		payload = migrate(payload)
	}
	return Normalize(payload)
}
