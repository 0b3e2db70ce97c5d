package sessionarchive

import (
	"encoding/json"
	"fmt"

	"github.com/yanqian/sunday/internal/domain/session"
)

const contentType = "application/json"

// ObjectKey places a record under its profile and UTC start date.
func ObjectKey(rec session.Record) string {
	return fmt.Sprintf("sessions/%s/%s/%s.json", rec.ProfileID, rec.StartedAt.UTC().Format("2006-01-02"), rec.ID)
}

func encode(rec session.Record) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode session %s: %w", rec.ID, err)
	}
	return data, nil
}
