package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gatherly/server/internal/domain/events"
	"github.com/gatherly/server/internal/domain/users"
	"github.com/gatherly/server/internal/timezone"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func pathParam(r *http.Request, key string) string {
	if r == nil {
		return ""
	}
	return r.PathValue(key)
}

// displayLocation resolves the optional ?tz= query parameter. A missing
// parameter yields a nil location, which eventPayload renders as the stored
// UTC instant.
func displayLocation(r *http.Request) (*time.Location, error) {
	name := r.URL.Query().Get("tz")
	if name == "" {
		return nil, nil
	}
	return timezone.Load(name)
}

// eventPayload is the wire form of an event. Start and end times are emitted
// as strings so a requested display zone changes only the representation,
// never the stored instant.
type eventPayload struct {
	ID          string        `json:"id"`
	Creator     users.Summary `json:"creator"`
	Name        string        `json:"name"`
	Location    string        `json:"location"`
	StartTime   string        `json:"start_time"`
	EndTime     string        `json:"end_time"`
	MaxCapacity int           `json:"max_capacity"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func eventView(event events.Event, loc *time.Location) eventPayload {
	return eventPayload{
		ID:          event.ID,
		Creator:     event.Creator,
		Name:        event.Name,
		Location:    event.Location,
		StartTime:   timezone.Format(event.StartTime, loc),
		EndTime:     timezone.Format(event.EndTime, loc),
		MaxCapacity: event.MaxCapacity,
		CreatedAt:   event.CreatedAt,
		UpdatedAt:   event.UpdatedAt,
	}
}
