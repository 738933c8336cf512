package models

// Therapist performs treatments. Availability maps a weekday ("monday") to
// the HH:MM start times offered that day.
type Therapist struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Specialties  []string            `json:"specialties,omitempty"`
	Availability map[string][]string `json:"availability,omitempty"`
	Rating       float64             `json:"rating,omitempty"`
}

// AvailableAt reports whether the therapist offers hhmm on weekday.
// A therapist without published availability is treated as available.
func (t Therapist) AvailableAt(weekday, hhmm string) bool {
	if len(t.Availability) == 0 {
		return true
	}
	for _, slot := range t.Availability[weekday] {
		if slot == hhmm {
			return true
		}
	}
	return false
}
