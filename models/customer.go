package models

// CustomerInfo is attached to a booking draft before submission.
type CustomerInfo struct {
	Name             string `json:"name" mapstructure:"name"`
	Email            string `json:"email" mapstructure:"email"`
	Phone            string `json:"phone" mapstructure:"phone"`
	Age              int    `json:"age,omitempty" mapstructure:"age"`
	Gender           string `json:"gender,omitempty" mapstructure:"gender"`
	Nationality      string `json:"nationality,omitempty" mapstructure:"nationality"`
	EmergencyContact string `json:"emergencyContact,omitempty" mapstructure:"emergencyContact"`
}

// MedicalInfo is advisory data captured for the therapist.
type MedicalInfo struct {
	Conditions          []string `json:"conditions,omitempty" mapstructure:"conditions"`
	Medications         []string `json:"medications,omitempty" mapstructure:"medications"`
	Allergies           []string `json:"allergies,omitempty" mapstructure:"allergies"`
	SpecialRequirements string   `json:"specialRequirements,omitempty" mapstructure:"specialRequirements"`
}

// Empty reports whether nothing was captured.
func (m MedicalInfo) Empty() bool {
	return len(m.Conditions) == 0 && len(m.Medications) == 0 && len(m.Allergies) == 0 && m.SpecialRequirements == ""
}
