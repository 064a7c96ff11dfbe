package models

// MultilingualText carries a mandatory English value plus optional Hindi and
// Punjabi translations
type MultilingualText struct {
	En string `json:"en" validate:"required"`
	Hi string `json:"hi,omitempty"`
	Pa string `json:"pa,omitempty"`
}

// Text creates an English-only value
func Text(en string) MultilingualText {
	return MultilingualText{En: en}
}
