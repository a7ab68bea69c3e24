package entity

type PhoneValidationResult struct {
	IsValid        bool   `json:"is_valid"`
	NormalizedE164 string `json:"normalized_e164,omitempty"`
	Message        string `json:"message"`
	RegionCode     string `json:"region_code,omitempty"`
	CarrierName    string `json:"carrier_name,omitempty"`
}
