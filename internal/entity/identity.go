package entity

type DocumentType string

const (
	NationalID DocumentType = "national_id"
	HudumaCard DocumentType = "huduma_card"
	UnknownDoc DocumentType = "unknown"
)

type Gender string

const (
	Male   Gender = "Male"
	Female Gender = "Female"
)

// ExtractedIdentity holds the structured fields parsed from one document's
// recognized text. Every field besides RawText is either empty or a trimmed
// value set by exactly one matching rule.
type ExtractedIdentity struct {
	IDNumber        string       `json:"id_number,omitempty"`
	FullName        string       `json:"full_name,omitempty"`
	DateOfBirth     string       `json:"date_of_birth,omitempty"`
	Gender          Gender       `json:"gender,omitempty"`
	DocumentType    DocumentType `json:"document_type,omitempty"`
	Nationality     string       `json:"nationality,omitempty"`
	DistrictOfBirth string       `json:"district_of_birth,omitempty"`
	PlaceOfIssue    string       `json:"place_of_issue,omitempty"`
	DateOfIssue     string       `json:"date_of_issue,omitempty"`
	ExpiryDate      string       `json:"expiry_date,omitempty"`
	RawText         string       `json:"raw_text"`
	Note            string       `json:"note,omitempty"`
}

// Merge combines front and back extractions field by field, front values
// taking priority for any field present in both.
func (front *ExtractedIdentity) Merge(back *ExtractedIdentity) *ExtractedIdentity {
	if back == nil {
		return front
	}

	merged := *front
	if merged.IDNumber == "" {
		merged.IDNumber = back.IDNumber
	}
	if merged.FullName == "" {
		merged.FullName = back.FullName
	}
	if merged.DateOfBirth == "" {
		merged.DateOfBirth = back.DateOfBirth
	}
	if merged.Gender == "" {
		merged.Gender = back.Gender
	}
	if merged.DocumentType == "" || merged.DocumentType == UnknownDoc {
		if back.DocumentType != "" {
			merged.DocumentType = back.DocumentType
		}
	}
	if merged.Nationality == "" {
		merged.Nationality = back.Nationality
	}
	if merged.DistrictOfBirth == "" {
		merged.DistrictOfBirth = back.DistrictOfBirth
	}
	if merged.PlaceOfIssue == "" {
		merged.PlaceOfIssue = back.PlaceOfIssue
	}
	if merged.DateOfIssue == "" {
		merged.DateOfIssue = back.DateOfIssue
	}
	if merged.ExpiryDate == "" {
		merged.ExpiryDate = back.ExpiryDate
	}
	return &merged
}
