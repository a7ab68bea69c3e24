package verification

import (
	"ProjectKYC/internal/entity"
)

type ValidateKenyanIDRequest struct {
	Name        string `form:"name" validate:"required,min=2,max=255"`
	IDNumber    string `form:"id_number" validate:"required,min=5,max=12"`
	PhoneNumber string `form:"phone_number" validate:"required,min=9,max=16"`
}

// Submission is one complete verification request after multipart parsing:
// the claimed identity plus the three decoded images.
type Submission struct {
	Name        string
	IDNumber    string
	PhoneNumber string
	Selfie      []byte
	IDFront     []byte
	IDBack      []byte
}

type SubmittedData struct {
	Name        string `json:"name"`
	IDNumber    string `json:"id_number"`
	PhoneNumber string `json:"phone_number"`
}

type IDValidationDetail struct {
	IsValid          bool   `json:"is_valid"`
	ExtractedMatched bool   `json:"extracted_matched"`
	Message          string `json:"message"`
}

type ValidationDetails struct {
	IDValidation    IDValidationDetail           `json:"id_validation"`
	OCRExtraction   *entity.ExtractedIdentity    `json:"ocr_extraction"`
	FaceMatch       entity.FaceComparisonResult  `json:"face_match"`
	PhoneValidation entity.PhoneValidationResult `json:"phone_validation"`
	NameMatch       bool                         `json:"name_match"`
}

// VerificationVerdict is the composite response; a failed verification is a
// normal 200 body with IsVerified=false.
type VerificationVerdict struct {
	Status            string            `json:"status"`
	Message           string            `json:"message"`
	IsVerified        bool              `json:"is_verified"`
	Data              SubmittedData     `json:"data"`
	ValidationDetails ValidationDetails `json:"validation_details"`
}

type ExtractTextRequest struct {
	ImageBase64 string `json:"image_base64" validate:"required"`
}

type ExtractTextResponse struct {
	Data entity.ExtractedIdentity `json:"data"`
}

type FaceValidationResponse struct {
	Data entity.FaceComparisonResult `json:"data"`
}

type ValidatePhoneRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,min=7,max=16"`
	Region      string `json:"region" validate:"omitempty,len=2"`
}

type ValidatePhoneResponse struct {
	Data entity.PhoneValidationResult `json:"data"`
}
