// Package phone wraps libphonenumber parsing for the validation pipeline.
// Kenya is the default region, so subscriber forms like 0712345678 normalize
// to +254712345678.
package phone

import (
	"errors"
	"strings"

	"ProjectKYC/internal/entity"
	"github.com/nyaruka/phonenumbers"
)

const DefaultRegion = "KE"

var ErrUnparsable = errors.New("phone number cannot be parsed")

type IPhone interface {
	Validate(raw, region string) (*entity.PhoneValidationResult, error)
	ValidateExtended(raw, region string) (*entity.PhoneValidationResult, error)
}

type phoneValidator struct{}

func New() IPhone {
	return &phoneValidator{}
}

func (p *phoneValidator) parse(raw, region string) (*phonenumbers.PhoneNumber, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrUnparsable
	}
	if region == "" {
		region = DefaultRegion
	}

	parsed, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return nil, ErrUnparsable
	}
	return parsed, nil
}

// Validate parses and validates one number. A nil error with IsValid=false
// means the number parsed but is not a real subscriber number; ErrUnparsable
// means the input is not a phone number at all.
func (p *phoneValidator) Validate(raw, region string) (*entity.PhoneValidationResult, error) {
	parsed, err := p.parse(raw, region)
	if err != nil {
		return nil, err
	}

	if !phonenumbers.IsValidNumber(parsed) {
		return &entity.PhoneValidationResult{
			IsValid: false,
			Message: "Invalid phone number",
		}, nil
	}

	return &entity.PhoneValidationResult{
		IsValid:        true,
		NormalizedE164: phonenumbers.Format(parsed, phonenumbers.E164),
		Message:        "Valid phone number",
	}, nil
}

// ValidateExtended adds region and carrier metadata to the basic result.
func (p *phoneValidator) ValidateExtended(raw, region string) (*entity.PhoneValidationResult, error) {
	result, err := p.Validate(raw, region)
	if err != nil {
		return nil, err
	}
	if !result.IsValid {
		return result, nil
	}

	parsed, err := p.parse(raw, region)
	if err != nil {
		return nil, err
	}

	result.RegionCode = phonenumbers.GetRegionCodeForNumber(parsed)
	if carrier, err := phonenumbers.GetCarrierForNumber(parsed, "en"); err == nil {
		result.CarrierName = carrier
	}

	return result, nil
}
