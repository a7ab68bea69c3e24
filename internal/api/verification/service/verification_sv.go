package verificationService

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"ProjectKYC/internal/api/verification"
	"ProjectKYC/internal/entity"
	"ProjectKYC/pkg/idcard"
	phonePkg "ProjectKYC/pkg/phone"
	"golang.org/x/net/context"

	contextPkg "ProjectKYC/pkg/context"
)

// VerifyKenyanID runs the full pipeline: phone validation, image ingestion,
// OCR extraction over front and back, face comparison, format checks, and
// the composite verdict. Degraded checks (no faces, empty extraction) stay
// inside the verdict; only input errors return a non-nil error.
func (s *verificationService) VerifyKenyanID(ctx context.Context, sub verification.Submission) (*verification.VerificationVerdict, error) {
	requestID := contextPkg.GetRequestID(ctx)

	phoneResult, err := s.phone.Validate(sub.PhoneNumber, phonePkg.DefaultRegion)
	if err != nil {
		if errors.Is(err, phonePkg.ErrUnparsable) {
			return nil, verification.ErrInvalidPhoneNumber
		}
		return nil, err
	}

	selfie, err := s.utils.NormalizeImage(sub.Selfie, archiveJPEGQuality)
	if err != nil {
		return nil, verification.ErrUnreadableImage
	}
	idFront, err := s.utils.NormalizeImage(sub.IDFront, archiveJPEGQuality)
	if err != nil {
		return nil, verification.ErrUnreadableImage
	}
	idBack, err := s.utils.NormalizeImage(sub.IDBack, archiveJPEGQuality)
	if err != nil {
		return nil, verification.ErrUnreadableImage
	}

	extracted := s.ExtractIdentity(ctx, idFront, idBack)
	faceResult := s.CompareFaces(ctx, selfie, idFront)

	idFormatValid := idcard.ValidateNumber(sub.IDNumber, s.idMinDigits, s.idMaxDigits)
	idExtractedMatched := extracted.IDNumber != "" &&
		(extracted.IDNumber == sub.IDNumber || strings.Contains(sub.IDNumber, extracted.IDNumber))
	nameMatched := s.nameMatches(sub.Name, extracted.FullName)

	isVerified := idFormatValid &&
		phoneResult.IsValid &&
		idExtractedMatched &&
		nameMatched &&
		faceResult.IsMatch

	s.archiveSubmission(requestID, selfie, idFront, idBack)

	submittedPhone := sub.PhoneNumber
	if phoneResult.NormalizedE164 != "" {
		submittedPhone = phoneResult.NormalizedE164
	}

	idMessage := "Valid ID number"
	if !idFormatValid {
		idMessage = fmt.Sprintf("ID number must be %d-%d digits", s.idMinDigits, s.idMaxDigits)
	}

	return &verification.VerificationVerdict{
		Status:     "success",
		Message:    "Validation completed successfully",
		IsVerified: isVerified,
		Data: verification.SubmittedData{
			Name:        strings.TrimSpace(sub.Name),
			IDNumber:    sub.IDNumber,
			PhoneNumber: submittedPhone,
		},
		ValidationDetails: verification.ValidationDetails{
			IDValidation: verification.IDValidationDetail{
				IsValid:          idFormatValid,
				ExtractedMatched: idExtractedMatched,
				Message:          idMessage,
			},
			OCRExtraction:   extracted,
			FaceMatch:       *faceResult,
			PhoneValidation: *phoneResult,
			NameMatch:       nameMatched,
		},
	}, nil
}

func (s *verificationService) ValidatePhone(raw, region string) (*entity.PhoneValidationResult, error) {
	result, err := s.phone.ValidateExtended(raw, region)
	if err != nil {
		return nil, verification.ErrInvalidPhoneNumber
	}
	return result, nil
}

// nameMatches compares the submitted name against the extracted one under
// the configured policy. An absent extracted name is a failed check.
func (s *verificationService) nameMatches(submitted, extracted string) bool {
	if extracted == "" || strings.TrimSpace(submitted) == "" {
		return false
	}

	a := strings.ToLower(strings.TrimSpace(submitted))
	b := strings.ToLower(strings.TrimSpace(extracted))

	if s.nameMatchPolicy == NameMatchExact {
		return a == b
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// archiveSubmission stores the submitted images when a bucket is configured.
// Best effort only; archival never changes the verdict.
func (s *verificationService) archiveSubmission(requestID string, selfie, idFront, idBack []byte) {
	if s.s3Client == nil || !s.s3Client.Enabled() {
		return
	}

	prefix, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		s.log.WithField("request_id", requestID).Errorf("Failed to generate archive key: %v", err)
		return
	}

	images := []struct {
		name string
		data []byte
	}{
		{"selfie", selfie},
		{"id_front", idFront},
		{"id_back", idBack},
	}

	var stored []string
	for _, img := range images {
		key := fmt.Sprintf("kyc/%s-%s.jpg", prefix, img.name)
		if _, err := s.s3Client.UploadBytes(key, img.data, "image/jpeg"); err != nil {
			s.log.WithField("request_id", requestID).Errorf("Failed to archive %s: %v", img.name, err)

			// The archive is all-or-nothing: remove what already landed.
			for _, k := range stored {
				if delErr := s.s3Client.DeleteFile(k); delErr != nil {
					s.log.WithField("request_id", requestID).Errorf("Failed to roll back %s: %v", k, delErr)
				}
			}
			return
		}
		stored = append(stored, key)
	}
}
