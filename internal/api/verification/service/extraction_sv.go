package verificationService

import (
	"strings"

	"ProjectKYC/internal/entity"
	contextPkg "ProjectKYC/pkg/context"
	"ProjectKYC/pkg/idcard"
	"golang.org/x/net/context"
)

// ExtractIdentity recognizes text on the front (and optionally back) of the
// document and parses it into structured fields, merging both sides with
// front-image values taking priority. Recognition failure degrades to an
// empty record with a diagnostic note.
func (s *verificationService) ExtractIdentity(ctx context.Context, front, back []byte) *entity.ExtractedIdentity {
	frontIdentity := s.extractSide(ctx, front)
	if back == nil {
		return frontIdentity
	}

	backIdentity := s.extractSide(ctx, back)
	return frontIdentity.Merge(backIdentity)
}

func (s *verificationService) extractSide(ctx context.Context, frame []byte) *entity.ExtractedIdentity {
	requestID := contextPkg.GetRequestID(ctx)

	fragments, err := s.ocrEngine.RecognizeText(frame)
	if err != nil {
		s.log.WithField("request_id", requestID).Errorf("Text recognition failed: %v", err)
		return &entity.ExtractedIdentity{Note: "text recognition failed"}
	}

	return idcard.Extract(strings.Join(fragments, "\n"))
}
