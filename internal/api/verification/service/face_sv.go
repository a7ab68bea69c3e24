package verificationService

import (
	"fmt"

	"ProjectKYC/internal/entity"
	contextPkg "ProjectKYC/pkg/context"
	"ProjectKYC/pkg/face"
	"golang.org/x/net/context"
)

// CompareFaces encodes the primary face of each image and compares the
// embeddings against the configured distance threshold. Engine failures and
// missing faces become no-match results, never request failures.
func (s *verificationService) CompareFaces(ctx context.Context, selfie, idPhoto []byte) *entity.FaceComparisonResult {
	requestID := contextPkg.GetRequestID(ctx)

	selfieAnalysis, err := s.faceEngine.AnalyzeFaces(selfie)
	if err != nil {
		s.log.WithField("request_id", requestID).Errorf("Face engine failed on selfie: %v", err)
		return noMatch(fmt.Sprintf("Error comparing faces: %v", err))
	}

	idAnalysis, err := s.faceEngine.AnalyzeFaces(idPhoto)
	if err != nil {
		s.log.WithField("request_id", requestID).Errorf("Face engine failed on ID photo: %v", err)
		return noMatch(fmt.Sprintf("Error comparing faces: %v", err))
	}

	if !selfieAnalysis.HasFace() || !idAnalysis.HasFace() {
		return noMatch("Could not detect faces in one or both images")
	}

	distance := face.Distance(selfieAnalysis.PrimaryEncoding(), idAnalysis.PrimaryEncoding())
	confidence := (1 - distance) * 100
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}

	if distance > s.faceThreshold {
		return &entity.FaceComparisonResult{
			IsMatch:           false,
			ConfidencePercent: confidence,
			Message:           "Faces do not match",
		}
	}

	return &entity.FaceComparisonResult{
		IsMatch:           true,
		ConfidencePercent: confidence,
		Message:           fmt.Sprintf("Faces match with %.2f%% confidence", confidence),
	}
}

// DetectFaces serves the live-framing websocket: boxes only, no embeddings.
func (s *verificationService) DetectFaces(frame []byte) *entity.FaceDetectionResult {
	boxes, err := s.faceEngine.DetectFaces(frame)
	if err != nil {
		return &entity.FaceDetectionResult{Error: err.Error()}
	}

	return &entity.FaceDetectionResult{
		FaceCount: len(boxes),
		Boxes:     boxes,
	}
}

func noMatch(message string) *entity.FaceComparisonResult {
	return &entity.FaceComparisonResult{
		IsMatch:           false,
		ConfidencePercent: 0.0,
		Message:           message,
	}
}
