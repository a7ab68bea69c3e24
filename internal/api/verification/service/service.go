package verificationService

import (
	"os"
	"strconv"
	"strings"

	"ProjectKYC/internal/api/verification"
	"ProjectKYC/internal/entity"
	"ProjectKYC/pkg/face"
	"ProjectKYC/pkg/idcard"
	"ProjectKYC/pkg/ocr"
	"ProjectKYC/pkg/phone"
	s3Pkg "ProjectKYC/pkg/s3"
	"ProjectKYC/pkg/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const (
	NameMatchSubstring = "substring"
	NameMatchExact     = "exact"

	defaultFaceThreshold = 0.6
	archiveJPEGQuality   = 85
)

type IVerificationService interface {
	VerifyKenyanID(ctx context.Context, sub verification.Submission) (*verification.VerificationVerdict, error)
	ExtractIdentity(ctx context.Context, front, back []byte) *entity.ExtractedIdentity
	CompareFaces(ctx context.Context, selfie, idPhoto []byte) *entity.FaceComparisonResult
	ValidatePhone(raw, region string) (*entity.PhoneValidationResult, error)
	DetectFaces(frame []byte) *entity.FaceDetectionResult
}

type verificationService struct {
	log        *logrus.Logger
	ocrEngine  ocr.IOCREngine
	faceEngine face.IFaceEngine
	phone      phone.IPhone
	s3Client   s3Pkg.ItfS3
	utils      utils.IUtils

	faceThreshold   float64
	idMinDigits     int
	idMaxDigits     int
	nameMatchPolicy string
}

func NewVerificationService(
	log *logrus.Logger,
	ocrEngine ocr.IOCREngine,
	faceEngine face.IFaceEngine,
	phoneValidator phone.IPhone,
	s3Client s3Pkg.ItfS3,
	utils utils.IUtils,
) IVerificationService {
	return &verificationService{
		log:             log,
		ocrEngine:       ocrEngine,
		faceEngine:      faceEngine,
		phone:           phoneValidator,
		s3Client:        s3Client,
		utils:           utils,
		faceThreshold:   envFloat("FACE_MATCH_THRESHOLD", defaultFaceThreshold),
		idMinDigits:     envInt("KYC_ID_MIN_DIGITS", idcard.DefaultMinDigits),
		idMaxDigits:     envInt("KYC_ID_MAX_DIGITS", idcard.DefaultMaxDigits),
		nameMatchPolicy: envPolicy("KYC_NAME_MATCH_POLICY"),
	}
}

func envFloat(key string, fallback float64) float64 {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}

func envPolicy(key string) string {
	if strings.EqualFold(os.Getenv(key), NameMatchExact) {
		return NameMatchExact
	}
	return NameMatchSubstring
}
