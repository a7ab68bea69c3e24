package verificationService

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"strings"
	"testing"

	"ProjectKYC/internal/api/verification"
	"ProjectKYC/internal/entity"
	"ProjectKYC/pkg/phone"
	s3Pkg "ProjectKYC/pkg/s3"
	"ProjectKYC/pkg/utils"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOCREngine struct {
	fragments [][]string
	err       error
	calls     int
}

func (s *stubOCREngine) RecognizeText(frame []byte) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.calls >= len(s.fragments) {
		return nil, nil
	}
	result := s.fragments[s.calls]
	s.calls++
	return result, nil
}

func (s *stubOCREngine) IsConnected() bool { return true }
func (s *stubOCREngine) Reconnect() error  { return nil }
func (s *stubOCREngine) Close()            {}

type stubFaceEngine struct {
	analyses []*entity.FaceAnalysis
	err      error
	calls    int
}

func (s *stubFaceEngine) AnalyzeFaces(frame []byte) (*entity.FaceAnalysis, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.calls >= len(s.analyses) {
		return &entity.FaceAnalysis{}, nil
	}
	result := s.analyses[s.calls]
	s.calls++
	return result, nil
}

func (s *stubFaceEngine) DetectFaces(frame []byte) ([]entity.FaceBox, error) {
	analysis, err := s.AnalyzeFaces(frame)
	if err != nil {
		return nil, err
	}
	return analysis.Boxes, nil
}

func (s *stubFaceEngine) IsConnected() bool { return true }
func (s *stubFaceEngine) Reconnect() error  { return nil }
func (s *stubFaceEngine) Close()            {}

type stubS3 struct {
	enabled bool
	failOn  string
	keys    []string
	deleted []string
}

func (s *stubS3) Enabled() bool { return s.enabled }

func (s *stubS3) UploadBytes(key string, data []byte, contentType string) (string, error) {
	if s.failOn != "" && strings.Contains(key, s.failOn) {
		return "", errors.New("upload failed")
	}
	s.keys = append(s.keys, key)
	return "https://bucket.s3.amazonaws.com/" + key, nil
}

func (s *stubS3) DeleteFile(fileName string) error {
	s.deleted = append(s.deleted, fileName)
	return nil
}

func faceAnalysis(encoding []float64) *entity.FaceAnalysis {
	return &entity.FaceAnalysis{
		Boxes:     []entity.FaceBox{{X1: 10, Y1: 10, X2: 90, Y2: 90}},
		Encodings: [][]float64{encoding},
	}
}

func testJPEG(t *testing.T, c color.Color) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func frontFragments() []string {
	return []string{
		"REPUBLIC OF KENYA",
		"NATIONAL IDENTITY CARD",
		"SURNAME KAMAU",
		"GIVEN NAME JOHN",
		"SEX MALE",
		"ID NO 12345678",
	}
}

func newTestService(ocrEngine *stubOCREngine, faceEngine *stubFaceEngine, s3Client *stubS3) IVerificationService {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	var s3 s3Pkg.ItfS3
	if s3Client != nil {
		s3 = s3Client
	}

	return NewVerificationService(logger, ocrEngine, faceEngine, phone.New(), s3, utils.New())
}

func validSubmission(t *testing.T) verification.Submission {
	return verification.Submission{
		Name:        "John Kamau",
		IDNumber:    "12345678",
		PhoneNumber: "0712345678",
		Selfie:      testJPEG(t, color.RGBA{R: 200, A: 255}),
		IDFront:     testJPEG(t, color.RGBA{G: 200, A: 255}),
		IDBack:      testJPEG(t, color.RGBA{B: 200, A: 255}),
	}
}

func TestVerifyKenyanIDVerified(t *testing.T) {
	ocrEngine := &stubOCREngine{fragments: [][]string{frontFragments(), {"SERIAL NUMBER 555"}}}
	faceEngine := &stubFaceEngine{analyses: []*entity.FaceAnalysis{
		faceAnalysis([]float64{1, 0, 0}),
		faceAnalysis([]float64{1, 0.3, 0}),
	}}
	svc := newTestService(ocrEngine, faceEngine, nil)

	verdict, err := svc.VerifyKenyanID(context.Background(), validSubmission(t))
	require.NoError(t, err)

	assert.True(t, verdict.IsVerified)
	assert.Equal(t, "success", verdict.Status)
	assert.Equal(t, "+254712345678", verdict.Data.PhoneNumber)
	assert.Equal(t, "John Kamau", verdict.ValidationDetails.OCRExtraction.FullName)
	assert.Equal(t, "12345678", verdict.ValidationDetails.OCRExtraction.IDNumber)
	assert.True(t, verdict.ValidationDetails.IDValidation.IsValid)
	assert.True(t, verdict.ValidationDetails.IDValidation.ExtractedMatched)
	assert.True(t, verdict.ValidationDetails.NameMatch)
	assert.True(t, verdict.ValidationDetails.FaceMatch.IsMatch)
	assert.True(t, verdict.ValidationDetails.PhoneValidation.IsValid)
}

func TestVerifyKenyanIDFaceMismatch(t *testing.T) {
	ocrEngine := &stubOCREngine{fragments: [][]string{frontFragments(), nil}}
	faceEngine := &stubFaceEngine{analyses: []*entity.FaceAnalysis{
		faceAnalysis([]float64{1, 0, 0}),
		faceAnalysis([]float64{1, 0.8, 0}),
	}}
	svc := newTestService(ocrEngine, faceEngine, nil)

	verdict, err := svc.VerifyKenyanID(context.Background(), validSubmission(t))
	require.NoError(t, err)

	assert.False(t, verdict.IsVerified)
	assert.False(t, verdict.ValidationDetails.FaceMatch.IsMatch)
	assert.Equal(t, "Faces do not match", verdict.ValidationDetails.FaceMatch.Message)
}

func TestVerifyKenyanIDNoFaceDetected(t *testing.T) {
	ocrEngine := &stubOCREngine{fragments: [][]string{frontFragments(), nil}}
	faceEngine := &stubFaceEngine{analyses: []*entity.FaceAnalysis{{}, {}}}
	svc := newTestService(ocrEngine, faceEngine, nil)

	verdict, err := svc.VerifyKenyanID(context.Background(), validSubmission(t))
	require.NoError(t, err)

	assert.False(t, verdict.IsVerified)
	assert.False(t, verdict.ValidationDetails.FaceMatch.IsMatch)
	assert.Zero(t, verdict.ValidationDetails.FaceMatch.ConfidencePercent)
	assert.Equal(t, "Could not detect faces in one or both images", verdict.ValidationDetails.FaceMatch.Message)
}

func TestVerifyKenyanIDExtractedNumberMismatch(t *testing.T) {
	fragments := []string{"NATIONAL IDENTITY CARD", "SURNAME KAMAU", "GIVEN NAME JOHN", "ID NO 87654321"}
	ocrEngine := &stubOCREngine{fragments: [][]string{fragments, nil}}
	faceEngine := &stubFaceEngine{analyses: []*entity.FaceAnalysis{
		faceAnalysis([]float64{1, 0, 0}),
		faceAnalysis([]float64{1, 0.3, 0}),
	}}
	svc := newTestService(ocrEngine, faceEngine, nil)

	verdict, err := svc.VerifyKenyanID(context.Background(), validSubmission(t))
	require.NoError(t, err)

	assert.False(t, verdict.IsVerified)
	assert.False(t, verdict.ValidationDetails.IDValidation.ExtractedMatched)
	assert.True(t, verdict.ValidationDetails.IDValidation.IsValid)
}

func TestVerifyKenyanIDUnparsablePhone(t *testing.T) {
	svc := newTestService(&stubOCREngine{}, &stubFaceEngine{}, nil)

	sub := validSubmission(t)
	sub.PhoneNumber = "not-a-number"

	verdict, err := svc.VerifyKenyanID(context.Background(), sub)
	assert.ErrorIs(t, err, verification.ErrInvalidPhoneNumber)
	assert.Nil(t, verdict)
}

func TestVerifyKenyanIDUnreadableImage(t *testing.T) {
	svc := newTestService(&stubOCREngine{}, &stubFaceEngine{}, nil)

	sub := validSubmission(t)
	sub.IDFront = []byte("definitely not an image")

	verdict, err := svc.VerifyKenyanID(context.Background(), sub)
	assert.ErrorIs(t, err, verification.ErrUnreadableImage)
	assert.Nil(t, verdict)
}

func TestVerifyKenyanIDNameMismatch(t *testing.T) {
	ocrEngine := &stubOCREngine{fragments: [][]string{frontFragments(), nil}}
	faceEngine := &stubFaceEngine{analyses: []*entity.FaceAnalysis{
		faceAnalysis([]float64{1, 0, 0}),
		faceAnalysis([]float64{1, 0.3, 0}),
	}}
	svc := newTestService(ocrEngine, faceEngine, nil)

	sub := validSubmission(t)
	sub.Name = "Peter Otieno"

	verdict, err := svc.VerifyKenyanID(context.Background(), sub)
	require.NoError(t, err)

	assert.False(t, verdict.IsVerified)
	assert.False(t, verdict.ValidationDetails.NameMatch)
}

func TestVerifyKenyanIDExactNamePolicy(t *testing.T) {
	t.Setenv("KYC_NAME_MATCH_POLICY", "exact")

	ocrEngine := &stubOCREngine{fragments: [][]string{frontFragments(), nil}}
	faceEngine := &stubFaceEngine{analyses: []*entity.FaceAnalysis{
		faceAnalysis([]float64{1, 0, 0}),
		faceAnalysis([]float64{1, 0.3, 0}),
	}}
	svc := newTestService(ocrEngine, faceEngine, nil)

	// Substring of the extracted name; the exact policy rejects it.
	sub := validSubmission(t)
	sub.Name = "John"

	verdict, err := svc.VerifyKenyanID(context.Background(), sub)
	require.NoError(t, err)

	assert.False(t, verdict.ValidationDetails.NameMatch)
}

func TestVerifyKenyanIDArchivesImages(t *testing.T) {
	ocrEngine := &stubOCREngine{fragments: [][]string{frontFragments(), nil}}
	faceEngine := &stubFaceEngine{analyses: []*entity.FaceAnalysis{
		faceAnalysis([]float64{1, 0, 0}),
		faceAnalysis([]float64{1, 0.3, 0}),
	}}
	s3Client := &stubS3{enabled: true}
	svc := newTestService(ocrEngine, faceEngine, s3Client)

	_, err := svc.VerifyKenyanID(context.Background(), validSubmission(t))
	require.NoError(t, err)

	require.Len(t, s3Client.keys, 3)
	for _, key := range s3Client.keys {
		assert.True(t, strings.HasPrefix(key, "kyc/"))
		assert.True(t, strings.HasSuffix(key, ".jpg"))
	}
	assert.Empty(t, s3Client.deleted)
}

func TestVerifyKenyanIDArchiveRollsBackPartialFailure(t *testing.T) {
	ocrEngine := &stubOCREngine{fragments: [][]string{frontFragments(), nil}}
	faceEngine := &stubFaceEngine{analyses: []*entity.FaceAnalysis{
		faceAnalysis([]float64{1, 0, 0}),
		faceAnalysis([]float64{1, 0.3, 0}),
	}}
	s3Client := &stubS3{enabled: true, failOn: "id_back"}
	svc := newTestService(ocrEngine, faceEngine, s3Client)

	verdict, err := svc.VerifyKenyanID(context.Background(), validSubmission(t))
	require.NoError(t, err)

	// Archival is best effort and never touches the verdict.
	assert.True(t, verdict.IsVerified)

	// The two images stored before the failure must be removed again.
	require.Len(t, s3Client.keys, 2)
	assert.ElementsMatch(t, s3Client.keys, s3Client.deleted)
}

func TestExtractIdentityMergesSides(t *testing.T) {
	ocrEngine := &stubOCREngine{fragments: [][]string{
		{"NATIONAL IDENTITY CARD", "SURNAME KAMAU", "GIVEN NAME JOHN", "ID NO 12345678"},
		{"DISTRICT OF BIRTH KISUMU", "DATE OF ISSUE 01/01/2010"},
	}}
	svc := newTestService(ocrEngine, &stubFaceEngine{}, nil)

	extracted := svc.ExtractIdentity(context.Background(), []byte("front"), []byte("back"))
	require.NotNil(t, extracted)

	assert.Equal(t, "12345678", extracted.IDNumber)
	assert.Equal(t, "John Kamau", extracted.FullName)
	assert.Equal(t, "Kisumu", extracted.DistrictOfBirth)
	assert.Equal(t, "01/01/2010", extracted.DateOfIssue)
}

func TestExtractIdentityFrontOnly(t *testing.T) {
	ocrEngine := &stubOCREngine{fragments: [][]string{
		{"ID NO 12345678"},
	}}
	svc := newTestService(ocrEngine, &stubFaceEngine{}, nil)

	extracted := svc.ExtractIdentity(context.Background(), []byte("front"), nil)
	require.NotNil(t, extracted)
	assert.Equal(t, "12345678", extracted.IDNumber)
}

func TestExtractIdentityEngineFailure(t *testing.T) {
	ocrEngine := &stubOCREngine{err: errors.New("engine unreachable")}
	svc := newTestService(ocrEngine, &stubFaceEngine{}, nil)

	extracted := svc.ExtractIdentity(context.Background(), []byte("front"), nil)
	require.NotNil(t, extracted)

	assert.Empty(t, extracted.IDNumber)
	assert.Equal(t, "text recognition failed", extracted.Note)
}

func TestCompareFacesEngineFailure(t *testing.T) {
	faceEngine := &stubFaceEngine{err: errors.New("engine unreachable")}
	svc := newTestService(&stubOCREngine{}, faceEngine, nil)

	result := svc.CompareFaces(context.Background(), []byte("a"), []byte("b"))
	require.NotNil(t, result)

	assert.False(t, result.IsMatch)
	assert.Zero(t, result.ConfidencePercent)
	assert.Contains(t, result.Message, "Error comparing faces")
}

func TestCompareFacesConfidence(t *testing.T) {
	faceEngine := &stubFaceEngine{analyses: []*entity.FaceAnalysis{
		faceAnalysis([]float64{1, 0, 0}),
		faceAnalysis([]float64{1, 0.25, 0}),
	}}
	svc := newTestService(&stubOCREngine{}, faceEngine, nil)

	result := svc.CompareFaces(context.Background(), []byte("a"), []byte("b"))
	require.NotNil(t, result)

	assert.True(t, result.IsMatch)
	assert.InDelta(t, 75.0, result.ConfidencePercent, 0.01)
	assert.Contains(t, result.Message, "Faces match")
}

func TestValidatePhoneService(t *testing.T) {
	svc := newTestService(&stubOCREngine{}, &stubFaceEngine{}, nil)

	result, err := svc.ValidatePhone("0712345678", "")
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Equal(t, "+254712345678", result.NormalizedE164)

	_, err = svc.ValidatePhone("garbage", "")
	assert.ErrorIs(t, err, verification.ErrInvalidPhoneNumber)
}

func TestDetectFacesService(t *testing.T) {
	faceEngine := &stubFaceEngine{analyses: []*entity.FaceAnalysis{
		faceAnalysis([]float64{1, 0, 0}),
	}}
	svc := newTestService(&stubOCREngine{}, faceEngine, nil)

	result := svc.DetectFaces([]byte("frame"))
	require.NotNil(t, result)
	assert.Equal(t, 1, result.FaceCount)
	assert.Len(t, result.Boxes, 1)
}
