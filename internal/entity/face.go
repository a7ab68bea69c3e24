package entity

type FaceBox struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// FaceAnalysis is the face engine's view of one image: bounding boxes for
// every detected face and one fixed-length embedding per face, same order.
type FaceAnalysis struct {
	Boxes     []FaceBox   `json:"boxes"`
	Encodings [][]float64 `json:"encodings"`
}

func (a *FaceAnalysis) HasFace() bool {
	return a != nil && len(a.Encodings) > 0
}

// PrimaryEncoding returns the embedding of the first detected face.
func (a *FaceAnalysis) PrimaryEncoding() []float64 {
	if !a.HasFace() {
		return nil
	}
	return a.Encodings[0]
}

type FaceComparisonResult struct {
	IsMatch           bool    `json:"is_match"`
	ConfidencePercent float64 `json:"confidence_percent"`
	Message           string  `json:"message"`
}

type FaceDetectionResult struct {
	FaceCount int       `json:"face_count"`
	Boxes     []FaceBox `json:"boxes,omitempty"`
	Error     string    `json:"error,omitempty"`
}
