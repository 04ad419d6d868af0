package vision

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

// RekognitionRecognizer implements TextRecognizer on AWS Rekognition DetectText.
type RekognitionRecognizer struct {
	client *rekognition.Client
}

func NewRekognitionRecognizer(client *rekognition.Client) *RekognitionRecognizer {
	return &RekognitionRecognizer{client: client}
}

func (r *RekognitionRecognizer) Read(ctx context.Context, region image.Image) ([]Candidate, error) {
	if r.client == nil {
		return nil, fmt.Errorf("RekognitionRecognizer: client not initialized")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, region); err != nil {
		return nil, fmt.Errorf("RekognitionRecognizer: encoding region: %w", err)
	}

	result, err := r.client.DetectText(ctx, &rekognition.DetectTextInput{
		Image: &types.Image{Bytes: buf.Bytes()},
	})
	if err != nil {
		return nil, fmt.Errorf("RekognitionRecognizer: DetectText: %w", err)
	}

	var candidates []Candidate
	for _, detection := range result.TextDetections {
		// Lines only: word detections duplicate the text of their parent line
		// and would be concatenated twice by the resolver.
		if detection.Type != types.TextTypesLine {
			continue
		}
		if detection.DetectedText == nil || detection.Confidence == nil {
			continue
		}
		candidates = append(candidates, Candidate{
			Text:       *detection.DetectedText,
			Confidence: float64(*detection.Confidence) / 100.0, // Rekognition reports 0-100
		})
	}
	log.Printf("RekognitionRecognizer: %d line(s) of text detected", len(candidates))
	return candidates, nil
}
