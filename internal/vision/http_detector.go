package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
)

// HTTPDetector calls a plate-detection inference server over HTTP. The server
// receives a JPEG frame and answers with candidate boxes in its own order;
// that order is preserved because downstream picks the first region.
type HTTPDetector struct {
	endpoint   string
	confidence float64
	client     *http.Client
}

func NewHTTPDetector(endpoint string) *HTTPDetector {
	return &HTTPDetector{
		endpoint:   endpoint,
		confidence: DefaultDetectionConfidence,
		client:     http.DefaultClient,
	}
}

type detectionResponse struct {
	Predictions []struct {
		X1         int     `json:"x1"`
		Y1         int     `json:"y1"`
		X2         int     `json:"x2"`
		Y2         int     `json:"y2"`
		Confidence float64 `json:"confidence"`
	} `json:"predictions"`
}

func (d *HTTPDetector) Detect(ctx context.Context, frame image.Image) ([]Detection, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame, nil); err != nil {
		return nil, fmt.Errorf("HTTPDetector: encoding frame: %w", err)
	}

	url := fmt.Sprintf("%s?conf=%.2f", d.endpoint, d.confidence)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, fmt.Errorf("HTTPDetector: building request: %w", err)
	}
	req.Header.Set("Content-Type", "image/jpeg")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTPDetector: calling detector: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTPDetector: detector returned status %s", resp.Status)
	}

	var parsed detectionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("HTTPDetector: decoding response: %w", err)
	}

	detections := make([]Detection, 0, len(parsed.Predictions))
	for _, p := range parsed.Predictions {
		detections = append(detections, Detection{
			Box:        image.Rect(p.X1, p.Y1, p.X2, p.Y2),
			Confidence: p.Confidence,
		})
	}
	return detections, nil
}
