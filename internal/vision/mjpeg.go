package vision

import (
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"log"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
)

// MJPEGSource reads frames from an HTTP camera serving an MJPEG stream
// (multipart/x-mixed-replace). IP camera apps expose the stream under a
// handful of well-known paths, so the base URL is probed with each of them.
type MJPEGSource struct {
	url    string
	body   io.ReadCloser
	reader *multipart.Reader
}

func candidateURLs(rawURL string) []string {
	return []string{
		rawURL,
		rawURL + "/video",
		rawURL + "/videofeed",
		rawURL + "/mjpg/video.mjpg",
	}
}

// OpenMJPEG connects to the camera, trying the candidate stream paths in
// order. It fails only when none of them serves a multipart stream.
func OpenMJPEG(rawURL string) (*MJPEGSource, error) {
	var lastErr error
	for _, url := range candidateURLs(rawURL) {
		log.Printf("MJPEGSource: trying to connect to %s", url)
		source, err := openStream(url)
		if err != nil {
			lastErr = err
			continue
		}
		log.Printf("MJPEGSource: connected to %s", url)
		return source, nil
	}
	return nil, fmt.Errorf("connecting to camera %s: %w", rawURL, lastErr)
}

func openStream(url string) (*MJPEGSource, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	mediaType, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") || params["boundary"] == "" {
		resp.Body.Close()
		return nil, fmt.Errorf("not an MJPEG stream (content type %q)", resp.Header.Get("Content-Type"))
	}

	return &MJPEGSource{
		url:    url,
		body:   resp.Body,
		reader: multipart.NewReader(resp.Body, params["boundary"]),
	}, nil
}

// NextFrame blocks until the camera pushes the next part and decodes it.
// io.EOF means the stream ended; the owning pipeline treats that as fatal.
func (s *MJPEGSource) NextFrame() (image.Image, error) {
	part, err := s.reader.NextPart()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("reading stream part: %w", err)
	}
	defer part.Close()

	frame, err := jpeg.Decode(part)
	if err != nil {
		return nil, fmt.Errorf("decoding frame: %w", err)
	}
	return frame, nil
}

func (s *MJPEGSource) Close() error {
	return s.body.Close()
}
