package domain

import "time"

// PipelineStatus is the read-only snapshot exposed to the dashboard.
type PipelineStatus struct {
	Role            CameraRole `json:"role"`
	Phase           string     `json:"phase"`
	FramesProcessed uint64     `json:"frames_processed"`
	Running         bool       `json:"running"`
}

// RecentCapture points at a plate crop saved by a pipeline.
type RecentCapture struct {
	Role       CameraRole `json:"role"`
	ImagePath  string     `json:"image_path"`
	CapturedAt time.Time  `json:"captured_at"`
}
