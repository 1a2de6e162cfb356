package domain

import "time"

// Proof is an uploaded photo proof of delivery.
type Proof struct {
	ID          string    `json:"id"`
	ContentType string    `json:"contentType"`
	Size        int       `json:"size"`
	URL         string    `json:"url"`
	UploadedAt  time.Time `json:"uploadedAt"`
	Data        []byte    `json:"-"`
}
