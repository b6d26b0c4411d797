package models

import (
	"time"

	"github.com/google/uuid"
)

// Subject groups videos and quizzes.
type Subject struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Video is a lesson attached to a subject.
type Video struct {
	ID         uuid.UUID `json:"id"`
	SubjectID  uuid.UUID `json:"subject_id"`
	Title      string    `json:"title"`
	YoutubeURL string    `json:"youtube_url,omitempty"`
	VideoPath  string    `json:"video_path,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// SubjectDetails is a subject with its content.
type SubjectDetails struct {
	Subject
	Videos  []Video `json:"videos"`
	Quizzes []Quiz  `json:"quizzes"`
}
