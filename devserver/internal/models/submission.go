package models

import (
	"encoding/json"
	"time"

	"github.com/landingsite-ai/aifeatures-go/go/aifeatures"
	"gorm.io/datatypes"
)

// Submission is a stored visitor submission. Data keeps the field order of
// the original request.
type Submission struct {
	ID          string         `gorm:"primaryKey"`
	FormID      string         `gorm:"index"`
	Data        datatypes.JSON `gorm:"type:json"`
	Attachments datatypes.JSON
	IPAddress   *string
	UserAgent   *string
	IsRead      bool
	IsSpam      bool
	SubmittedAt time.Time `gorm:"index"`
}

// SubmissionResponse is the API representation. Data is passed through raw so
// key order survives.
type SubmissionResponse struct {
	ID          string                        `json:"id"`
	Data        json.RawMessage               `json:"data"`
	Attachments []aifeatures.Attachment       `json:"attachments"`
	Metadata    aifeatures.SubmissionMetadata `json:"metadata"`
	IsRead      bool                          `json:"is_read"`
	IsSpam      bool                          `json:"is_spam"`
}

// AttachmentList decodes the attachments column.
func (s *Submission) AttachmentList() []aifeatures.Attachment {
	out := []aifeatures.Attachment{}
	if len(s.Attachments) > 0 {
		_ = json.Unmarshal(s.Attachments, &out)
	}
	return out
}

// SetAttachments encodes the attachments column.
func (s *Submission) SetAttachments(list []aifeatures.Attachment) {
	if list == nil {
		list = []aifeatures.Attachment{}
	}
	data, _ := json.Marshal(list)
	s.Attachments = datatypes.JSON(data)
}

// ToAPI renders the submission as the API returns it.
func (s *Submission) ToAPI() SubmissionResponse {
	data := json.RawMessage(s.Data)
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}
	return SubmissionResponse{
		ID:          s.ID,
		Data:        data,
		Attachments: s.AttachmentList(),
		Metadata: aifeatures.SubmissionMetadata{
			IPAddress:   s.IPAddress,
			UserAgent:   s.UserAgent,
			SubmittedAt: s.SubmittedAt.UTC(),
		},
		IsRead: s.IsRead,
		IsSpam: s.IsSpam,
	}
}
