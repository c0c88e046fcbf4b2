package dto

import "mime/multipart"

// PressReleaseSubmission is the parsed multipart body of POST /press-releases.
type PressReleaseSubmission struct {
	BookingID        string `validate:"required"`
	CoordinatorName  string `validate:"required"`
	EnglishWriteup   *multipart.FileHeader
	TamilWriteup     *multipart.FileHeader
	PhotoDescription *multipart.FileHeader
	Photos           []*multipart.FileHeader
}

// PressReleaseStatusRequest is an admin review decision.
type PressReleaseStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected"`
}
