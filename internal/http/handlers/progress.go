package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/auviostream/auviostream/internal/models"
	"github.com/auviostream/auviostream/internal/progress"
)

// ProgressHandler handles watch progress endpoints.
type ProgressHandler struct {
	tracker *progress.Tracker
}

// NewProgressHandler creates a new progress handler.
func NewProgressHandler(tracker *progress.Tracker) *ProgressHandler {
	return &ProgressHandler{tracker: tracker}
}

// Register registers the progress routes with the API.
func (h *ProgressHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "listProgress",
		Method:      "GET",
		Path:        "/api/v1/progress",
		Summary:     "List watch progress",
		Description: "Returns the continue-watching list, most recent first",
		Tags:        []string{"Progress"},
	}, h.List)

	huma.Register(api, huma.Operation{
		OperationID: "recordProgress",
		Method:      "PUT",
		Path:        "/api/v1/progress/{contentID}",
		Summary:     "Record watch progress",
		Tags:        []string{"Progress"},
	}, h.Record)

	huma.Register(api, huma.Operation{
		OperationID: "deleteProgress",
		Method:      "DELETE",
		Path:        "/api/v1/progress/{contentID}",
		Summary:     "Remove a progress entry",
		Tags:        []string{"Progress"},
	}, h.Delete)

	huma.Register(api, huma.Operation{
		OperationID: "getResumeOffset",
		Method:      "GET",
		Path:        "/api/v1/progress/{contentID}/resume",
		Summary:     "Get the resume offset for a content item",
		Tags:        []string{"Progress"},
	}, h.Resume)
}

// ListProgressOutput is the output for listing progress.
type ListProgressOutput struct {
	Body struct {
		Entries []models.WatchProgressEntry `json:"entries"`
	}
}

// List returns every progress entry.
func (h *ProgressHandler) List(ctx context.Context, _ *struct{}) (*ListProgressOutput, error) {
	entries, err := h.tracker.List(ctx)
	if err != nil {
		return nil, apiError(err)
	}
	out := &ListProgressOutput{}
	out.Body.Entries = entries
	return out, nil
}

// RecordProgressInput is the input for recording progress.
type RecordProgressInput struct {
	ContentID string `path:"contentID" doc:"Content identifier"`
	Body      struct {
		PlatformSlug string             `json:"platform_slug" minLength:"1"`
		Fraction     float64            `json:"fraction" minimum:"0" maximum:"1"`
		Item         models.ContentItem `json:"item"`
	}
}

// RecordProgressOutput is the output for recording progress.
type RecordProgressOutput struct {
	Body struct {
		Success bool `json:"success"`
	}
}

// Record persists a progress update.
func (h *ProgressHandler) Record(ctx context.Context, input *RecordProgressInput) (*RecordProgressOutput, error) {
	err := h.tracker.Record(ctx, input.ContentID, input.Body.PlatformSlug, input.Body.Fraction, input.Body.Item)
	if err != nil {
		return nil, apiError(err)
	}
	out := &RecordProgressOutput{}
	out.Body.Success = true
	return out, nil
}

// DeleteProgressInput is the input for removing a progress entry.
type DeleteProgressInput struct {
	ContentID string `path:"contentID" doc:"Content identifier"`
}

// DeleteProgressOutput is the output for removing a progress entry.
type DeleteProgressOutput struct {
	Body struct {
		Success bool `json:"success"`
	}
}

// Delete removes one progress entry.
func (h *ProgressHandler) Delete(ctx context.Context, input *DeleteProgressInput) (*DeleteProgressOutput, error) {
	if err := h.tracker.Remove(ctx, input.ContentID); err != nil {
		return nil, apiError(err)
	}
	out := &DeleteProgressOutput{}
	out.Body.Success = true
	return out, nil
}

// ResumeInput is the input for the resume offset endpoint.
type ResumeInput struct {
	ContentID string `path:"contentID" doc:"Content identifier"`
}

// ResumeOutput is the output for the resume offset endpoint.
type ResumeOutput struct {
	Body struct {
		Resumable     bool `json:"resumable"`
		OffsetSeconds int  `json:"offset_seconds"`
	}
}

// Resume returns where playback of the item should pick up.
func (h *ProgressHandler) Resume(ctx context.Context, input *ResumeInput) (*ResumeOutput, error) {
	offset, ok, err := h.tracker.ResumeOffsetSeconds(ctx, input.ContentID)
	if err != nil {
		return nil, apiError(err)
	}
	out := &ResumeOutput{}
	out.Body.Resumable = ok
	out.Body.OffsetSeconds = offset
	return out, nil
}
