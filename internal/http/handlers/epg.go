package handlers

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/auviostream/auviostream/internal/epg"
	"github.com/auviostream/auviostream/internal/models"
)

// EPGHandler handles the TV guide endpoint.
type EPGHandler struct {
	guide *epg.Service
}

// NewEPGHandler creates a new EPG handler.
func NewEPGHandler(guide *epg.Service) *EPGHandler {
	return &EPGHandler{guide: guide}
}

// Register registers the EPG route with the API.
func (h *EPGHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "getGuide",
		Method:      "GET",
		Path:        "/api/v1/epg",
		Summary:     "Get the TV guide",
		Description: "Returns one day of schedule for every guide channel",
		Tags:        []string{"EPG"},
	}, h.Guide)
}

// GuideInput is the input for the guide endpoint.
type GuideInput struct {
	Date string `query:"date" doc:"Day to fetch as YYYY-MM-DD; defaults to today" pattern:"^\\d{4}-\\d{2}-\\d{2}$"`
}

// GuideOutput is the output for the guide endpoint.
type GuideOutput struct {
	Body struct {
		Date     string                `json:"date"`
		Channels []models.GuideChannel `json:"channels"`
	}
}

// Guide returns the schedule for the requested day.
func (h *EPGHandler) Guide(ctx context.Context, input *GuideInput) (*GuideOutput, error) {
	day := time.Now()
	if input.Date != "" {
		parsed, err := time.Parse("2006-01-02", input.Date)
		if err != nil {
			return nil, huma.Error422UnprocessableEntity("Date invalide, format attendu: AAAA-MM-JJ")
		}
		day = parsed
	}

	channels, err := h.guide.Guide(ctx, day)
	if err != nil {
		return nil, apiError(err)
	}

	out := &GuideOutput{}
	out.Body.Date = day.Format("2006-01-02")
	out.Body.Channels = channels
	return out, nil
}
