package grounding

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const (
	placesPrompt = "Quais são as melhores bibliotecas, salas de estudo ou cursinhos preparatórios perto de mim?"

	defaultPlaceTitle = "Local de Estudo"
	defaultPlaceURI   = "#"
)

// Place is a study location suggested by Maps grounding.
type Place struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// PlacesResult is the model's answer plus the places it cited.
type PlacesResult struct {
	Text   string  `json:"text"`
	Places []Place `json:"places"`
}

// Places suggests libraries, study rooms and prep courses near the given
// coordinates.
func (c *Client) Places(ctx context.Context, lat, lng float64) (*PlacesResult, error) {
	if lat < -90 || lat > 90 {
		return nil, fmt.Errorf("places: latitude %v out of range [-90, 90]", lat)
	}
	if lng < -180 || lng > 180 {
		return nil, fmt.Errorf("places: longitude %v out of range [-180, 180]", lng)
	}

	resp, err := c.generate(ctx, "places", c.cfg.PlacesModel,
		[]*genai.Content{genai.NewContentFromText(placesPrompt, genai.RoleUser)},
		&genai.GenerateContentConfig{
			Tools: []*genai.Tool{{GoogleMaps: &genai.GoogleMaps{}}},
			ToolConfig: &genai.ToolConfig{
				RetrievalConfig: &genai.RetrievalConfig{
					LatLng: &genai.LatLng{
						Latitude:  genai.Ptr(lat),
						Longitude: genai.Ptr(lng),
					},
				},
			},
		},
	)
	if err != nil {
		return nil, err
	}

	result := &PlacesResult{Text: responseText(resp), Places: []Place{}}
	for _, chunk := range groundingChunks(resp) {
		p := Place{Title: defaultPlaceTitle, URI: defaultPlaceURI}
		if chunk != nil && chunk.Maps != nil {
			if chunk.Maps.Title != "" {
				p.Title = chunk.Maps.Title
			}
			if chunk.Maps.URI != "" {
				p.URI = chunk.Maps.URI
			}
		}
		result.Places = append(result.Places, p)
	}
	return result, nil
}
