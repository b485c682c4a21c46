package menu

import (
	"github.com/amoslue/what-the-food/internal/nlu"
	"github.com/amoslue/what-the-food/internal/pipeline"
)

// DishView is one render-ready dish card: structured data, its prompt,
// and its image. When no generated payload exists the client shows the
// placeholder or a "not available" fallback, never a broken reference.
type DishView struct {
	Name                 string `json:"name"`
	Description          string `json:"description"`
	ImagePrompt          string `json:"image_prompt,omitempty"`
	PlaceholderURL       string `json:"placeholder_url,omitempty"`
	GeneratedImageBase64 string `json:"generated_image_base64,omitempty"`
	ImageAvailable       bool   `json:"image_available"`
}

// StatusResponse is the full rendering contract served to the browser.
type StatusResponse struct {
	RunID              string               `json:"run_id,omitempty"`
	SelectedFile       string               `json:"selected_file,omitempty"`
	Phase              pipeline.Phase       `json:"phase"`
	IsLoading          bool                 `json:"is_loading"`
	Error              *pipeline.RunError   `json:"error,omitempty"`
	RawOCRText         string               `json:"raw_ocr_text,omitempty"`
	StructuredMenuData []nlu.StructuredDish `json:"structured_menu_data"`
	ProcessedDishes    []nlu.DishPrompt     `json:"processed_dishes"`
	Dishes             []DishView           `json:"dishes"`
}

// NewStatusResponse assembles the view from a pipeline snapshot.
// Prompts and images are paired with dishes by index; the upstream
// services emit them in matching order and nothing here reconciles
// them by dish identity.
func NewStatusResponse(st pipeline.State) StatusResponse {
	resp := StatusResponse{
		RunID:              st.RunID,
		SelectedFile:       st.SelectedFile,
		Phase:              st.Phase,
		IsLoading:          st.IsLoading,
		Error:              st.Error,
		RawOCRText:         st.RawOCRText,
		StructuredMenuData: st.StructuredDishes,
		ProcessedDishes:    st.Prompts,
		Dishes:             make([]DishView, 0, len(st.StructuredDishes)),
	}

	// Empty arrays, not nulls, so the client can map over them.
	if resp.StructuredMenuData == nil {
		resp.StructuredMenuData = []nlu.StructuredDish{}
	}
	if resp.ProcessedDishes == nil {
		resp.ProcessedDishes = []nlu.DishPrompt{}
	}

	for i, dish := range st.StructuredDishes {
		view := DishView{
			Name:        dish.Name,
			Description: dish.Description,
		}
		if i < len(st.Prompts) {
			view.ImagePrompt = st.Prompts[i].ImagePrompt
		}
		if i < len(st.GeneratedImages) {
			view.PlaceholderURL = st.GeneratedImages[i].PlaceholderURL
			view.GeneratedImageBase64 = st.GeneratedImages[i].ImageBase64
			view.ImageAvailable = view.GeneratedImageBase64 != ""
		}
		resp.Dishes = append(resp.Dishes, view)
	}

	return resp
}
