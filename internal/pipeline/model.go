package pipeline

import "github.com/amoslue/what-the-food/internal/nlu"

// Phase is the position of the current run in the two-stage workflow.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseAwaitingOCR Phase = "awaiting_ocr"
	PhaseAwaitingNLU Phase = "awaiting_nlu"
	PhaseSucceeded   Phase = "succeeded"
	PhaseFailed      Phase = "failed"
)

// Stage names used to tag which remote call a failed run died in.
const (
	StageOCR = "ocr"
	StageNLU = "nlu"
)

// RunError is the single user-visible error of a failed run.
type RunError struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// GeneratedImage is the visual for one dish: a placeholder URL at
// first, upgraded in place with a base64 payload when the generation
// service delivers one.
type GeneratedImage struct {
	DishName       string `json:"dish_name"`
	PlaceholderURL string `json:"placeholder_url"`
	ImageBase64    string `json:"generated_image_base64,omitempty"`
}

// State is everything the renderer needs for one selection: the raw
// OCR text, the structured dishes, the prompts, and the image list.
// Partial results survive a failed run; raw text obtained before an
// NLU failure stays visible for debugging.
type State struct {
	RunID            string               `json:"run_id,omitempty"`
	SelectedFile     string               `json:"selected_file,omitempty"`
	Phase            Phase                `json:"phase"`
	IsLoading        bool                 `json:"is_loading"`
	RawOCRText       string               `json:"raw_ocr_text,omitempty"`
	StructuredDishes []nlu.StructuredDish `json:"structured_menu_data"`
	Prompts          []nlu.DishPrompt     `json:"processed_dishes"`
	GeneratedImages  []GeneratedImage     `json:"generated_images"`
	Error            *RunError            `json:"error,omitempty"`
}

// clone deep-copies the state so observers never alias live slices.
func (s State) clone() State {
	out := s
	out.StructuredDishes = append([]nlu.StructuredDish(nil), s.StructuredDishes...)
	out.Prompts = append([]nlu.DishPrompt(nil), s.Prompts...)
	out.GeneratedImages = append([]GeneratedImage(nil), s.GeneratedImages...)
	if s.Error != nil {
		errCopy := *s.Error
		out.Error = &errCopy
	}
	return out
}
