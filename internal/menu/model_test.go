package menu

import (
	"testing"

	"github.com/amoslue/what-the-food/internal/nlu"
	"github.com/amoslue/what-the-food/internal/pipeline"
)

func TestNewStatusResponse_PairsByIndex(t *testing.T) {
	st := pipeline.State{
		Phase: pipeline.PhaseSucceeded,
		StructuredDishes: []nlu.StructuredDish{
			{Name: "Pasta", Description: "with basil"},
			{Name: "Pizza", Description: ""},
		},
		Prompts: []nlu.DishPrompt{
			{DishName: "Pasta", ImagePrompt: "a plate of pasta"},
			{DishName: "Pizza", ImagePrompt: "a pizza"},
		},
		GeneratedImages: []pipeline.GeneratedImage{
			{DishName: "Pasta", PlaceholderURL: "https://placehold.co/512x512?text=Pasta", ImageBase64: "aW1hZ2U="},
			{DishName: "Pizza", PlaceholderURL: "https://placehold.co/512x512?text=Pizza"},
		},
	}

	resp := NewStatusResponse(st)

	if len(resp.Dishes) != 2 {
		t.Fatalf("expected 2 dish views, got %d", len(resp.Dishes))
	}

	pasta := resp.Dishes[0]
	if pasta.Name != "Pasta" || pasta.ImagePrompt != "a plate of pasta" {
		t.Fatalf("index pairing broken: %+v", pasta)
	}
	if !pasta.ImageAvailable || pasta.GeneratedImageBase64 != "aW1hZ2U=" {
		t.Fatalf("expected generated payload on pasta: %+v", pasta)
	}

	pizza := resp.Dishes[1]
	if pizza.ImageAvailable || pizza.GeneratedImageBase64 != "" {
		t.Fatalf("pizza must fall back to placeholder: %+v", pizza)
	}
	if pizza.PlaceholderURL == "" {
		t.Fatal("pizza lost its placeholder")
	}
}

func TestNewStatusResponse_MorePromptsThanDishes(t *testing.T) {
	st := pipeline.State{
		StructuredDishes: []nlu.StructuredDish{{Name: "Dal"}},
		Prompts: []nlu.DishPrompt{
			{DishName: "Dal", ImagePrompt: "a bowl of dal"},
			{DishName: "Ghost", ImagePrompt: "never rendered"},
		},
	}

	resp := NewStatusResponse(st)

	if len(resp.Dishes) != 1 {
		t.Fatalf("dish views follow the dish list, got %d", len(resp.Dishes))
	}
	// The surplus prompt still ships in the raw prompt list.
	if len(resp.ProcessedDishes) != 2 {
		t.Fatalf("prompt list must pass through untouched, got %d", len(resp.ProcessedDishes))
	}
}

func TestNewStatusResponse_EmptyStateHasArraysNotNulls(t *testing.T) {
	resp := NewStatusResponse(pipeline.State{Phase: pipeline.PhaseIdle})

	if resp.StructuredMenuData == nil || resp.ProcessedDishes == nil || resp.Dishes == nil {
		t.Fatalf("expected empty arrays, got %+v", resp)
	}
}
