package imagegen

import (
	"strings"
	"testing"
)

func TestEnhancePrompt_AlwaysCarriesLineArtAttributes(t *testing.T) {
	groups := []AgeGroup{AgeToddler, AgePreschool, AgeSchool, AgeTeen, AgeAdult, ""}

	for _, group := range groups {
		got := enhancePrompt("a friendly dragon", group, "")

		if !strings.Contains(got, "a friendly dragon") {
			t.Errorf("%q prompt lost the subject: %s", group, got)
		}

		if !strings.Contains(got, "no shading, no color") {
			t.Errorf("%q prompt lost the line-art attributes: %s", group, got)
		}

		if !strings.Contains(got, "coloring book style") {
			t.Errorf("%q prompt lost the quality details: %s", group, got)
		}
	}
}

func TestEnhancePrompt_AgeGroupsDiffer(t *testing.T) {
	toddler := enhancePrompt("a castle", AgeToddler, "")
	adult := enhancePrompt("a castle", AgeAdult, "")

	if toddler == adult {
		t.Error("expected age groups to produce different prompts")
	}

	if !strings.Contains(toddler, "thick outlines") {
		t.Errorf("toddler prompt missing simplification cues: %s", toddler)
	}

	if !strings.Contains(adult, "intricate patterns") {
		t.Errorf("adult prompt missing detail cues: %s", adult)
	}
}

func TestEnhancePrompt_FluxModelSuffix(t *testing.T) {
	got := enhancePrompt("a castle", AgeSchool, "runware:flux-dev@1")

	if !strings.HasSuffix(got, "professional line art illustration style") {
		t.Errorf("expected flux suffix, got: %s", got)
	}
}

func TestNewTaskUUID_Format(t *testing.T) {
	id, err := newTaskUUID()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	parts := strings.Split(id, "-")
	if len(parts) != 5 {
		t.Fatalf("id %s is not UUID-shaped", id)
	}

	if len(id) != 36 {
		t.Errorf("id length = %d, want 36", len(id))
	}

	other, err := newTaskUUID()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if id == other {
		t.Error("expected unique ids")
	}
}
