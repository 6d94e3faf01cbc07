package scoring

import "testing"

func TestMatchIdenticalAfterNormalization(t *testing.T) {
	pairs := [][2]string{
		{"Images have alt text", "Images have alt text"},
		{"Images  have   alt text", "images have alt text!"},
		{"Does the page have a title?", "does the page have a title"},
	}
	for _, p := range pairs {
		if !Match(p[0], p[1], DefaultMatchThreshold) {
			t.Errorf("Match(%q, %q) = false, want true", p[0], p[1])
		}
	}
}

func TestMatchToleratesScatteredPunctuation(t *testing.T) {
	if !Match("Images need alt-text!", "Images need alt text", DefaultMatchThreshold) {
		t.Error("punctuation-only difference should match")
	}
	if !Match("Form fields have visible, descriptive labels", "Form fields have visible descriptive labels.", DefaultMatchThreshold) {
		t.Error("comma/period difference should match")
	}
}

func TestMatchToleratesGarbledWord(t *testing.T) {
	// One corrupted word out of five significant tokens still clears 0.7.
	a := "Video content provides synchronized captions"
	b := "Video content provides synchronizzed captions"
	if !Match(a, b, DefaultMatchThreshold) {
		t.Errorf("Match(%q, %q) = false, want true", a, b)
	}
}

func TestMatchRejectsDisjointStrings(t *testing.T) {
	if Match("Images have alt text", "Keyboard focus is visible", DefaultMatchThreshold) {
		t.Error("strings sharing no significant words must not match")
	}
	if Match("", "Images have alt text", DefaultMatchThreshold) {
		t.Error("empty string must not match")
	}
	if Match("", "", DefaultMatchThreshold) {
		t.Error("two empty strings must not match")
	}
}

func TestMatchThresholdBoundary(t *testing.T) {
	// 2 of 3 overlapping tokens: 0.666 does not exceed 0.7.
	if Match("alpha beta gamma", "alpha beta delta", DefaultMatchThreshold) {
		t.Error("2/3 overlap should not exceed 0.7")
	}
	// 3 of 4: 0.75 exceeds 0.7.
	if !Match("alpha beta gamma delta", "alpha beta gamma omega", DefaultMatchThreshold) {
		t.Error("3/4 overlap should exceed 0.7")
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  Hello,   World!  ", "hello world"},
		{"alt-text", "alt text"},
		{"WCAG 2.1 (AA)", "wcag 2 1 aa"},
	}
	for _, tt := range tests {
		if got := normalizeText(tt.in); got != tt.want {
			t.Errorf("normalizeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
