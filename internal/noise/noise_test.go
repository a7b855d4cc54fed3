package noise

import "testing"

func TestOCRProfile(t *testing.T) {
	p := OCR()

	noisy := []string{
		"June 14",
		"14/06",
		"14-16",
		"14th June",
		"June 14-16",
		"Friday 21",
		"2025",
		"VIP",
		"Main Stage 2",
		"Stage 3",
		"Buy Tickets",
		"SOLD OUT",
		"tickets.festivalsite.com",
		"#festival2025",
		"Doors open: 2pm",
		"one, two, three",
		"See you next year!",
		"x",
		"",
		"12345 67",
		"the quick brown fox jumps over everything",
		"---",
	}
	for _, s := range noisy {
		if !p.IsNoise(s) {
			t.Errorf("IsNoise(%q) = false, want true", s)
		}
	}

	clean := []string{
		"Bicep",
		"Four Tet",
		"Daft Punk",
		"The War on Drugs",
		"070 Shake",
		"MF DOOM",
	}
	for _, s := range clean {
		if rule, ok := p.Explain(s); ok {
			t.Errorf("IsNoise(%q) = true (rule %s), want false", s, rule)
		}
	}
}

func TestWebProfile(t *testing.T) {
	p := Web()

	noisy := []string{
		"June 14",
		"VIP",
		"Main Stage 2",
		"Privacy",
		"Contact",
		"Home",
		"Sign Up",
		"Learn More",
		"Saturday",
		"2024",
		"10:30",
	}
	for _, s := range noisy {
		if !p.IsNoise(s) {
			t.Errorf("IsNoise(%q) = false, want true", s)
		}
	}

	// Dots mid-name carry no signal on structured pages.
	clean := []string{
		"Fred again..",
		"Jamie xx",
		"Sigur Rós",
		"CHVRCHES",
	}
	for _, s := range clean {
		if rule, ok := p.Explain(s); ok {
			t.Errorf("IsNoise(%q) = true (rule %s), want false", s, rule)
		}
	}
}

func TestExplainNamesFirstMatchingRule(t *testing.T) {
	p := OCR()
	rule, ok := p.Explain("June 14")
	if !ok || rule != "date" {
		t.Errorf("Explain(June 14) = %q, %v; want date, true", rule, ok)
	}
	rule, ok = p.Explain("Set times: 4pm")
	if !ok || rule != "colon" {
		t.Errorf("Explain = %q, %v; want colon, true", rule, ok)
	}
}

func TestRulesAreIndividuallyAddressable(t *testing.T) {
	for _, r := range OCR().Rules() {
		if r.Name == "" || r.Match == nil {
			t.Fatalf("rule missing name or matcher: %+v", r)
		}
	}
}
