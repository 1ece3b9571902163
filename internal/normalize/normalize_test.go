package normalize

import "testing"

func TestNameStripsLegalSuffixes(t *testing.T) {
	cases := map[string]string{
		"Acme Sustainability Ltd":       "acme sustainability",
		"Acme Sustainability Limited":   "acme sustainability",
		"\"Green Futures\" LLP":         "green futures",
		"Carbon Insight Group Holdings": "carbon insight",
		"ERM Group":                     "erm",
	}

	for in, want := range cases {
		if got := Name(in); got != want {
			t.Fatalf("Name(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNameKeepsAmpersandAndDigits(t *testing.T) {
	if got := Name("Ernst & Young"); got != "ernst & young" {
		t.Fatalf("ampersand lost: %q", got)
	}
	if got := Name("Agency 360 Ltd"); got != "agency 360" {
		t.Fatalf("digits lost: %q", got)
	}
}

func TestNameIsIdempotent(t *testing.T) {
	inputs := []string{
		"PricewaterhouseCoopers LLP",
		"  Environmental   Resources Management  Ltd ",
		"B Corp Collective",
		"",
	}

	for _, in := range inputs {
		once := Name(in)
		if twice := Name(once); twice != once {
			t.Fatalf("Name not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestNameNeverPanicsOnNoise(t *testing.T) {
	for _, in := range []string{"", "   ", "???", "££££", "株式会社"} {
		_ = Name(in)
	}
}

func TestStripHTML(t *testing.T) {
	in := "<p>We are hiring a <strong>Sustainability Consultant</strong></p><br>Apply&nbsp;now &amp; join us."
	got := StripHTML(in)
	want := "We are hiring a Sustainability Consultant Apply now & join us."
	if got != want {
		t.Fatalf("StripHTML = %q, want %q", got, want)
	}
}
