package registry

import "testing"

func sponsorSnapshot(names ...string) *Snapshot {
	snap := NewSnapshot(KindSponsor)
	for _, n := range names {
		snap.Add(n, Record{Name: n, Rating: "A", Route: "Skilled Worker"})
	}
	return snap
}

func TestMatchExact(t *testing.T) {
	snap := sponsorSnapshot("Acme Sustainability Ltd")

	m := snap.Match("Acme Sustainability Limited")
	if !m.Matched {
		t.Fatal("expected a match after suffix normalization")
	}
	if m.Fuzzy {
		t.Fatal("suffix-normalized lookup must count as exact")
	}
	if m.Record.Rating != "A" {
		t.Fatalf("wrong record: %+v", m.Record)
	}
}

func TestMatchFuzzyContainment(t *testing.T) {
	snap := sponsorSnapshot("Environmental Resources Management Ltd")

	m := snap.Match("Environmental Resources Management Consulting")
	if !m.Matched || !m.Fuzzy {
		t.Fatalf("expected fuzzy match, got %+v", m)
	}
}

func TestMatchFuzzyLengthRatio(t *testing.T) {
	snap := sponsorSnapshot("International Sustainability and Carbon Certification Organisation")

	// Far too short relative to the registry entry for the sponsor ratio.
	if m := snap.Match("Carbon"); m.Matched {
		t.Fatalf("short name matched long entry: %+v", m)
	}
}

func TestMatchFirstFuzzyCandidateWins(t *testing.T) {
	snap := sponsorSnapshot(
		"Green Energy Partners",
		"Green Energy Partners International",
	)

	m := snap.Match("The Green Energy Partners")
	if !m.Matched || !m.Fuzzy {
		t.Fatalf("expected fuzzy match, got %+v", m)
	}
	if m.Record.Name != "Green Energy Partners" {
		t.Fatalf("expected the first inserted candidate, got %q", m.Record.Name)
	}
}

func TestMatchRejectsPlaceholders(t *testing.T) {
	snap := sponsorSnapshot("Unknown Industries", "Confidential Consulting Ltd")

	for _, name := range []string{"Unknown", "Confidential", "Not Disclosed", "TBC"} {
		if m := snap.Match(name); m.Matched {
			t.Fatalf("placeholder %q matched: %+v", name, m)
		}
	}
}

func TestMatchRejectsShortNames(t *testing.T) {
	snap := sponsorSnapshot("AB Consulting")

	if m := snap.Match("AB"); m.Matched {
		t.Fatalf("two-character name matched: %+v", m)
	}
}

func TestMatchAliases(t *testing.T) {
	snap := sponsorSnapshot("PricewaterhouseCoopers LLP")

	m := snap.Match("PwC")
	if !m.Matched {
		t.Fatal("expected the alias to resolve to the register entry")
	}
}

func TestBCorpRatioStricter(t *testing.T) {
	name := "Sustainable Futures Collective Co"

	sponsor := NewSnapshot(KindSponsor)
	sponsor.Add(name, Record{Name: name})
	bcorp := NewSnapshot(KindBCorp)
	bcorp.Add(name, Record{Name: name})

	// len("sustainable futures")/len(normalized entry) sits between the two
	// ratio thresholds.
	probe := "Sustainable Futures"

	if m := sponsor.Match(probe); !m.Matched {
		t.Fatal("sponsor ratio should accept the probe")
	}
	if m := bcorp.Match(probe); m.Matched {
		t.Fatal("bcorp ratio should reject the probe")
	}
}

func TestAddFirstRecordWins(t *testing.T) {
	snap := NewSnapshot(KindSponsor)
	snap.Add("Acme Ltd", Record{Name: "Acme Ltd", Rating: "A"})
	snap.Add("Acme Limited", Record{Name: "Acme Limited", Rating: "B"})

	if snap.Len() != 1 {
		t.Fatalf("expected 1 distinct organization, got %d", snap.Len())
	}

	m := snap.Match("Acme")
	if !m.Matched || m.Record.Rating != "A" {
		t.Fatalf("expected the first record to win, got %+v", m.Record)
	}
}
