package classify

import "testing"

func TestGeneralStrongTermAnywhere(t *testing.T) {
	c := New()

	if !c.Relevant(General, "", "Project Manager", "You will lead our TCFD reporting programme.", nil) {
		t.Fatal("strong term in description must be enough")
	}
	if !c.Relevant(General, "", "ESG Analyst", "", nil) {
		t.Fatal("strong term in title must be enough")
	}
}

func TestGeneralWeakTermRules(t *testing.T) {
	c := New()

	if !c.Relevant(General, "", "Climate Analyst", "Financial modelling role.", nil) {
		t.Fatal("weak term in title must be enough")
	}
	if c.Relevant(General, "", "Software Engineer", "We value a responsible and ethical workplace.", nil) {
		t.Fatal("two weak terms in the body must not be enough")
	}
	if !c.Relevant(General, "", "Software Engineer",
		"Join our climate team reducing emissions across renewable assets.", nil) {
		t.Fatal("three distinct weak terms in the body must be enough")
	}
}

func TestGeneralRejectsUnrelated(t *testing.T) {
	c := New()

	if c.Relevant(General, "", "Java Developer", "Spring Boot microservices for a retail bank.", nil) {
		t.Fatal("unrelated posting classified as relevant")
	}
}

func TestStrictTitleIgnoresWeakTier(t *testing.T) {
	c := New()

	if c.Relevant(StrictTitle, "", "Climate Analyst", "", nil) {
		t.Fatal("weak term in title must not pass the strict variant")
	}
	if !c.Relevant(StrictTitle, "", "Sustainability Manager", "", nil) {
		t.Fatal("strong term in title must pass the strict variant")
	}
}

func TestStrictTitleTagsCountAsTitle(t *testing.T) {
	c := New()

	if !c.Relevant(StrictTitle, "", "Senior Manager", "", []string{"ESG & Sustainability"}) {
		t.Fatal("strong term in tags must pass the strict variant")
	}
}

func TestStrictTitleTwoStrongTermsInBody(t *testing.T) {
	c := New()

	one := "Our clients need help with decarbonisation."
	if c.Relevant(StrictTitle, "", "Senior Consultant", one, nil) {
		t.Fatal("one strong term in the body must not be enough")
	}

	two := "Our clients need help with decarbonisation and net zero planning."
	if !c.Relevant(StrictTitle, "", "Senior Consultant", two, nil) {
		t.Fatal("two strong terms in the body must be enough")
	}
}

func TestSearchTrustedQueryPlusRoleShape(t *testing.T) {
	c := New()

	query := "sustainability consultant"

	if !c.Relevant(SearchTrusted, query, "Senior Consultant", "Short snippet.", nil) {
		t.Fatal("domain query plus role-shaped title must pass")
	}
	if c.Relevant(SearchTrusted, query, "Warehouse Operative", "Short snippet.", nil) {
		t.Fatal("non-role-shaped title must not ride on the query")
	}
	if c.Relevant(SearchTrusted, "golang developer", "Senior Consultant", "Short snippet.", nil) {
		t.Fatal("non-domain query must not loosen the rules")
	}
}

func TestSearchTrustedFallsBackToGeneral(t *testing.T) {
	c := New()

	if !c.Relevant(SearchTrusted, "anything", "Head of Sustainability", "", nil) {
		t.Fatal("general rules must still apply under the search-trusted variant")
	}
}

func TestPhraseTermsMatchAcrossWhitespace(t *testing.T) {
	c := New()

	if !c.Relevant(General, "", "Analyst", "Experience with the GHG  Protocol is required.", nil) {
		t.Fatal("multi-word terms must tolerate extra whitespace")
	}
}
