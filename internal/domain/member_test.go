package domain

import (
	"encoding/json"
	"testing"
)

func TestRate_MarshalJSON(t *testing.T) {
	hourly, err := json.Marshal(HourlyRate(62.5))
	if err != nil {
		t.Fatalf("marshal hourly: %v", err)
	}
	if string(hourly) != "62.5" {
		t.Errorf("hourly rate = %s, want 62.5", hourly)
	}

	fixed, err := json.Marshal(FixedRate())
	if err != nil {
		t.Fatalf("marshal fixed: %v", err)
	}
	if string(fixed) != `"fixed"` {
		t.Errorf(`fixed rate = %s, want "fixed"`, fixed)
	}
}

func TestRate_UnmarshalJSON(t *testing.T) {
	var rate Rate
	if err := json.Unmarshal([]byte(`"fixed"`), &rate); err != nil {
		t.Fatalf("unmarshal fixed: %v", err)
	}
	if !rate.Fixed {
		t.Error("rate should be fixed")
	}

	if err := json.Unmarshal([]byte(`75`), &rate); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if rate.Fixed || rate.Hourly != 75 {
		t.Errorf("rate = %+v, want hourly 75", rate)
	}
}

func TestFixedRateFor_ExactMatch(t *testing.T) {
	comp := &CompensationStructure{
		Type:       CompensationFixed,
		FixedRates: map[ContentType]float64{ContentTypeBlog: 100, ContentTypeTutorial: 150},
	}

	rate, exact := comp.FixedRateFor(ContentTypeBlog)
	if !exact {
		t.Error("blog rate should be an exact match")
	}
	if rate != 100 {
		t.Errorf("rate = %v, want 100", rate)
	}
}

func TestFixedRateFor_FallsBackInDeclarationOrder(t *testing.T) {
	comp := &CompensationStructure{
		Type:       CompensationFixed,
		FixedRates: map[ContentType]float64{ContentTypeNewsletter: 40, ContentTypeCaseStudy: 200},
	}

	rate, exact := comp.FixedRateFor(ContentTypeSocialMedia)
	if exact {
		t.Error("social media rate should not be an exact match")
	}
	if rate != 40 {
		t.Errorf("rate = %v, want 40 (newsletter precedes case_study)", rate)
	}
}

func TestFixedRateFor_NoRatesConfigured(t *testing.T) {
	comp := &CompensationStructure{Type: CompensationFixed}

	rate, exact := comp.FixedRateFor(ContentTypeBlog)
	if exact || rate != 0 {
		t.Errorf("rate = %v exact = %v, want 0 and false", rate, exact)
	}
}

func TestIsHourly(t *testing.T) {
	var nilComp *CompensationStructure
	if nilComp.IsHourly() {
		t.Error("nil compensation should not be hourly")
	}
	if !(&CompensationStructure{Type: CompensationHourly}).IsHourly() {
		t.Error("hourly compensation should report hourly")
	}
	if (&CompensationStructure{Type: CompensationFixed}).IsHourly() {
		t.Error("fixed compensation should not report hourly")
	}
}
