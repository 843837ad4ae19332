package validation

import (
	"testing"

	"bandprep/internal/models"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"valid", "user@example.com", false},
		{"valid with plus", "user+tag@example.co.uk", false},
		{"empty", "", true},
		{"missing domain", "user@", true},
		{"missing at", "userexample.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("longenough"); err != nil {
		t.Errorf("ValidatePassword() error = %v for valid password", err)
	}
	if err := ValidatePassword("short"); err == nil {
		t.Error("ValidatePassword() accepted a short password")
	}
	if err := ValidatePassword(""); err == nil {
		t.Error("ValidatePassword() accepted an empty password")
	}
}

func validSet() *models.PracticeSet {
	return &models.PracticeSet{
		ID:    "set-1",
		Title: "Test",
		Sections: []models.Section{
			{
				ID:   "sec-1",
				Type: "reading",
				Parts: []models.Part{
					{
						ID: "p-1",
						Questions: []models.Question{
							{ID: "q-1", Text: "Why?", Weight: 1},
						},
					},
				},
			},
		},
	}
}

func TestValidatePracticeSet(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.PracticeSet)
		wantErr bool
	}{
		{"valid", func(s *models.PracticeSet) {}, false},
		{"missing set id", func(s *models.PracticeSet) { s.ID = " " }, true},
		{"missing title", func(s *models.PracticeSet) { s.Title = "" }, true},
		{"missing section id", func(s *models.PracticeSet) { s.Sections[0].ID = "" }, true},
		{"unknown section type", func(s *models.PracticeSet) { s.Sections[0].Type = "GRAMMAR" }, true},
		{"missing part id", func(s *models.PracticeSet) { s.Sections[0].Parts[0].ID = "" }, true},
		{"missing question id", func(s *models.PracticeSet) { s.Sections[0].Parts[0].Questions[0].ID = "" }, true},
		{"negative weight", func(s *models.PracticeSet) { s.Sections[0].Parts[0].Questions[0].Weight = -1 }, true},
		{
			"part with questions and segments",
			func(s *models.PracticeSet) {
				s.Sections[0].Parts[0].Segments = []models.Segment{{ID: "seg-1"}}
			},
			true,
		},
		{
			"part with only segments",
			func(s *models.PracticeSet) {
				s.Sections[0].Parts[0].Questions = nil
				s.Sections[0].Parts[0].Segments = []models.Segment{
					{ID: "seg-1", Questions: []models.Question{{ID: "q-2"}}},
				}
			},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := validSet()
			tt.mutate(set)
			err := ValidatePracticeSet(set)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePracticeSet() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidatePracticeSetNormalizesSectionTypes(t *testing.T) {
	set := validSet()
	set.Sections[0].Type = " listening "

	if err := ValidatePracticeSet(set); err != nil {
		t.Fatalf("ValidatePracticeSet() error = %v", err)
	}
	if set.Sections[0].Type != models.SectionListening {
		t.Errorf("section type = %q, want %q", set.Sections[0].Type, models.SectionListening)
	}
}
