package trainer_test

import (
	"testing"

	"gymdesk/internal/domain/trainer"
)

// TestTrainerValidation tests validation of Trainer.
func TestTrainerValidation(t *testing.T) {
	neg, five := -1, 5
	tests := []struct {
		name    string
		trainer trainer.Trainer
		wantErr bool
	}{
		{"valid", trainer.Trainer{Name: "Ravi", ExperienceYears: &five, Email: "ravi@gym.test"}, false},
		{"name only", trainer.Trainer{Name: "Ravi"}, false},
		{"empty name", trainer.Trainer{Name: "  "}, true},
		{"negative experience", trainer.Trainer{Name: "Ravi", ExperienceYears: &neg}, true},
		{"bad email", trainer.Trainer{Name: "Ravi", Email: "ravi"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.trainer.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
