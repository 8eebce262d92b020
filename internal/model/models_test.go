package model

import "testing"

func TestDeleted(t *testing.T) {
	tests := []struct {
		name        string
		contentHash string
		want        bool
	}{
		{"live record", "QmHash", false},
		{"sentinel hash", "0", true},
		{"empty hash", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Inheritance{ContentHash: tt.contentHash}
			if got := rec.Deleted(); got != tt.want {
				t.Errorf("Deleted() = %v, want %v", got, tt.want)
			}
		})
	}
}
