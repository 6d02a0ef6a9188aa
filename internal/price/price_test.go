package price

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"8.50", 8.50, false},
		{"8,50", 8.50, false},
		{" 12,00 ", 12.00, false},
		{"0", 0, false},
		{"", 0, false},
		{"3.999", 4.00, false},
		{"-2.50", 0, true},
		{"abc", 0, true},
		{"1,2,3", 0, true},
	}

	for _, tt := range tests {
		got, err := Parse(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Parse(%q) expected error, got %v", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{8.5, "8.50"},
		{0, "0.00"},
		{17, "17.00"},
		{3.999, "4.00"},
	}

	for _, tt := range tests {
		if got := Format(tt.in); got != tt.want {
			t.Errorf("Format(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
