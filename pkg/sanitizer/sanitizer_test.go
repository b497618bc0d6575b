package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trim spaces", "  Beach House  ", "Beach House"},
		{"multiple spaces between words", "Beach    House", "Beach House"},
		{"tabs and newlines", "Beach\t\nHouse", "Beach House"},
		{"empty string", "", ""},
		{"only whitespace", "   \t\n  ", ""},
		{"preserve special characters", " Café & Spa™ ", "Café & Spa™"},
		{"non latin", " Inzu nziza i Kigali ", "Inzu nziza i Kigali"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			if got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := TrimAndNormalize(got); again != got {
				t.Errorf("not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestNormalizeDescription(t *testing.T) {
	got := NormalizeDescription("  Two  bedrooms \r\n\r\n  Sea   view  ")
	want := "Two bedrooms\n\nSea view"
	if got != want {
		t.Errorf("NormalizeDescription() = %q, want %q", got, want)
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Jane.Doe@Example.COM "); got != "jane.doe@example.com" {
		t.Errorf("NormalizeEmail() = %q", got)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Living Room.JPG", "living_room.jpg"},
		{"../../etc/passwd", "passwd"},
		{`C:\photos\pool side!!.png`, "pool_side.png"},
		{"###.gif", "file.gif"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := SanitizeFilename(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := SanitizeFilename(got); again != got {
				t.Errorf("not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestNormalizeImageURLs(t *testing.T) {
	got := NormalizeImageURLs([]string{" https://cdn/a.png", "https://cdn/a.png", "", "https://cdn/b.png"})
	if len(got) != 2 || got[0] != "https://cdn/a.png" || got[1] != "https://cdn/b.png" {
		t.Errorf("NormalizeImageURLs() = %v", got)
	}
	if out := NormalizeImageURLs(nil); out == nil || len(out) != 0 {
		t.Errorf("nil input should give empty slice, got %v", out)
	}
}
