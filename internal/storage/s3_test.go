package storage

import "testing"

func TestNewUnconfigured(t *testing.T) {
	c, err := New("", "eu-central-1", "", "", "bucket", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c != nil {
		t.Fatal("expected nil client without endpoint and credentials")
	}
}

func TestFileURL(t *testing.T) {
	tests := []struct {
		name      string
		publicURL string
		want      string
	}{
		{
			"path style from endpoint",
			"",
			"https://s3.example.com/aperture-media/portfolio/weddings/a.jpg",
		},
		{
			"cdn url",
			"https://cdn.example.com/",
			"https://cdn.example.com/portfolio/weddings/a.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New("https://s3.example.com/", "eu-central-1", "key", "secret", "aperture-media", tt.publicURL)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			got := c.FileURL("portfolio/weddings/a.jpg")
			if got != tt.want {
				t.Errorf("FileURL: got %q, want %q", got, tt.want)
			}
		})
	}
}
