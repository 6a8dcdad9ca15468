package media

import "testing"

func TestPrefixKey(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"PXL_20250623_193700123.mp4", "PXL"},
		{"VID_20250623_193700.mp4", "VID"},
		{"GX010123.MP4", "GX"},
		{"DJI_0001.MP4", "DJI"},
		{"20250623_193700.mp4", "2025"},
		{"__x.mov", "__x"},
		{"-abc.mov", "-ab"},
		{"1-a.mov", "1-a"},
		{"ab", "ab"},
		{"x", "x"},
		{"9", ""},
		{"_", ""},
	}
	for _, tt := range tests {
		if got := PrefixKey(tt.name); got != tt.want {
			t.Errorf("PrefixKey(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestPrefixes(t *testing.T) {
	got := Prefixes([]string{"VID_1.mp4", "PXL_2.mp4", "VID_3.mp4", "20250101_1.jpg", "x", "ab", "DJ"})
	want := []string{"2025", "PXL", "VID"}
	if len(got) != len(want) {
		t.Fatalf("Prefixes() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Prefixes() = %v, want %v", got, want)
		}
	}
}

func TestWildcardPattern(t *testing.T) {
	re, err := WildcardPattern("pxl_2025*.mp?")
	if err != nil {
		t.Fatalf("WildcardPattern() error = %v", err)
	}
	for _, name := range []string{"PXL_20250623.mp4", "pxl_2025.mpg", "PXL_2025x.mp4.bak"} {
		if !re.MatchString(name) {
			t.Errorf("%q should match", name)
		}
	}
	for _, name := range []string{"xPXL_2025.mp4", "PXL_2024.mp4", "PXL_2025xmp4"} {
		if re.MatchString(name) {
			t.Errorf("%q should not match", name)
		}
	}
}
