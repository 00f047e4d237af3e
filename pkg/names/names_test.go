package names

import "testing"

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "Jane Doe", "Jane Doe"},
		{"glued duplicate", "Jane DoeJane Doe", "Jane Doe"},
		{"spaced duplicate", "John Allen Smith John Allen Smith", "John Allen Smith"},
		{"duplicate case differs", "jane doe Jane Doe", "jane doe"},
		{"bullet degree", "Jane Doe • 2nd", "Jane Doe"},
		{"middle dot degree", "Jane Doe · 3rd+", "Jane Doe"},
		{"mojibake bullet", "Jane Doe â€¢ 2nd", "Jane Doe"},
		{"nbsp", "Jane\u00a0Doe", "Jane Doe"},
		{"zero width", "Jane\u200b Doe", "Jane Doe"},
		{"glued verb prefix", "ConnectJane Doe", "Jane Doe"},
		{"glued verb suffix", "Jane DoeMessage", "Jane Doe"},
		{"trailing verb", "Jane Doe Connect", "Jane Doe"},
		{"trailing view profile", "Jane Doe View profile", "Jane Doe"},
		{"pending", "Jane Doe Pending", "Jane Doe"},
		{"degree without bullet", "Jane Doe 2nd degree connection", "Jane Doe"},
		{"duplicate then noise", "Jane DoeJane Doe • 2nd Connect", "Jane Doe"},
		{"duplicate with degree between", "Bob Lee 2nd Bob Lee", "Bob Lee"},
		{"verb only", "Connect", ""},
		{"verb lower", "message", ""},
		{"denylisted label", "See all", ""},
		{"numeric", "12345", ""},
		{"too short", "J", ""},
		{"empty", "", ""},
		{"whitespace", " \t\n ", ""},
		{"too long", "Aaaaaaaaaa Bbbbbbbbbb Cccccccccc Dddddddddd Eeeeeeeeee Ffffffffff Gg", ""},
		{"name containing verb substring", "Connor Messager", "Connor Messager"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Extract(tt.raw); got != tt.want {
				t.Errorf("Extract(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestExtractIdempotent(t *testing.T) {
	inputs := []string{
		"Jane DoeJane Doe",
		"John Allen Smith John Allen Smith",
		"Jane Doe • 2nd",
		"ConnectJane Doe",
		"Connect",
		"Anna AnnaAnna Anna",
		"Bob Lee Bob Lee Bob Lee Bob Lee",
		"Mary-Ann O'Neil Mary-Ann O'Neil • 1st",
		"Dr. Jane Doe, PhD",
		"李雷李雷",
		"José Álvarez José Álvarez",
		"ab",
		"",
	}

	for _, in := range inputs {
		once := Extract(in)
		twice := Extract(once)
		if once != twice {
			t.Errorf("Extract(Extract(%q)) = %q, want %q", in, twice, once)
		}
	}
}

func TestCollapse(t *testing.T) {
	e := New()
	tests := []struct {
		in   string
		want string
	}{
		{"Jane DoeJane Doe", "Jane Doe"},
		{"Jane Doe Jane Doe", "Jane Doe"},
		{"Jane Doe  Jane Doe", "Jane Doe"},
		{"Jane Doe", "Jane Doe"},
		{"AbAb", "AbAb"},     // halves too short
		{"AbcAbc", "Abc"},    // halves just long enough
		{"Jane Doe Janet Doe", "Jane Doe Janet Doe"},
		{"李雷李雷", "李雷李雷"}, // two-rune halves are below the minimum
		{"José ÁlvarezJosé Álvarez", "José Álvarez"},
	}

	for _, tt := range tests {
		if got := e.Collapse(tt.in); got != tt.want {
			t.Errorf("Collapse(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCollapseWordHalves(t *testing.T) {
	// Halves that differ in spacing defeat the split scan.
	e := &Extractor{Window: 0, MinHalf: DefaultMinHalf}
	in := "Ann  Marie Ann Marie"
	if got, want := e.Collapse(in), "Ann Marie"; got != want {
		t.Errorf("Collapse(%q) = %q, want %q", in, got, want)
	}

	odd := "Ann Lee Ann"
	if got := e.Collapse(odd); got != odd {
		t.Errorf("Collapse(%q) = %q, want unchanged", odd, got)
	}
}

func TestExtractorThresholds(t *testing.T) {
	in := "AbAb"
	loose := &Extractor{Window: DefaultWindow, MinHalf: 1}
	if got, want := loose.Extract(in), "Ab"; got != want {
		t.Errorf("MinHalf=1 Extract(%q) = %q, want %q", in, got, want)
	}
	if got, want := New().Extract(in), "AbAb"; got != want {
		t.Errorf("default Extract(%q) = %q, want %q", in, got, want)
	}
}

func TestStripNoise(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ConnectJane Doe", "Jane Doe"},
		{"FOLLOWJane Doe", "Jane Doe"},
		{"Jane DoeFollow", "Jane Doe"},
		{"Jane Doe 1st", "Jane Doe  "},
		{"Connectivity Lead", "Connectivity Lead"},
	}

	for _, tt := range tests {
		if got := StripNoise(tt.in); got != tt.want {
			t.Errorf("StripNoise(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Jane Doe", true},
		{"Al", true},
		{"A", false},
		{"CONNECT", false},
		{"Follow", false},
		{"view", false},
		{"More", false},
		{"on", false},
		{"Only Fans", true},
		{"2024", false},
		{"1,000+", false},
		{"R2D2", true},
	}

	for _, tt := range tests {
		if got := Valid(tt.name); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
