package pipeline

import "testing"

func TestIdentifier(t *testing.T) {
	tests := []struct {
		key    string
		want   string
		wantOK bool
	}{
		{"minecraft:stone", "stone", true},
		{"stone", "stone", true},
		{"a:b:c", "b", true},
		{"Minecraft:Polished-Andesite", "polished_andesite", true},
		{"ns:__x__y", "__x__y", true},
		{"minecraft:café", "caf_", true},
		{"::", "", false},
		{":", "", false},
		{"minecraft:", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := Identifier(tt.key)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Identifier(%q) = %q, %v, want %q, %v", tt.key, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestCleanIdentifier(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Hello World!", "hello_world_"},
		{"oak_log_2", "oak_log_2"},
		{"ÄB", "_b"},
		{"a.b-c", "a_b_c"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := CleanIdentifier(tt.in); got != tt.want {
			t.Errorf("CleanIdentifier(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"polished_andesite", "Polished Andesite"},
		{"__x__y", "X Y"},
		{"oak  log", "Oak Log"},
		{"stone2", "Stone2"},
		{"éclair_au_lait", "Éclair Au Lait"},
		{"___", "___"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := DisplayName(tt.in); got != tt.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
