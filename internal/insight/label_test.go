package insight

import "testing"

func TestSplitBilingual(t *testing.T) {
	tests := []struct {
		label, native, english string
		ok                     bool
	}{
		{"结构性熵增 (Structural Entropy)", "结构性熵增", "(Structural Entropy)", true},
		{"路径依赖（Path Dependency）", "路径依赖", "(Path Dependency)", true},
		{"plain", "plain", "", false},
		{"(only english)", "(only english)", "", false},
		{"half (open", "half (open", "", false},
	}
	for _, tt := range tests {
		native, english, ok := SplitBilingual(tt.label)
		if native != tt.native || english != tt.english || ok != tt.ok {
			t.Errorf("SplitBilingual(%q) = %q, %q, %v; want %q, %q, %v",
				tt.label, native, english, ok, tt.native, tt.english, tt.ok)
		}
	}
}

func TestShorten(t *testing.T) {
	if got := Shorten("我担心AI会取代我的工作吗", 12, 10); got != "我担心AI会取代我的.." {
		t.Fatalf("unexpected shortened label %q", got)
	}
	if got := Shorten("短标签", 12, 10); got != "短标签" {
		t.Fatalf("short labels must pass through, got %q", got)
	}
}
