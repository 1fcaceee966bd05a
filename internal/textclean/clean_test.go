package textclean

import "testing"

func TestClean(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		prefix string
		want   string
	}{
		{"empty", "", OldPrefix, ""},
		{"plain", "工厂流水线上的工人", OldPrefix, "工厂流水线上的工人"},
		{"full frame", "停止像 工厂流水线上的工人 一样思考", OldPrefix, "工厂流水线上的工人"},
		{"fullwidth colon", "开始像：交响乐指挥家一样思考。", NewPrefix, "交响乐指挥家"},
		{"ascii colon run", "开始像 : : 园丁一样思考！", NewPrefix, "园丁"},
		{"suffix only", "一个园丁一样思考", NewPrefix, "一个园丁"},
		{"prefix only in middle", "像停止像的人", OldPrefix, "像停止像的人"},
		{"case insensitive", "Think like a gardener", "think like", "a gardener"},
		{"suffix not at end", "一样思考的园丁", NewPrefix, "一样思考的园丁"},
		{"surrounding space", "   园丁   ", NewPrefix, "园丁"},
		{"regexp metacharacters", "a.b* rest", "a.b*", "rest"},
		{"no prefix", ": 园丁", "", "园丁"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.in, tt.prefix); got != tt.want {
				t.Errorf("Clean(%q, %q) = %q, want %q", tt.in, tt.prefix, got, tt.want)
			}
		})
	}
}

func TestHelpers(t *testing.T) {
	if got := OldPattern("停止像旧地图一样思考"); got != "旧地图" {
		t.Errorf("OldPattern = %q", got)
	}
	if got := NewMetaphor("开始像 GPS 一样思考。"); got != "GPS" {
		t.Errorf("NewMetaphor = %q", got)
	}
}
