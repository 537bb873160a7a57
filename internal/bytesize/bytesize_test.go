package bytesize

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    ByteSize
		wantErr bool
	}{
		{"1024", 1024, false},
		{"0", 0, false},
		{"1B", 1, false},
		{"1K", 1000, false},
		{"1KB", 1000, false},
		{"1Ki", 1024, false},
		{"1KiB", 1024, false},
		{"500Mi", 500 * MiB, false},
		{"100MB", 100 * MB, false},
		{"1Gi", GiB, false},
		{"2.5Gi", ByteSize(2.5 * float64(GiB)), false},
		{"1gi", GiB, false},
		{" 1 Gi ", GiB, false},
		{"", 0, true},
		{"  ", 0, true},
		{"abc", 0, true},
		{"1XB", 0, true},
		{"-5", 0, true},
	}

	for _, tt := range tests {
		got, err := Parse(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Parse(%q): expected error, got %d", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestUnmarshalText(t *testing.T) {
	var b ByteSize
	if err := b.UnmarshalText([]byte("512Mi")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if b != 512*MiB {
		t.Errorf("got %d, want %d", b, 512*MiB)
	}

	if err := b.UnmarshalText([]byte("nope")); err == nil {
		t.Errorf("expected error for invalid input")
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		size ByteSize
		want string
	}{
		{512, "512B"},
		{2 * KiB, "2.00KiB"},
		{3 * MiB, "3.00MiB"},
		{GiB, "1.00GiB"},
		{TiB, "1.00TiB"},
	}
	for _, tt := range tests {
		if got := tt.size.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", uint64(tt.size), got, tt.want)
		}
	}
}
