package version

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    ProtocolVersion
		wantErr bool
	}{
		{"1.0", ProtocolVersion{1, 0}, false},
		{"2.13", ProtocolVersion{2, 13}, false},
		{"1", ProtocolVersion{1, 0}, false},
		{"", ProtocolVersion{}, true},
		{"1.", ProtocolVersion{}, true},
		{".1", ProtocolVersion{}, true},
		{"a.b", ProtocolVersion{}, true},
		{"70000.0", ProtocolVersion{}, true},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestString(t *testing.T) {
	if got := (ProtocolVersion{Major: 1, Minor: 2}).String(); got != "1.2" {
		t.Errorf("String() = %q", got)
	}
}

func TestSupported(t *testing.T) {
	for in, want := range map[string]bool{
		"":      true,
		"1":     true,
		"1.0":   true,
		"1.7":   true,
		"2.0":   false,
		"bogus": false,
	} {
		if got := Supported(in); got != want {
			t.Errorf("Supported(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestMustParsePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	MustParse("x")
}

func TestBanner(t *testing.T) {
	if got := Banner("mmi2grpc"); got != "mmi2grpc dev (protocol 1.0)" {
		t.Errorf("Banner() = %q", got)
	}
}
