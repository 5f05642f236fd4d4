package mmi

import (
	"context"
	"encoding/hex"
	"strings"
)

// AnswerOK acknowledges an MMI.
const AnswerOK = "OK"

// Request is a single MMI directive from the PTS.
type Request struct {
	// Profile selects the proxy (e.g. "HFP"). Derived from Test when empty.
	Profile string

	// Test is the PTS test case identifier (e.g. "HFP/AG/SLC/BV-01-C").
	Test string

	// Name is the MMI name (e.g. "TSC_iut_enable_slc").
	Name string

	// Description is the text the PTS shows for this MMI.
	// Empty skips description validation.
	Description string

	// PTSAddr is the Bluetooth address of the PTS dongle.
	PTSAddr []byte
}

// Handler performs one MMI and returns the answer for the PTS.
type Handler func(ctx context.Context, req *Request) (string, error)

// Proxy handles the MMIs of one profile.
type Proxy interface {
	// Profile returns the profile name the proxy serves.
	Profile() string

	// TestStarted is called before the first MMI of a test case.
	TestStarted(ctx context.Context, test string, ptsAddr []byte) (string, error)

	// Interact handles a single MMI.
	Interact(ctx context.Context, req *Request) (string, error)
}

// ProfileFromTest returns the profile prefix of a PTS test id:
// "HFP/AG/SLC/BV-01-C" yields "HFP".
func ProfileFromTest(test string) string {
	profile, _, _ := strings.Cut(test, "/")
	return profile
}

// ParseAddress parses a Bluetooth address written as "00:1B:DC:07:32:8C"
// (or with '-' separators, or as bare hex).
func ParseAddress(s string) ([]byte, error) {
	clean := strings.NewReplacer(":", "", "-", "").Replace(strings.TrimSpace(s))
	addr, err := hex.DecodeString(clean)
	if err != nil {
		return nil, err
	}
	if len(addr) != 6 {
		return nil, ErrInvalidAddress
	}
	return addr, nil
}

// FormatAddress renders a Bluetooth address as "00:1B:DC:07:32:8C".
func FormatAddress(addr []byte) string {
	parts := make([]string, len(addr))
	for i, b := range addr {
		parts[i] = strings.ToUpper(hex.EncodeToString([]byte{b}))
	}
	return strings.Join(parts, ":")
}
