package loader_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pts-bot/mmi2grpc/internal/testharness/loader"
)

const slcScript = `
id: HFP/AG/SLC/BV-01-C
name: SLC establishment initiated by the AG
pics_requirements:
  - TSPC_HFP_1_1
settle: 3s
steps:
  - mmi: TSC_delete_pairing_iut
  - mmi: TSC_iut_enable_slc
    description: >
      Click Ok, then initiate a service level connection from the
      Implementation Under Test (IUT) to the PTS.
  - mmi: TSC_iut_disable_slc
    delay: 100ms
`

func TestParseScript(t *testing.T) {
	sc, err := loader.ParseScript([]byte(slcScript))
	if err != nil {
		t.Fatalf("ParseScript failed: %v", err)
	}

	if sc.ID != "HFP/AG/SLC/BV-01-C" {
		t.Errorf("ID: got %q", sc.ID)
	}
	if len(sc.Steps) != 3 {
		t.Fatalf("got %d steps, want 3", len(sc.Steps))
	}
	if sc.Steps[1].MMI != "TSC_iut_enable_slc" {
		t.Errorf("step 2 mmi: got %q", sc.Steps[1].MMI)
	}
	if sc.Steps[1].Description == "" {
		t.Error("step 2 description not parsed")
	}
	if sc.Steps[2].Delay != "100ms" {
		t.Errorf("step 3 delay: got %q", sc.Steps[2].Delay)
	}
	if len(sc.PICSRequirements) != 1 || sc.PICSRequirements[0] != "TSPC_HFP_1_1" {
		t.Errorf("pics requirements: got %v", sc.PICSRequirements)
	}
}

func TestParseScriptErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing id", "steps:\n  - mmi: TSC_iut_search\n"},
		{"no steps", "id: HFP/AG/SLC/BV-01-C\n"},
		{"step without mmi", "id: X\nsteps:\n  - description: foo\n"},
		{"bad delay", "id: X\nsteps:\n  - mmi: a\n    delay: soon\n"},
		{"bad settle", "id: X\nsettle: later\nsteps:\n  - mmi: a\n"},
		{"invalid yaml", "id: [unterminated\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.ParseScript([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			var le *loader.LoadError
			if !errors.As(err, &le) {
				t.Errorf("error %T is not a *LoadError", err)
			}
		})
	}
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "slc")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	write := func(path, content string) {
		t.Helper()
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write(filepath.Join(dir, "bv01.yaml"), slcScript)
	write(filepath.Join(sub, "bv03.yml"), "id: HFP/AG/SLC/BV-03-C\nsteps:\n  - mmi: TSC_iut_connectable\n")
	write(filepath.Join(dir, "README.md"), "not a script")

	scripts, err := loader.LoadDirectory(dir)
	if err != nil {
		t.Fatalf("LoadDirectory failed: %v", err)
	}
	if len(scripts) != 2 {
		t.Fatalf("got %d scripts, want 2", len(scripts))
	}

	filtered := loader.FilterByPattern(scripts, "BV-03")
	if len(filtered) != 1 || filtered[0].ID != "HFP/AG/SLC/BV-03-C" {
		t.Errorf("FilterByPattern: got %v", filtered)
	}
	if got := loader.FilterByPattern(scripts, ""); len(got) != 2 {
		t.Errorf("empty pattern should keep all, got %d", len(got))
	}
}

func TestLoadDirectoryReportsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(path, []byte("name: no id\nsteps:\n  - mmi: a\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := loader.LoadDirectory(dir)
	var le *loader.LoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected *LoadError, got %v", err)
	}
	if le.File != path {
		t.Errorf("File: got %q, want %q", le.File, path)
	}
}

func TestLoadDirectoryMissing(t *testing.T) {
	if _, err := loader.LoadDirectory(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestParsePICSKeyValue(t *testing.T) {
	data := `
# HFP AG
TSPC_HFP_1_1=TRUE
TSPC_HFP_1_2=false
TSPC_HFP_0_1=17
vendor=acme
`
	pf, err := loader.ParsePICS([]byte(data))
	if err != nil {
		t.Fatalf("ParsePICS failed: %v", err)
	}
	if pf.Items["TSPC_HFP_1_1"] != true {
		t.Errorf("TSPC_HFP_1_1: got %v", pf.Items["TSPC_HFP_1_1"])
	}
	if pf.Items["TSPC_HFP_1_2"] != false {
		t.Errorf("TSPC_HFP_1_2: got %v", pf.Items["TSPC_HFP_1_2"])
	}
	if pf.Items["TSPC_HFP_0_1"] != 17 {
		t.Errorf("TSPC_HFP_0_1: got %v", pf.Items["TSPC_HFP_0_1"])
	}
	if pf.Items["vendor"] != "acme" {
		t.Errorf("vendor: got %v", pf.Items["vendor"])
	}
}

func TestParsePICSKeyValueInvalidLine(t *testing.T) {
	_, err := loader.ParsePICS([]byte("TSPC_HFP_1_1=true\nnonsense\n"))
	var le *loader.LoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected *LoadError, got %v", err)
	}
	if le.Line != 2 {
		t.Errorf("Line: got %d, want 2", le.Line)
	}
}

func TestParsePICSYAML(t *testing.T) {
	data := `
device:
  vendor: Acme
  product: Phone
items:
  TSPC_HFP_1_1: true
  TSPC_HFP_2_3: false
`
	pf, err := loader.ParsePICS([]byte(data))
	if err != nil {
		t.Fatalf("ParsePICS failed: %v", err)
	}
	if pf.Device.Vendor != "Acme" {
		t.Errorf("vendor: got %q", pf.Device.Vendor)
	}
	if !loader.CheckPICSRequirements(pf, []string{"TSPC_HFP_1_1"}) {
		t.Error("TSPC_HFP_1_1 should be satisfied")
	}
	if loader.CheckPICSRequirements(pf, []string{"TSPC_HFP_2_3"}) {
		t.Error("false item must not satisfy a requirement")
	}
	if loader.CheckPICSRequirements(pf, []string{"TSPC_HFP_9_9"}) {
		t.Error("missing item must not satisfy a requirement")
	}
}

func TestLoadPICSUsesFileName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pixel.pics")
	if err := os.WriteFile(path, []byte("TSPC_HFP_1_1=true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	pf, err := loader.LoadPICS(path)
	if err != nil {
		t.Fatalf("LoadPICS failed: %v", err)
	}
	if pf.Name != "pixel" {
		t.Errorf("Name: got %q, want pixel", pf.Name)
	}
}

func TestFilterByPICS(t *testing.T) {
	pf := &loader.PICSFile{Items: map[string]interface{}{"TSPC_HFP_1_1": true}}
	scripts := []*loader.Script{
		{ID: "a", PICSRequirements: []string{"TSPC_HFP_1_1"}},
		{ID: "b", PICSRequirements: []string{"TSPC_HFP_2_1"}},
		{ID: "c"},
	}
	got := loader.FilterByPICS(scripts, pf)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Errorf("got %v", got)
	}
}

func TestParseDuration(t *testing.T) {
	d, err := loader.ParseDuration("", 2*time.Second)
	if err != nil || d != 2*time.Second {
		t.Errorf("empty: got %v, %v", d, err)
	}
	d, err = loader.ParseDuration("250ms", 0)
	if err != nil || d != 250*time.Millisecond {
		t.Errorf("250ms: got %v, %v", d, err)
	}
	if _, err := loader.ParseDuration("bogus", 0); err == nil {
		t.Error("expected error")
	}
}

func TestLoadErrorMessage(t *testing.T) {
	err := &loader.LoadError{File: "a.pics", Line: 12, Message: "invalid PICS line"}
	if got := err.Error(); got != "a.pics:12: invalid PICS line" {
		t.Errorf("got %q", got)
	}
}

func TestBundledHFPScriptsAndPICS(t *testing.T) {
	scripts, err := loader.LoadDirectory("../../../testdata/scripts/hfp")
	if err != nil {
		t.Fatalf("LoadDirectory failed: %v", err)
	}
	if len(scripts) != 7 {
		t.Fatalf("got %d scripts, want 7", len(scripts))
	}
	for _, sc := range scripts {
		if sc.Profile != "HFP" {
			t.Errorf("%s: profile %q", sc.ID, sc.Profile)
		}
	}

	pf, err := loader.LoadPICS("../../../testdata/pics/hfp-ag.pics")
	if err != nil {
		t.Fatalf("LoadPICS failed: %v", err)
	}
	if pf.Name != "hfp-ag" {
		t.Errorf("PICS name: got %q", pf.Name)
	}

	// The simulated AG does not claim wide band speech.
	got := loader.FilterByPICS(scripts, pf)
	if len(got) != 6 {
		t.Errorf("got %d scripts after PICS filter, want 6", len(got))
	}
	for _, sc := range got {
		if sc.ID == "HFP/AG/WBS/BV-01-I" {
			t.Error("WBS script should be filtered out")
		}
	}
}
