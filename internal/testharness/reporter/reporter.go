// Package reporter formats script results as text, JSON or JUnit XML.
package reporter

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/pts-bot/mmi2grpc/internal/testharness/engine"
)

// Reporter formats and outputs test results.
type Reporter interface {
	// ReportSuite reports results for a suite.
	ReportSuite(result *engine.SuiteResult)

	// ReportTest reports results for a single test.
	ReportTest(result *engine.TestResult)
}

func status(r *engine.TestResult) string {
	switch {
	case r.Skipped:
		return "skipped"
	case r.Passed:
		return "passed"
	default:
		return "failed"
	}
}

func passRate(s *engine.SuiteResult) float64 {
	total := s.PassCount + s.FailCount
	if total == 0 {
		return 0
	}
	return float64(s.PassCount) / float64(total) * 100
}

// TextReporter outputs human-readable text reports.
type TextReporter struct {
	writer  io.Writer
	verbose bool

	pass *color.Color
	fail *color.Color
	skip *color.Color
	dim  *color.Color
}

// NewTextReporter creates a text reporter. Colour follows color.NoColor.
func NewTextReporter(w io.Writer, verbose bool) *TextReporter {
	return &TextReporter{
		writer:  w,
		verbose: verbose,
		pass:    color.New(color.FgGreen, color.Bold),
		fail:    color.New(color.FgRed, color.Bold),
		skip:    color.New(color.FgYellow),
		dim:     color.New(color.Faint),
	}
}

// DisableColor forces plain output.
func (r *TextReporter) DisableColor() {
	for _, c := range []*color.Color{r.pass, r.fail, r.skip, r.dim} {
		c.DisableColor()
	}
}

// ReportSuite reports suite results in text format.
func (r *TextReporter) ReportSuite(result *engine.SuiteResult) {
	fmt.Fprintf(r.writer, "\n=== Suite: %s ===\n", result.SuiteName)
	fmt.Fprintf(r.writer, "Duration: %s\n\n", result.Duration.Round(time.Millisecond))

	for _, tr := range result.Results {
		r.ReportTest(tr)
	}

	fmt.Fprintf(r.writer, "\n--- Summary ---\n")
	fmt.Fprintf(r.writer, "Total:   %d\n", len(result.Results))
	fmt.Fprintf(r.writer, "Passed:  %s\n", r.pass.Sprint(result.PassCount))
	fmt.Fprintf(r.writer, "Failed:  %s\n", r.fail.Sprint(result.FailCount))
	fmt.Fprintf(r.writer, "Skipped: %s\n", r.skip.Sprint(result.SkipCount))
	if result.PassCount+result.FailCount > 0 {
		fmt.Fprintf(r.writer, "Pass Rate: %.1f%%\n", passRate(result))
	}
}

// ReportTest reports a single test result in text format.
func (r *TextReporter) ReportTest(result *engine.TestResult) {
	sc := result.Script

	var tag string
	switch status(result) {
	case "skipped":
		tag = r.skip.Sprint("SKIP")
	case "passed":
		tag = r.pass.Sprint("PASS")
	default:
		tag = r.fail.Sprint("FAIL")
	}

	name := sc.ID
	if sc.Name != "" {
		name += " - " + sc.Name
	}
	fmt.Fprintf(r.writer, "[%s] %s (%s)\n", tag, name, result.Duration.Round(time.Millisecond))

	if result.Skipped && result.SkipReason != "" {
		fmt.Fprintf(r.writer, "       Skip reason: %s\n", result.SkipReason)
	}
	if !result.Passed && result.Error != nil {
		fmt.Fprintf(r.writer, "       Error: %v\n", result.Error)
	}

	if !r.verbose {
		return
	}
	for _, sr := range result.StepResults {
		stepTag := r.pass.Sprint("PASS")
		if !sr.Passed {
			stepTag = r.fail.Sprint("FAIL")
		}
		fmt.Fprintf(r.writer, "    [%s] Step %d: %s -> %q %s\n",
			stepTag, sr.StepIndex+1, sr.Step.MMI, sr.Answer,
			r.dim.Sprintf("(%s)", sr.Duration.Round(time.Millisecond)))
		if !sr.Passed && sr.Error != nil {
			fmt.Fprintf(r.writer, "           Error: %v\n", sr.Error)
		}
	}
}

// JSONReporter outputs JSON-formatted reports.
type JSONReporter struct {
	writer io.Writer
	pretty bool
}

// NewJSONReporter creates a JSON reporter.
func NewJSONReporter(w io.Writer, pretty bool) *JSONReporter {
	return &JSONReporter{writer: w, pretty: pretty}
}

// JSONSuiteResult is the JSON representation of suite results.
type JSONSuiteResult struct {
	SuiteName string           `json:"suite_name"`
	Duration  string           `json:"duration"`
	Total     int              `json:"total"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Skipped   int              `json:"skipped"`
	PassRate  float64          `json:"pass_rate"`
	Tests     []JSONTestResult `json:"tests"`
}

// JSONTestResult is the JSON representation of a test result.
type JSONTestResult struct {
	ID         string           `json:"id"`
	Name       string           `json:"name,omitempty"`
	Status     string           `json:"status"`
	Duration   string           `json:"duration"`
	Error      string           `json:"error,omitempty"`
	SkipReason string           `json:"skip_reason,omitempty"`
	Steps      []JSONStepResult `json:"steps,omitempty"`
}

// JSONStepResult is the JSON representation of a step result.
type JSONStepResult struct {
	Index    int    `json:"index"`
	MMI      string `json:"mmi"`
	Status   string `json:"status"`
	Answer   string `json:"answer,omitempty"`
	Duration string `json:"duration"`
	Error    string `json:"error,omitempty"`
}

// ReportSuite reports suite results in JSON format.
func (r *JSONReporter) ReportSuite(result *engine.SuiteResult) {
	jr := JSONSuiteResult{
		SuiteName: result.SuiteName,
		Duration:  result.Duration.Round(time.Millisecond).String(),
		Total:     len(result.Results),
		Passed:    result.PassCount,
		Failed:    result.FailCount,
		Skipped:   result.SkipCount,
		PassRate:  passRate(result),
		Tests:     make([]JSONTestResult, 0, len(result.Results)),
	}
	for _, tr := range result.Results {
		jr.Tests = append(jr.Tests, testToJSON(tr))
	}
	r.writeJSON(jr)
}

// ReportTest reports a single test result in JSON format.
func (r *JSONReporter) ReportTest(result *engine.TestResult) {
	r.writeJSON(testToJSON(result))
}

func testToJSON(result *engine.TestResult) JSONTestResult {
	jr := JSONTestResult{
		ID:         result.Script.ID,
		Name:       result.Script.Name,
		Status:     status(result),
		Duration:   result.Duration.Round(time.Millisecond).String(),
		SkipReason: result.SkipReason,
	}
	if result.Error != nil {
		jr.Error = result.Error.Error()
	}

	for _, sr := range result.StepResults {
		jsr := JSONStepResult{
			Index:    sr.StepIndex,
			MMI:      sr.Step.MMI,
			Status:   "passed",
			Answer:   sr.Answer,
			Duration: sr.Duration.Round(time.Millisecond).String(),
		}
		if !sr.Passed {
			jsr.Status = "failed"
		}
		if sr.Error != nil {
			jsr.Error = sr.Error.Error()
		}
		jr.Steps = append(jr.Steps, jsr)
	}
	return jr
}

func (r *JSONReporter) writeJSON(v any) {
	var data []byte
	var err error
	if r.pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		fmt.Fprintf(r.writer, `{"error": "failed to marshal: %s"}`, err)
		return
	}
	fmt.Fprintln(r.writer, string(data))
}

// JUnitReporter outputs JUnit XML for CI integration.
type JUnitReporter struct {
	writer io.Writer
}

// NewJUnitReporter creates a JUnit reporter.
func NewJUnitReporter(w io.Writer) *JUnitReporter {
	return &JUnitReporter{writer: w}
}

type junitSuite struct {
	XMLName  xml.Name    `xml:"testsuite"`
	Name     string      `xml:"name,attr"`
	Tests    int         `xml:"tests,attr"`
	Failures int         `xml:"failures,attr"`
	Skipped  int         `xml:"skipped,attr"`
	Time     string      `xml:"time,attr"`
	Cases    []junitCase `xml:"testcase"`
}

type junitCase struct {
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      string        `xml:"time,attr"`
	Skipped   *junitMessage `xml:"skipped,omitempty"`
	Failure   *junitFailure `xml:"failure,omitempty"`
}

type junitMessage struct {
	Message string `xml:"message,attr"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Detail  string `xml:",cdata"`
}

func seconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}

// ReportSuite reports suite results in JUnit XML format.
func (r *JUnitReporter) ReportSuite(result *engine.SuiteResult) {
	suite := junitSuite{
		Name:     result.SuiteName,
		Tests:    len(result.Results),
		Failures: result.FailCount,
		Skipped:  result.SkipCount,
		Time:     seconds(result.Duration),
	}

	for _, tr := range result.Results {
		name := tr.Script.Name
		if name == "" {
			name = tr.Script.ID
		}
		tc := junitCase{
			Name:      name,
			ClassName: tr.Script.ID,
			Time:      seconds(tr.Duration),
		}
		switch {
		case tr.Skipped:
			tc.Skipped = &junitMessage{Message: tr.SkipReason}
		case !tr.Passed && tr.Error != nil:
			f := &junitFailure{Message: tr.Error.Error()}
			for _, sr := range tr.StepResults {
				if !sr.Passed {
					f.Detail += fmt.Sprintf("Step %d (%s): %v\n", sr.StepIndex+1, sr.Step.MMI, sr.Error)
				}
			}
			tc.Failure = f
		}
		suite.Cases = append(suite.Cases, tc)
	}

	data, err := xml.MarshalIndent(suite, "", "  ")
	if err != nil {
		fmt.Fprintf(r.writer, "<!-- failed to marshal: %v -->\n", err)
		return
	}
	fmt.Fprint(r.writer, xml.Header)
	fmt.Fprintln(r.writer, string(data))
}

// ReportTest reports a single test wrapped in a one-case suite.
func (r *JUnitReporter) ReportTest(result *engine.TestResult) {
	suite := &engine.SuiteResult{
		SuiteName: "Single Test",
		Results:   []*engine.TestResult{result},
		Duration:  result.Duration,
	}
	switch status(result) {
	case "passed":
		suite.PassCount = 1
	case "skipped":
		suite.SkipCount = 1
	default:
		suite.FailCount = 1
	}
	r.ReportSuite(suite)
}
