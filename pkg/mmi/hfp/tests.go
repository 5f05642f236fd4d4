package hfp

import "strings"

// waitConnectionBeforeTest lists tests in which the PTS connects as soon as
// the test starts, so the device must already be waiting for it.
var waitConnectionBeforeTest = map[string]bool{
	"HFP/AG/WBS/BV-01-I": true,
	"HFP/AG/SLC/BV-05-I": true,
}

// waitConnectionWhenConnectable lists test ids (matched as substrings) in
// which TSC_iut_connectable must also accept the incoming link.
var waitConnectionWhenConnectable = []string{
	"HFP/AG/SLC/BV-03-C",
}

// NeedsWaitConnectionBeforeTest reports whether TestStarted schedules a
// WaitConnection for test.
func NeedsWaitConnectionBeforeTest(test string) bool {
	return waitConnectionBeforeTest[test]
}

func waitsOnConnectable(test string) bool {
	for _, id := range waitConnectionWhenConnectable {
		if strings.Contains(test, id) {
			return true
		}
	}
	return false
}
