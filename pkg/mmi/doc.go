// Package mmi dispatches PTS man-machine interface (MMI) directives to
// profile proxies.
//
// The PTS drives a conformance test by sending named MMIs, each with a
// human-readable description of the action expected from the implementation
// under test. A profile Proxy translates each MMI into calls on the device
// control plane and acknowledges it with an answer (normally AnswerOK).
//
// Proxies declare their MMIs in a StepTable. The table checks that the
// description sent by the PTS matches the text the handler was written
// against, so a PTS update that changes the meaning of a step fails loudly
// instead of running the wrong action.
package mmi
