// Package discovery finds Pandora control servers over mDNS/DNS-SD.
//
// A device under test (or its simulator) advertises the _pandora._tcp
// service. The instance name is free-form; TXT records carry:
//
//   - profile: comma-separated profiles the server controls (e.g. "HFP")
//   - addr: Bluetooth address of the device, as "AA:BB:CC:DD:EE:FF"
//   - ver: control protocol version
//
// The adapter browses for the service when no explicit target is given and
// dials the first server that serves the requested profile.
package discovery
