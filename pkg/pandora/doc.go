// Package pandora provides clients and server bindings for the Pandora
// device-under-test control plane: the Host, Security and HFP services.
//
// Calls are unary gRPC. Messages are plain Go structs carried with the
// "cbor" content-subtype, so both ends must use this package (or another
// implementation of the same CBOR codec). This is not the protobuf wire
// format: stock Pandora servers built from the .proto definitions reject
// these calls, and a device must serve the CBOR bindings registered here.
//
//	conn, err := pandora.Dial("localhost:8999", pandora.WithEventLogger(logger, sessionID))
//	host := pandora.NewHostClient(conn)
//	resp, err := host.Connect(ctx, &pandora.ConnectRequest{Address: addr})
package pandora
