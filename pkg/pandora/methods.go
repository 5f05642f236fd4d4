package pandora

// Service names.
const (
	HostServiceName     = "pandora.Host"
	SecurityServiceName = "pandora.Security"
	HFPServiceName      = "pandora.HFP"
)

// Full method names.
const (
	HostConnectMethod           = "/pandora.Host/Connect"
	HostWaitConnectionMethod    = "/pandora.Host/WaitConnection"
	SecurityDeletePairingMethod = "/pandora.Security/DeletePairing"
	HFPEnableSlcMethod          = "/pandora.HFP/EnableSlc"
	HFPDisableSlcMethod         = "/pandora.HFP/DisableSlc"
	HFPSetBatteryLevelMethod    = "/pandora.HFP/SetBatteryLevel"
)
