package vitals

// Low-end device classification bounds.
const (
	// lowEndMemoryGB is the device-memory class at or below which a device
	// is considered low-end.
	lowEndMemoryGB = 1.0
)

// slowConnectionTypes are the effective connection types classified as
// low-end regardless of device memory.
var slowConnectionTypes = map[string]bool{
	"slow-2g": true,
	"2g":      true,
}

// SessionContext is the once-per-session environment captured when the
// collector is constructed.
type SessionContext struct {
	URL            string   `json:"url"`
	AgentString    string   `json:"agent_string"`
	IsLowEndDevice bool     `json:"is_low_end_device"`
	DeviceMemoryGB *float64 `json:"device_memory_gb,omitempty"`
	ConnectionType string   `json:"connection_type,omitempty"`
	PageLoadTimeMs float64  `json:"page_load_time_ms"`
}

// LowEnd classifies a device as low-end when its memory class is at most
// 1 GB or its effective connection type is slow-2g/2g. A nil memory value
// means the host did not expose the device-memory API.
func LowEnd(deviceMemoryGB *float64, connectionType string) bool {
	if deviceMemoryGB != nil && *deviceMemoryGB <= lowEndMemoryGB {
		return true
	}
	return slowConnectionTypes[connectionType]
}
