package cardano

import "time"

// SlotConfig maps wall clock time to slots.
type SlotConfig struct {
	ZeroTime   time.Time
	ZeroSlot   uint64
	SlotLength time.Duration
}

var (
	// MainnetSlotConfig starts at the Shelley hard fork.
	MainnetSlotConfig = SlotConfig{
		ZeroTime:   time.UnixMilli(1596059091000),
		ZeroSlot:   4492800,
		SlotLength: time.Second,
	}
	// PreprodSlotConfig ...
	PreprodSlotConfig = SlotConfig{
		ZeroTime:   time.UnixMilli(1655769600000),
		ZeroSlot:   86400,
		SlotLength: time.Second,
	}
)

// SlotConfigForNetwork returns the mainnet config for network id 1 and the
// preprod config otherwise.
func SlotConfigForNetwork(network uint8) SlotConfig {
	if network == MainnetNetworkID {
		return MainnetSlotConfig
	}
	return PreprodSlotConfig
}

// SlotAt returns the slot containing t. Times before the zero time map to
// the zero slot.
func (c SlotConfig) SlotAt(t time.Time) uint64 {
	if !t.After(c.ZeroTime) {
		return c.ZeroSlot
	}
	return c.ZeroSlot + uint64(t.Sub(c.ZeroTime)/c.SlotLength)
}
