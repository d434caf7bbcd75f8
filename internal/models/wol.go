package models

import "time"

// WOLConfig holds Wake-on-LAN configuration.
type WOLConfig struct {
	MACAddress   string
	BroadcastIP  string
	Target       *Target       // probed until reachable; nil to skip waiting
	Timeout      time.Duration // max time to wait for target
	PollInterval time.Duration // how often to probe the target
}

// WOLResult holds the result of a Wake-on-LAN operation.
type WOLResult struct {
	PacketSent   bool
	TargetReady  bool
	WaitDuration time.Duration
	Error        error
}
