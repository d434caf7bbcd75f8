package models

import "time"

// Target describes one monitored endpoint. It is immutable once monitoring starts.
type Target struct {
	IP                string
	MAC               string // when set, presence is checked in the ARP table
	Enabled           bool
	PollInterval      time.Duration
	OfflineThreshold  time.Duration
	OnlineThreshold   time.Duration
	HeartbeatInterval time.Duration
	LogFile           string
	BroadcastIP       string // Wake-on-LAN broadcast address
}

// UsesMAC reports whether the target is identified by MAC address.
func (t Target) UsesMAC() bool {
	return t.MAC != ""
}

// Identity returns the MAC address if configured, otherwise the IP.
func (t Target) Identity() string {
	if t.UsesMAC() {
		return t.MAC
	}
	return t.IP
}

// Kind returns "MAC" or "IP" depending on how the target is identified.
func (t Target) Kind() string {
	if t.UsesMAC() {
		return "MAC"
	}
	return "IP"
}

// ProbeResult holds the result of a single reachability probe.
type ProbeResult struct {
	Reachable bool
	Duration  time.Duration
	Output    string
	Error     error
}
