// Package models defines the 3GPP service-based-interface entities exchanged
// between network functions: registry profiles (TS 29.510), subscriber data
// (TS 29.503), authentication payloads (TS 29.509), policy structures
// (TS 29.512) and session-management contexts (TS 29.502). All payloads are
// plain JSON structs; field names follow the 3GPP OpenAPI conventions.
package models

import "fmt"

// PLMNID identifies a public land mobile network (TS 23.003).
type PLMNID struct {
	MCC string `json:"mcc"`
	MNC string `json:"mnc"`
}

// String returns the canonical "mcc-mnc" form.
func (p PLMNID) String() string {
	return p.MCC + "-" + p.MNC
}

// Equal reports whether two PLMN ids match exactly.
func (p PLMNID) Equal(other PLMNID) bool {
	return p.MCC == other.MCC && p.MNC == other.MNC
}

// Domain returns the operator's 3GPP network domain with the MNC padded
// to three digits, e.g. "mnc001.mcc001.3gppnetwork.org" (TS 23.003 §28).
func (p PLMNID) Domain() string {
	mnc := p.MNC
	if len(mnc) == 2 {
		mnc = "0" + mnc
	}
	return fmt.Sprintf("mnc%s.mcc%s.3gppnetwork.org", mnc, p.MCC)
}

// SNSSAI is the single network slice selection assistance information
// (TS 23.501 §5.15). SD is optional and compared literally when present.
type SNSSAI struct {
	SST int    `json:"sst"`
	SD  string `json:"sd,omitempty"`
}

// Equal reports whether two S-NSSAIs select the same slice.
func (s SNSSAI) Equal(other SNSSAI) bool {
	return s.SST == other.SST && s.SD == other.SD
}

// String returns "sst-sd" or just the sst when no differentiator is set.
func (s SNSSAI) String() string {
	if s.SD == "" {
		return fmt.Sprintf("%d", s.SST)
	}
	return fmt.Sprintf("%d-%s", s.SST, s.SD)
}

// GUAMI is the globally unique AMF identifier (TS 23.003 §2.10.1).
type GUAMI struct {
	PLMNID      PLMNID `json:"plmnId"`
	AMFRegionID string `json:"amfRegionId"`
	AMFSetID    string `json:"amfSetId"`
	AMFPointer  string `json:"amfPointer"`
}

// TAI is a tracking area identity.
type TAI struct {
	PLMNID PLMNID `json:"plmnId"`
	TAC    string `json:"tac"`
}

// AMBR carries aggregate maximum bit rates as human-readable strings
// ("1 Gbps", "256 Kbps") the way the SBI payloads encode them.
type AMBR struct {
	Uplink   string `json:"uplink"`
	Downlink string `json:"downlink"`
}

// ARP is the allocation and retention priority of a QoS flow (TS 23.501
// §5.7.2.2). PriorityLevel 1 is the highest.
type ARP struct {
	PriorityLevel           int    `json:"priorityLevel"`
	PreemptionCapability    string `json:"preemptCap,omitempty"`
	PreemptionVulnerability string `json:"preemptVuln,omitempty"`
}

const (
	PreemptionMayPreempt     = "MAY_PREEMPT"
	PreemptionNotPreempt     = "NOT_PREEMPT"
	PreemptionPreemptable    = "PREEMPTABLE"
	PreemptionNotPreemptable = "NOT_PREEMPTABLE"
)
