package pfcp

import (
	"encoding/json"
	"testing"
)

func TestMessageType_String(t *testing.T) {
	tests := []struct {
		mt   MessageType
		want string
	}{
		{MessageTypeSessionEstablishmentRequest, "SESSION_ESTABLISHMENT_REQUEST"},
		{MessageTypeSessionEstablishmentResponse, "SESSION_ESTABLISHMENT_RESPONSE"},
		{MessageTypeSessionDeletionResponse, "SESSION_DELETION_RESPONSE"},
		{MessageType(99), "MESSAGE_TYPE_99"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.mt.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCause_Accepted(t *testing.T) {
	if !CauseRequestAccepted.Accepted() {
		t.Error("REQUEST_ACCEPTED should be accepted")
	}
	for _, c := range []Cause{CauseRequestRejected, CauseSessionContextNotFound, CauseNoResourcesAvailable, CauseSystemFailure} {
		if c.Accepted() {
			t.Errorf("cause %s should not be accepted", c)
		}
	}
}

func TestCause_String(t *testing.T) {
	if got := CauseMandatoryIEMissing.String(); got != "MANDATORY_IE_MISSING" {
		t.Errorf("String() = %q", got)
	}
	if got := Cause(250).String(); got != "CAUSE_250" {
		t.Errorf("String() = %q", got)
	}
}

// The establishment envelope field names are load-bearing: the SMF and
// the UPF are separate processes agreeing only on this JSON.
func TestSessionEstablishmentRequest_Wire(t *testing.T) {
	req := NewSessionEstablishmentRequest("smf-seid-5")
	req.CreatePDR = []CreatePDR{{
		PDRID:      1,
		Precedence: 200,
		PDI: PDI{
			SourceInterface: InterfaceAccess,
			UEIPAddress:     "10.6.0.1",
			NetworkInstance: "internet",
		},
		FARID: 1,
	}}
	req.CreateFAR = []CreateFAR{{
		FARID:       1,
		ApplyAction: ApplyActionForward,
		ForwardingParameters: &ForwardingParameters{
			DestinationInterface: InterfaceCore,
			OuterHeaderCreation: &OuterHeaderCreation{
				Description: "GTP-U/UDP/IPv4",
				TEID:        "1001",
			},
		},
	}}
	req.CreateQER = []CreateQER{{QERID: 1, QFI: 9, UplinkMBR: 100000000, DownlinkMBR: 100000000}}

	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got := decoded["messageType"].(float64); got != 50 {
		t.Errorf("messageType = %v, want 50", got)
	}
	if got := decoded["seid"].(string); got != "smf-seid-5" {
		t.Errorf("seid = %q", got)
	}
	for _, key := range []string{"createPDR", "createFAR", "createQER"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("missing envelope key %q in %s", key, data)
		}
	}

	pdr := decoded["createPDR"].([]any)[0].(map[string]any)
	pdi := pdr["pdi"].(map[string]any)
	if pdi["sourceInterface"] != "ACCESS" || pdi["ueIpAddress"] != "10.6.0.1" {
		t.Errorf("unexpected pdi: %v", pdi)
	}

	qer := decoded["createQER"].([]any)[0].(map[string]any)
	if qer["uplinkMBR"].(float64) != 100000000 {
		t.Errorf("unexpected qer: %v", qer)
	}
}

func TestSessionEstablishmentResponse_RoundTrip(t *testing.T) {
	resp := SessionEstablishmentResponse{
		MessageType:            MessageTypeSessionEstablishmentResponse,
		Cause:                  CauseRequestAccepted,
		UPFSEID:                &FTEID{TEID: "a1b2", IPv4Address: "127.0.0.1"},
		AllocatedUEIPAddresses: &AllocatedUEIPAddresses{IPv4: "192.168.100.1"},
		CreatedPDR:             []CreatedPDR{{PDRID: 1}},
		LoadControlInformation: &LoadControlInformation{SequenceNumber: 1, LoadMetric: 50},
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got SessionEstablishmentResponse
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !got.Cause.Accepted() {
		t.Errorf("cause = %v, want accepted", got.Cause)
	}
	if got.UPFSEID == nil || got.UPFSEID.TEID != "a1b2" {
		t.Errorf("upFSeid lost in round trip: %+v", got.UPFSEID)
	}
	if got.AllocatedUEIPAddresses.IPv4 != "192.168.100.1" {
		t.Errorf("allocated addresses lost: %+v", got.AllocatedUEIPAddresses)
	}
}

func TestGTPUPacketRequest_Wire(t *testing.T) {
	req := GTPUPacketRequest{
		TunnelID:  "tun-1",
		Direction: DirectionDownlink,
		Header:    GTPUHeader{TEID: "1001", Length: 1000},
		Payload:   "payload-bytes",
	}

	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["tunnel_id"] != "tun-1" || decoded["direction"] != "downlink" {
		t.Errorf("unexpected wire form: %s", data)
	}
	header := decoded["header"].(map[string]any)
	if header["teid"] != "1001" {
		t.Errorf("unexpected header: %v", header)
	}
}
