package ngap

import (
	"encoding/json"
	"testing"
)

func TestPDU_Message(t *testing.T) {
	init := NewInitiatingMessage(ProcedureCodeInitialUEMessage, CriticalityIgnore, IEs{IERANUENGAPID: 1})
	if m := init.Message(); m == nil || m.ProcedureCode != ProcedureCodeInitialUEMessage {
		t.Fatalf("Message() = %+v", m)
	}
	if init.IsSuccess() {
		t.Error("initiating message reported as success")
	}

	success := NewSuccessfulOutcome(ProcedureCodeNGSetup, CriticalityReject, IEs{IEAMFName: "AMF-001"})
	if !success.IsSuccess() {
		t.Error("successful outcome not reported as success")
	}

	failure := NewUnsuccessfulOutcome(ProcedureCodeUEContextSetup, CriticalityReject, IEs{
		IECause: RadioNetworkCause(CauseUnknownLocalUENGAPID),
	})
	if failure.IsSuccess() {
		t.Error("unsuccessful outcome reported as success")
	}
	if m := failure.Message(); m != failure.UnsuccessfulOutcome {
		t.Error("Message() did not return the unsuccessful arm")
	}

	empty := &PDU{}
	if empty.Message() != nil || empty.IEs() != nil {
		t.Error("empty PDU should have no message")
	}
}

func TestIEs_AccessorsAfterJSONRoundTrip(t *testing.T) {
	pdu := NewInitiatingMessage(ProcedureCodeInitialUEMessage, CriticalityIgnore, IEs{
		IERANUENGAPID: 7,
		IENASPDU:      "registration-request",
		IEUserLocationInformation: map[string]any{
			"userLocationInformationNR": map[string]any{"tAC": "000001"},
		},
		IESetupListSUReq: []any{map[string]any{"pduSessionID": 1}},
	})

	data, err := json.Marshal(pdu)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got PDU
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	ies := got.IEs()
	// Numbers decode as float64; Int must still see them.
	id, ok := ies.Int(IERANUENGAPID)
	if !ok || id != 7 {
		t.Errorf("Int(%s) = %d, %v", IERANUENGAPID, id, ok)
	}
	if got := ies.String(IENASPDU); got != "registration-request" {
		t.Errorf("String(%s) = %q", IENASPDU, got)
	}
	if m := ies.Map(IEUserLocationInformation); m == nil {
		t.Errorf("Map(%s) = nil", IEUserLocationInformation)
	}
	if l := ies.List(IESetupListSUReq); len(l) != 1 {
		t.Errorf("List(%s) = %v", IESetupListSUReq, l)
	}

	if _, ok := ies.Int("missing"); ok {
		t.Error("Int of missing key should not be ok")
	}
}

func TestEnvelopeWireNames(t *testing.T) {
	pdu := NewSuccessfulOutcome(ProcedureCodeNGSetup, CriticalityReject, IEs{})
	data, err := json.Marshal(pdu)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := raw["successfulOutcome"]; !ok {
		t.Fatalf("missing successfulOutcome arm: %s", data)
	}
	if _, ok := raw["initiatingMessage"]; ok {
		t.Errorf("empty arm serialized: %s", data)
	}

	var msg struct {
		ProcedureCode int    `json:"procedureCode"`
		Criticality   string `json:"criticality"`
	}
	if err := json.Unmarshal(raw["successfulOutcome"], &msg); err != nil {
		t.Fatalf("unmarshal arm: %v", err)
	}
	if msg.ProcedureCode != 21 || msg.Criticality != "reject" {
		t.Errorf("arm = %+v", msg)
	}
}
