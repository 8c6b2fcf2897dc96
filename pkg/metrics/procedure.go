package metrics

import (
	"time"
)

// ProcedureMetrics provides observability for control-plane procedures:
// registrations, authentications, session establishments, and the registry
// population they act on.
//
// This interface is optional - pass nil to disable metrics collection with
// zero overhead.
type ProcedureMetrics interface {
	// RecordProcedure records a completed control-plane procedure.
	//
	// Parameters:
	//   - procedure: procedure name (e.g., "REGISTRATION", "5G_AKA", "PDU_SESSION_ESTABLISHMENT")
	//   - outcome: "success" or "failure"
	//   - duration: time from trigger to final state transition
	RecordProcedure(procedure string, outcome string, duration time.Duration)

	// SetRegisteredUEs updates the gauge of subscribers currently in
	// REGISTERED state.
	SetRegisteredUEs(count int)

	// SetActiveSessions updates the gauge of currently established PDU
	// sessions.
	SetActiveSessions(count int)

	// SetRegisteredNFs updates the gauge of registered function instances
	// for one function type.
	SetRegisteredNFs(nfType string, count int)

	// RecordAuthResult counts an authentication confirmation by result
	// (e.g., "AUTHENTICATION_SUCCESS", "AUTHENTICATION_FAILURE").
	RecordAuthResult(result string)

	// RecordTokenIssued counts one issued access token.
	RecordTokenIssued()
}
