package cu

import "github.com/drcoopertbbt/BF3-5G-Demo/pkg/f1ap"

// RRCMessage is one TS 38.331 message with its logical channel type.
type RRCMessage struct {
	MessageType string         `json:"messageType"`
	Message     map[string]any `json:"message"`
}

// srb1RLCConfig is the RLC-AM configuration applied to SRB1
// (TS 38.331 §6.3.2, RLC-Config).
func srb1RLCConfig() map[string]any {
	return map[string]any{
		"am": map[string]any{
			"ul-AM-RLC": map[string]any{
				"sn-FieldLength":   "size12",
				"t-PollRetransmit": "ms25",
				"pollPDU":          "p4",
				"pollByte":         "kB25",
				"maxRetxThreshold": "t1",
			},
			"dl-AM-RLC": map[string]any{
				"sn-FieldLength":   "size12",
				"t-Reassembly":     "ms35",
				"t-StatusProhibit": "ms0",
			},
		},
	}
}

// BuildRRCSetup assembles the canned RRCSetup of TS 38.331 §6.2.2: SRB1
// with RLC-AM, the master cell group for PCI 1 on band n78 with 30 kHz
// subcarrier spacing, and the DU-side id as the new UE identity.
func BuildRRCSetup(transactionID int, newUEIdentity uint64) RRCMessage {
	rrcSetup := map[string]any{
		"rrc-TransactionIdentifier": transactionID,
		"criticalExtensions": map[string]any{
			"rrcSetup": map[string]any{
				"radioBearerConfig": map[string]any{
					"srb-ToAddModList": []any{
						map[string]any{
							"srb-Identity": 1,
							"rlc-Config":   srb1RLCConfig(),
						},
					},
				},
				"masterCellGroup": map[string]any{
					"cellGroupId": 0,
					"rlc-BearerToAddModList": []any{
						map[string]any{
							"logicalChannelIdentity": 1,
							"servedRadioBearer":      map[string]any{"srb-Identity": 1},
							"rlc-Config": map[string]any{
								"am": map[string]any{
									"ul-AM-RLC": map[string]any{"sn-FieldLength": "size12"},
									"dl-AM-RLC": map[string]any{"sn-FieldLength": "size12"},
								},
							},
						},
					},
					"mac-CellGroupConfig": map[string]any{
						"drx-Config": map[string]any{
							"drx-onDurationTimer":  map[string]any{"subMilliSeconds": 1},
							"drx-InactivityTimer":  "ms1",
							"drx-HARQ-RTT-TimerDL": 1,
							"drx-HARQ-RTT-TimerUL": 1,
						},
					},
					"physicalCellGroupConfig": map[string]any{
						"harq-ACK-SpatialBundlingPUCCH": "enabled",
						"harq-ACK-SpatialBundlingPUSCH": "enabled",
						"p-NR-FR1":                      23,
					},
					"spCellConfig": map[string]any{
						"servCellIndex": 0,
						"reconfigurationWithSync": map[string]any{
							"spCellConfigCommon": map[string]any{
								"physCellId":           1,
								"downlinkConfigCommon": bwpConfig("absoluteFrequencySSB"),
								"uplinkConfigCommon":   bwpConfig("absoluteFrequencyPointA"),
							},
							"newUE-Identity": newUEIdentity,
							"t304":           "ms1000",
						},
					},
				},
			},
		},
	}

	return RRCMessage{
		MessageType: f1ap.RRCMessageDLCCCH,
		Message: map[string]any{
			"dl-ccch-msg": map[string]any{
				"message": map[string]any{
					"c1": map[string]any{"rrcSetup": rrcSetup},
				},
			},
		},
	}
}

// bwpConfig is the shared band n78 bandwidth-part template; only the
// anchor frequency IE name differs between the DL and UL directions.
func bwpConfig(anchorIE string) map[string]any {
	return map[string]any{
		"frequencyInfo": map[string]any{
			"frequencyBandList": []any{
				map[string]any{"freqBandIndicatorNR": 78},
			},
			anchorIE: 632628,
		},
		"initialBWP": map[string]any{
			"genericParameters": map[string]any{
				"locationAndBandwidth": 14025,
				"subcarrierSpacing":    "kHz30",
			},
		},
	}
}
