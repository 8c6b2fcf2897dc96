// Package udm implements the unified data management function: the per-SUPI
// subscriber database of TS 29.503 (access-and-mobility and session
// subscriptions, long-term keys), the record of which AMF serves each UE,
// and the authentication vector source consumed by the AUSF.
package udm

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/models"
)

// UE serving states tracked per subscriber.
const (
	UEStateRegistered   = "REGISTERED"
	UEStateDeregistered = "DEREGISTERED"
)

// UEContext records which AMF serves a subscriber and when the serving
// state last changed.
type UEContext struct {
	AMFInstanceID      string        `json:"amfInstanceId"`
	GUAMI              *models.GUAMI `json:"guami,omitempty"`
	RegistrationTime   time.Time     `json:"registrationTime"`
	DeregistrationTime *time.Time    `json:"deregistrationTime,omitempty"`
	UEState            string        `json:"ueState"`
}

// State is the subscriber database. Subscription records are immutable
// once seeded; callers must not modify returned pointers.
type State struct {
	mu            sync.RWMutex
	amData        map[string]*models.AccessAndMobilitySubscriptionData
	smData        map[string]*models.SessionManagementSubscriptionData
	authSubs      map[string]*models.AuthenticationSubscription
	registrations map[string]*models.AMF3GPPAccessRegistration
	ueContexts    map[string]*UEContext
	authEvents    map[string][]models.AuthEvent
}

// NewState creates an empty subscriber database.
func NewState() *State {
	return &State{
		amData:        make(map[string]*models.AccessAndMobilitySubscriptionData),
		smData:        make(map[string]*models.SessionManagementSubscriptionData),
		authSubs:      make(map[string]*models.AuthenticationSubscription),
		registrations: make(map[string]*models.AMF3GPPAccessRegistration),
		ueContexts:    make(map[string]*UEContext),
		authEvents:    make(map[string][]models.AuthEvent),
	}
}

// Seed provisions one subscriber: AM data with the default and subscribed
// slices, SM data for the internet DNN, and an authentication subscription
// with a fresh random permanent key.
func (s *State) Seed(supi string) error {
	key := make([]byte, 16)
	if _, err := rand.Read(key); err != nil {
		return fmt.Errorf("generating permanent key: %w", err)
	}

	gpsi := "msisdn-" + strings.TrimPrefix(supi, "imsi-")

	s.mu.Lock()
	defer s.mu.Unlock()

	s.amData[supi] = &models.AccessAndMobilitySubscriptionData{
		GPSIs:            []string{gpsi},
		SubscribedUEAMBR: &models.AMBR{Uplink: "1 Gbps", Downlink: "2 Gbps"},
		NSSAI: &models.NSSAIInfo{
			DefaultSingleNSSAIs: []models.SNSSAI{{SST: 1, SD: "010203"}},
			SingleNSSAIs: []models.SNSSAI{
				{SST: 1, SD: "010203"},
				{SST: 2, SD: "020304"},
			},
		},
		UEUsageType: 1,
		RFSPIndex:   1,
	}

	s.smData[supi] = &models.SessionManagementSubscriptionData{
		SingleNSSAI: &models.SNSSAI{SST: 1, SD: "010203"},
		DNNConfigurations: map[string]models.DNNConfiguration{
			"internet": {
				PDUSessionTypes: &models.PDUSessionTypes{
					DefaultSessionType:  "IPV4",
					AllowedSessionTypes: []string{"IPV4", "IPV6", "IPV4V6"},
				},
				SSCModes: &models.SSCModes{
					DefaultSSCMode:  "SSC_MODE_1",
					AllowedSSCModes: []string{"SSC_MODE_1", "SSC_MODE_2"},
				},
				QOSProfile: &models.QOSProfile{
					FiveQI: 9,
					ARP: &models.ARP{
						PriorityLevel:           8,
						PreemptionCapability:    models.PreemptionNotPreempt,
						PreemptionVulnerability: models.PreemptionNotPreemptable,
					},
					PriorityLevel: 8,
				},
				SessionAMBR: &models.AMBR{Uplink: "1 Gbps", Downlink: "2 Gbps"},
			},
		},
	}

	s.authSubs[supi] = &models.AuthenticationSubscription{
		AuthenticationMethod:          models.AuthMethod5GAKA,
		EncPermanentKey:               hex.EncodeToString(key),
		SequenceNumber:                "000000000001",
		AuthenticationManagementField: "8000",
		AlgorithmID:                   "milenage",
	}

	return nil
}

// HasSubscriber reports whether the SUPI is provisioned.
func (s *State) HasSubscriber(supi string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.amData[supi]
	return ok
}

// Subscribers returns the provisioned SUPIs in sorted order.
func (s *State) Subscribers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	supis := make([]string, 0, len(s.amData))
	for supi := range s.amData {
		supis = append(supis, supi)
	}
	sort.Strings(supis)
	return supis
}

// AMData returns the access-and-mobility subscription of a SUPI.
func (s *State) AMData(supi string) (*models.AccessAndMobilitySubscriptionData, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	am, ok := s.amData[supi]
	return am, ok
}

// SMData returns the session-management subscription of a SUPI.
func (s *State) SMData(supi string) (*models.SessionManagementSubscriptionData, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sm, ok := s.smData[supi]
	return sm, ok
}

// AuthSubscription returns the authentication subscription of a SUPI.
func (s *State) AuthSubscription(supi string) (*models.AuthenticationSubscription, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.authSubs[supi]
	return sub, ok
}

// SetRegistration stores which AMF serves the SUPI, replacing any previous
// registration, and moves the UE context to REGISTERED. Reports whether an
// earlier registration was replaced.
func (s *State) SetRegistration(supi string, reg *models.AMF3GPPAccessRegistration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, replaced := s.registrations[supi]
	s.registrations[supi] = reg
	s.ueContexts[supi] = &UEContext{
		AMFInstanceID:    reg.AMFInstanceID,
		GUAMI:            reg.GUAMI,
		RegistrationTime: time.Now().UTC(),
		UEState:          UEStateRegistered,
	}
	return replaced
}

// Registration returns the current AMF registration of a SUPI.
func (s *State) Registration(supi string) (*models.AMF3GPPAccessRegistration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reg, ok := s.registrations[supi]
	return reg, ok
}

// MergeRegistration applies a partial JSON update onto the stored
// registration. Fields absent from the patch keep their current values.
// Reports whether a registration existed.
func (s *State) MergeRegistration(supi string, patch []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.registrations[supi]
	if !ok {
		return false, nil
	}

	merged := *existing
	if err := json.Unmarshal(patch, &merged); err != nil {
		return true, fmt.Errorf("applying registration update: %w", err)
	}
	s.registrations[supi] = &merged
	return true, nil
}

// DeleteRegistration removes the AMF registration and moves the UE context
// to DEREGISTERED. Deleting an absent registration is not an error; the
// return reports whether one existed.
func (s *State) DeleteRegistration(supi string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, existed := s.registrations[supi]
	delete(s.registrations, supi)

	if ctx, ok := s.ueContexts[supi]; ok {
		now := time.Now().UTC()
		ctx.UEState = UEStateDeregistered
		ctx.DeregistrationTime = &now
	}
	return existed
}

// UEContexts returns a snapshot of the UE serving contexts keyed by SUPI.
func (s *State) UEContexts() map[string]UEContext {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]UEContext, len(s.ueContexts))
	for supi, ctx := range s.ueContexts {
		out[supi] = *ctx
	}
	return out
}

// RecordAuthEvent appends one authentication event to the SUPI history.
func (s *State) RecordAuthEvent(supi string, event models.AuthEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authEvents[supi] = append(s.authEvents[supi], event)
}

// AuthEvents returns a snapshot of the authentication history keyed by SUPI.
func (s *State) AuthEvents() map[string][]models.AuthEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]models.AuthEvent, len(s.authEvents))
	for supi, events := range s.authEvents {
		out[supi] = append([]models.AuthEvent(nil), events...)
	}
	return out
}

// Counts returns the subscriber total, the UEs currently REGISTERED, the
// stored AMF registrations, and the total recorded authentication events.
func (s *State) Counts() (subscribers, activeUEs, registrations, authEvents int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ctx := range s.ueContexts {
		if ctx.UEState == UEStateRegistered {
			activeUEs++
		}
	}
	for _, events := range s.authEvents {
		authEvents += len(events)
	}
	return len(s.amData), activeUEs, len(s.registrations), authEvents
}

// GenerateVector derives a fresh 5G-AKA vector for the SUPI from its
// permanent key: a random 16-byte RAND, XRES and AUTN as truncated SHA-256
// digests over key, RAND and a tag, and KAUSF bound to the serving network
// name. The second return is false when the SUPI has no authentication
// subscription.
func (s *State) GenerateVector(supi, servingNetworkName string) (*models.AuthenticationVector, bool, error) {
	s.mu.RLock()
	sub, ok := s.authSubs[supi]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return nil, true, fmt.Errorf("generating rand: %w", err)
	}
	challenge := hex.EncodeToString(buf)

	k := sub.EncPermanentKey
	return &models.AuthenticationVector{
		RAND:  challenge,
		XRES:  hashHex(k + challenge + "XRES")[:16],
		AUTN:  hashHex(k + challenge + "AUTN")[:32],
		KAUSF: hashHex(k + challenge + servingNetworkName),
	}, true, nil
}

// hashHex is the emulation-grade hash family standing in for Milenage:
// hex-encoded SHA-256 of the concatenated inputs.
func hashHex(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
