package ua

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// ServiceID identifies a service request type on the wire.
type ServiceID uint8

const (
	ServiceCreateSubscription   ServiceID = 1
	ServiceModifySubscription   ServiceID = 2
	ServiceSetPublishingMode    ServiceID = 3
	ServiceDeleteSubscriptions  ServiceID = 4
	ServiceCreateMonitoredItems ServiceID = 5
	ServiceModifyMonitoredItems ServiceID = 6
	ServiceSetMonitoringMode    ServiceID = 7
	ServiceSetTriggering        ServiceID = 8
	ServiceDeleteMonitoredItems ServiceID = 9
	ServiceCall                 ServiceID = 10
)

// String returns the service name.
func (s ServiceID) String() string {
	switch s {
	case ServiceCreateSubscription:
		return "CreateSubscription"
	case ServiceModifySubscription:
		return "ModifySubscription"
	case ServiceSetPublishingMode:
		return "SetPublishingMode"
	case ServiceDeleteSubscriptions:
		return "DeleteSubscriptions"
	case ServiceCreateMonitoredItems:
		return "CreateMonitoredItems"
	case ServiceModifyMonitoredItems:
		return "ModifyMonitoredItems"
	case ServiceSetMonitoringMode:
		return "SetMonitoringMode"
	case ServiceSetTriggering:
		return "SetTriggering"
	case ServiceDeleteMonitoredItems:
		return "DeleteMonitoredItems"
	case ServiceCall:
		return "Call"
	default:
		return fmt.Sprintf("ServiceID(%d)", uint8(s))
	}
}

// IsValid reports whether the service identifier is known.
func (s ServiceID) IsValid() bool {
	return s >= ServiceCreateSubscription && s <= ServiceCall
}

// RequestMessage is the transport envelope for a service request.
//
// CBOR encoding:
//
//	{
//	  1: requestId,  // uint32: correlation token, never 0
//	  2: service,    // uint8: ServiceID
//	  3: payload     // service-specific request, CBOR-encoded
//	}
type RequestMessage struct {
	RequestID RequestID       `cbor:"1,keyasint"`
	Service   ServiceID       `cbor:"2,keyasint"`
	Payload   cbor.RawMessage `cbor:"3,keyasint,omitempty"`
}

// NewRequestMessage builds an envelope around an encoded service payload.
func NewRequestMessage(id RequestID, service ServiceID, payload any) (*RequestMessage, error) {
	raw, err := Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", service, err)
	}
	return &RequestMessage{RequestID: id, Service: service, Payload: raw}, nil
}

// Validate checks envelope invariants.
func (m *RequestMessage) Validate() error {
	if m.RequestID == 0 {
		return fmt.Errorf("requestId 0 is reserved")
	}
	if !m.Service.IsValid() {
		return fmt.Errorf("invalid service: %d", m.Service)
	}
	return nil
}

// Decode unmarshals the payload into a service request struct.
func (m *RequestMessage) Decode(into any) error {
	return Unmarshal(m.Payload, into)
}

// ResponseMessage is the transport envelope for a service response.
// ServiceResult carries the whole-service status; when it is bad the
// payload is absent and no per-item results exist.
//
// CBOR encoding:
//
//	{
//	  1: requestId,      // uint32: matches the request
//	  2: serviceResult,  // uint32: StatusCode for the whole call
//	  3: payload         // service-specific response, absent on failure
//	}
type ResponseMessage struct {
	RequestID     RequestID       `cbor:"1,keyasint"`
	ServiceResult StatusCode      `cbor:"2,keyasint,omitempty"`
	Payload       cbor.RawMessage `cbor:"3,keyasint,omitempty"`
}

// NewResponseMessage builds a good-result envelope around an encoded
// service payload.
func NewResponseMessage(id RequestID, payload any) (*ResponseMessage, error) {
	raw, err := Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return &ResponseMessage{RequestID: id, Payload: raw}, nil
}

// NewFaultMessage builds a failure envelope carrying only a status.
func NewFaultMessage(id RequestID, result StatusCode) *ResponseMessage {
	return &ResponseMessage{RequestID: id, ServiceResult: result}
}

// IsGood reports whether the whole service call succeeded. Per-item
// statuses inside the payload may still be bad.
func (m *ResponseMessage) IsGood() bool {
	return m.ServiceResult.IsGood()
}

// Decode unmarshals the payload into a service response struct.
func (m *ResponseMessage) Decode(into any) error {
	return Unmarshal(m.Payload, into)
}

// CreateSubscriptionRequest asks the peer to create a subscription.
type CreateSubscriptionRequest struct {
	Parameters        SubscriptionParameters `cbor:"1,keyasint"`
	PublishingEnabled bool                   `cbor:"2,keyasint"`
}

// CreateSubscriptionResponse returns the assigned identifier and the
// revised (possibly clamped) subscription settings.
type CreateSubscriptionResponse struct {
	SubscriptionID            SubscriptionID `cbor:"1,keyasint"`
	RevisedPublishingInterval time.Duration  `cbor:"2,keyasint"`
	RevisedLifetimeCount      uint32         `cbor:"3,keyasint"`
	RevisedMaxKeepAliveCount  uint32         `cbor:"4,keyasint"`
}

// ModifySubscriptionRequest updates settings of an existing subscription.
type ModifySubscriptionRequest struct {
	SubscriptionID SubscriptionID         `cbor:"1,keyasint"`
	Parameters     SubscriptionParameters `cbor:"2,keyasint"`
}

// ModifySubscriptionResponse returns the revised subscription settings.
type ModifySubscriptionResponse struct {
	RevisedPublishingInterval time.Duration `cbor:"1,keyasint"`
	RevisedLifetimeCount      uint32        `cbor:"2,keyasint"`
	RevisedMaxKeepAliveCount  uint32        `cbor:"3,keyasint"`
}

// SetPublishingModeRequest enables or disables notification delivery for
// a batch of subscriptions. It does not change item monitoring modes.
type SetPublishingModeRequest struct {
	PublishingEnabled bool             `cbor:"1,keyasint"`
	SubscriptionIDs   []SubscriptionID `cbor:"2,keyasint"`
}

// SetPublishingModeResponse carries one status per requested subscription.
type SetPublishingModeResponse struct {
	Results []StatusCode `cbor:"1,keyasint"`
}

// DeleteSubscriptionsRequest deletes a batch of subscriptions together
// with every monitored item they own.
type DeleteSubscriptionsRequest struct {
	SubscriptionIDs []SubscriptionID `cbor:"1,keyasint"`
}

// DeleteSubscriptionsResponse carries one status per requested subscription.
type DeleteSubscriptionsResponse struct {
	Results []StatusCode `cbor:"1,keyasint"`
}

// MonitoredItemCreateRequest describes one item within a create batch.
type MonitoredItemCreateRequest struct {
	ItemToMonitor       ReadValueID          `cbor:"1,keyasint"`
	MonitoringMode      MonitoringMode       `cbor:"2,keyasint"`
	RequestedParameters MonitoringParameters `cbor:"3,keyasint"`
}

// CreateMonitoredItemsRequest registers a batch of monitored items under
// one subscription.
type CreateMonitoredItemsRequest struct {
	SubscriptionID     SubscriptionID               `cbor:"1,keyasint"`
	TimestampsToReturn TimestampsToReturn           `cbor:"2,keyasint"`
	ItemsToCreate      []MonitoredItemCreateRequest `cbor:"3,keyasint"`
}

// MonitoredItemCreateResult is the per-item outcome of a create batch.
// RevisedSamplingInterval and RevisedQueueSize are authoritative and may
// differ from the requested values.
type MonitoredItemCreateResult struct {
	StatusCode              StatusCode      `cbor:"1,keyasint,omitempty"`
	MonitoredItemID         MonitoredItemID `cbor:"2,keyasint"`
	RevisedSamplingInterval time.Duration   `cbor:"3,keyasint"`
	RevisedQueueSize        uint32          `cbor:"4,keyasint"`
}

// CreateMonitoredItemsResponse carries one result per requested item, in
// request order.
type CreateMonitoredItemsResponse struct {
	Results []MonitoredItemCreateResult `cbor:"1,keyasint"`
}

// MonitoredItemModifyRequest describes one item within a modify batch.
type MonitoredItemModifyRequest struct {
	MonitoredItemID     MonitoredItemID      `cbor:"1,keyasint"`
	RequestedParameters MonitoringParameters `cbor:"2,keyasint"`
}

// ModifyMonitoredItemsRequest updates parameters of existing items.
type ModifyMonitoredItemsRequest struct {
	SubscriptionID     SubscriptionID               `cbor:"1,keyasint"`
	TimestampsToReturn TimestampsToReturn           `cbor:"2,keyasint"`
	ItemsToModify      []MonitoredItemModifyRequest `cbor:"3,keyasint"`
}

// MonitoredItemModifyResult is the per-item outcome of a modify batch.
type MonitoredItemModifyResult struct {
	StatusCode              StatusCode    `cbor:"1,keyasint,omitempty"`
	RevisedSamplingInterval time.Duration `cbor:"2,keyasint"`
	RevisedQueueSize        uint32        `cbor:"3,keyasint"`
}

// ModifyMonitoredItemsResponse carries one result per requested item, in
// request order.
type ModifyMonitoredItemsResponse struct {
	Results []MonitoredItemModifyResult `cbor:"1,keyasint"`
}

// SetMonitoringModeRequest transitions a batch of items to a new
// monitoring mode without recreating them.
type SetMonitoringModeRequest struct {
	SubscriptionID   SubscriptionID    `cbor:"1,keyasint"`
	MonitoringMode   MonitoringMode    `cbor:"2,keyasint"`
	MonitoredItemIDs []MonitoredItemID `cbor:"3,keyasint"`
}

// SetMonitoringModeResponse carries one status per requested item.
type SetMonitoringModeResponse struct {
	Results []StatusCode `cbor:"1,keyasint"`
}

// SetTriggeringRequest adds and removes triggering links on one
// triggering item. Link targets normally sit in Sampling mode and report
// only when the triggering item reports.
type SetTriggeringRequest struct {
	SubscriptionID   SubscriptionID    `cbor:"1,keyasint"`
	TriggeringItemID MonitoredItemID   `cbor:"2,keyasint"`
	LinksToAdd       []MonitoredItemID `cbor:"3,keyasint,omitempty"`
	LinksToRemove    []MonitoredItemID `cbor:"4,keyasint,omitempty"`
}

// SetTriggeringResponse carries one status per add link and one per
// remove link, in request order. Partial failure is expected: some links
// may succeed while others fail.
type SetTriggeringResponse struct {
	AddResults    []StatusCode `cbor:"1,keyasint,omitempty"`
	RemoveResults []StatusCode `cbor:"2,keyasint,omitempty"`
}

// DeleteMonitoredItemsRequest removes a batch of items from one
// subscription.
type DeleteMonitoredItemsRequest struct {
	SubscriptionID   SubscriptionID    `cbor:"1,keyasint"`
	MonitoredItemIDs []MonitoredItemID `cbor:"2,keyasint"`
}

// DeleteMonitoredItemsResponse carries one status per requested item.
type DeleteMonitoredItemsResponse struct {
	Results []StatusCode `cbor:"1,keyasint"`
}

// CallMethodRequest invokes one method on one object.
type CallMethodRequest struct {
	ObjectID       NodeID    `cbor:"1,keyasint"`
	MethodID       NodeID    `cbor:"2,keyasint"`
	InputArguments []Variant `cbor:"3,keyasint,omitempty"`
}

// CallRequest invokes a batch of methods.
type CallRequest struct {
	MethodsToCall []CallMethodRequest `cbor:"1,keyasint"`
}

// CallMethodResult is the per-method outcome of a call batch.
// InputArgumentResults, when present, carries one status per input
// argument and pinpoints which arguments were rejected.
type CallMethodResult struct {
	StatusCode           StatusCode   `cbor:"1,keyasint,omitempty"`
	InputArgumentResults []StatusCode `cbor:"2,keyasint,omitempty"`
	OutputArguments      []Variant    `cbor:"3,keyasint,omitempty"`
}

// CallResponse carries one result per requested method, in request order.
type CallResponse struct {
	Results []CallMethodResult `cbor:"1,keyasint"`
}

// PublishKind discriminates notification messages.
type PublishKind uint8

const (
	// PublishDataChange carries a sampled value for a data-change item.
	PublishDataChange PublishKind = 1

	// PublishEvent carries filtered event fields for an event item.
	PublishEvent PublishKind = 2

	// PublishItemDeleted confirms the peer-side removal of one item.
	PublishItemDeleted PublishKind = 3
)

// String returns the publish kind name.
func (k PublishKind) String() string {
	switch k {
	case PublishDataChange:
		return "dataChange"
	case PublishEvent:
		return "event"
	case PublishItemDeleted:
		return "itemDeleted"
	default:
		return "unknown"
	}
}

// PublishMessage is the transport envelope for one queued notification.
// Exactly one of the kind-specific fields is set.
//
// CBOR encoding:
//
//	{
//	  1: kind,         // uint8: PublishKind
//	  2: dataChange,   // DataChangeNotification, kind 1 only
//	  3: event,        // EventNotification, kind 2 only
//	  4: itemDeleted   // ItemDeletedNotification, kind 3 only
//	}
type PublishMessage struct {
	Kind        PublishKind              `cbor:"1,keyasint"`
	DataChange  *DataChangeNotification  `cbor:"2,keyasint,omitempty"`
	Event       *EventNotification       `cbor:"3,keyasint,omitempty"`
	ItemDeleted *ItemDeletedNotification `cbor:"4,keyasint,omitempty"`
}

// Validate checks that the kind matches the populated payload field.
func (m *PublishMessage) Validate() error {
	switch m.Kind {
	case PublishDataChange:
		if m.DataChange == nil {
			return fmt.Errorf("dataChange publish without payload")
		}
	case PublishEvent:
		if m.Event == nil {
			return fmt.Errorf("event publish without payload")
		}
	case PublishItemDeleted:
		if m.ItemDeleted == nil {
			return fmt.Errorf("itemDeleted publish without payload")
		}
	default:
		return fmt.Errorf("invalid publish kind: %d", m.Kind)
	}
	return nil
}

// DataChangeNotification reports a sampled value change for one
// monitored item.
type DataChangeNotification struct {
	SubscriptionID  SubscriptionID  `cbor:"1,keyasint"`
	MonitoredItemID MonitoredItemID `cbor:"2,keyasint"`
	ClientHandle    ClientHandle    `cbor:"3,keyasint"`
	Value           DataValue       `cbor:"4,keyasint"`
}

// EventNotification reports one event occurrence for one monitored item.
// EventFields holds the selected fields in the order of the item's
// filter select clauses; unresolvable clauses yield null variants.
type EventNotification struct {
	SubscriptionID  SubscriptionID  `cbor:"1,keyasint"`
	MonitoredItemID MonitoredItemID `cbor:"2,keyasint"`
	ClientHandle    ClientHandle    `cbor:"3,keyasint"`
	EventFields     []Variant       `cbor:"4,keyasint"`
}

// ItemDeletedNotification confirms that the peer has removed a monitored
// item. The receiver releases its local state for the item only on this
// confirmation.
type ItemDeletedNotification struct {
	SubscriptionID  SubscriptionID  `cbor:"1,keyasint"`
	MonitoredItemID MonitoredItemID `cbor:"2,keyasint"`
}
