// Package faults classifies notification delivery failures.
//
// Nothing in this package is fatal to the host process: a classified fault is
// recorded for diagnostics and the delivery pipeline moves on. The worst case
// for any fault here is "no notification fires".
package faults

import (
	"errors"
	"fmt"
	"time"
)

// Kind tags a delivery failure with its failure mode.
type Kind string

const (
	KindPermissionDenied    Kind = "PERMISSION_DENIED"
	KindSubscriptionFailed  Kind = "SUBSCRIPTION_FAILED"
	KindNetworkError        Kind = "NETWORK_ERROR"
	KindWorkerError         Kind = "SERVICE_WORKER_ERROR"
	KindBackgroundSync      Kind = "BACKGROUND_SYNC_ERROR"
	KindDeliveryFailed      Kind = "NOTIFICATION_DELIVERY_FAILED"
	KindDeviceSpecific      Kind = "DEVICE_SPECIFIC"
	KindUnsupportedPlatform Kind = "UNSUPPORTED_PLATFORM"
	KindUnknown             Kind = "UNKNOWN"
)

// DeliveryError wraps an underlying failure with its classified kind.
type DeliveryError struct {
	Kind Kind
	Err  error
}

func (e *DeliveryError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// New creates a classified delivery error.
func New(kind Kind, format string, args ...interface{}) *DeliveryError {
	return &DeliveryError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Wrap attaches a kind to an existing error.
func Wrap(kind Kind, err error) *DeliveryError {
	return &DeliveryError{Kind: kind, Err: err}
}

// Classify returns the kind of an error. Errors already carrying a
// DeliveryError keep their kind; anything else is KindUnknown.
func Classify(err error) Kind {
	var de *DeliveryError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

// Record is one entry in the diagnostics error history.
type Record struct {
	ID        string      `json:"id"`
	Kind      Kind        `json:"type"`
	Message   string      `json:"message"`
	Timestamp time.Time   `json:"timestamp"`
	Device    *DeviceInfo `json:"deviceInfo,omitempty"`
}

// DeviceInfo is the platform snapshot attached to a recorded failure.
type DeviceInfo struct {
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	Graphical bool   `json:"graphical"`
	Notifier  string `json:"notifier,omitempty"`
}
