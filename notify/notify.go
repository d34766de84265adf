// Package notify defines the push channel dataset file notifications are delivered on.
//
// A Channel is a long lived, shared connection. Each Subscription is an independent
// subscriber to one namespace with its own bounded queue, so any number of trackers can
// listen on the same Channel and filter the broadcast traffic for themselves.
package notify

import (
	"context"

	jsoniter "github.com/json-iterator/go"

	"github.com/c2fo/pilot"
	"github.com/c2fo/pilot/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Channel is a push notification transport keyed by namespace, e.g. "/<dataset-geid>".
type Channel interface {
	// Subscribe starts delivery for namespace. The subscription is active when Subscribe
	// returns, so a mutation dispatched afterwards cannot be missed.
	Subscribe(ctx context.Context, namespace string) (Subscription, error)
}

// Publisher is implemented by channels that can also emit notifications.
type Publisher interface {
	Publish(ctx context.Context, namespace string, n pilot.Notification) error
}

// Subscription delivers the notifications published to one namespace.
type Subscription interface {
	// Notifications is closed when the subscription ends.
	Notifications() <-chan pilot.Notification
	Close() error
}

// Decode parses a notification message.
func Decode(data []byte) (pilot.Notification, error) {
	var n pilot.Notification
	if err := json.Unmarshal(data, &n); err != nil {
		return pilot.Notification{}, utils.WrapDecodeError(err)
	}
	return n, nil
}

// Encode serializes a notification message.
func Encode(n pilot.Notification) ([]byte, error) {
	return json.Marshal(n)
}
