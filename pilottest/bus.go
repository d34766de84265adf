package pilottest

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"

	"github.com/c2fo/pilot"
	"github.com/c2fo/pilot/notify/redischannel"
	"github.com/c2fo/pilot/utils"
)

// Bus is an in-process notification channel: miniredis behind a redischannel.Channel.
type Bus struct {
	Redis   *miniredis.Miniredis
	Client  *redis.Client
	Channel *redischannel.Channel
}

// NewBus starts a Bus that is shut down when the test ends.
func NewBus(t testing.TB) *Bus {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return &Bus{
		Redis:   mr,
		Client:  rdb,
		Channel: redischannel.New(rdb, redischannel.WithPrefix("pilot")),
	}
}

// Finish publishes a FINISH notification for geid on the namespace of datasetGeid.
func (b *Bus) Finish(ctx context.Context, datasetGeid, sessionID string, action pilot.Action, geid string) error {
	return b.Channel.Publish(ctx, utils.Namespace(datasetGeid), Finished(geid, sessionID, action))
}

// Finished returns a FINISH dataset file notification.
func Finished(geid, sessionID string, action pilot.Action) pilot.Notification {
	n := pilot.Notification{Event: pilot.EventDatasetFileNotification}
	n.Payload.Source.GlobalEntityID = geid
	n.Payload.SessionID = sessionID
	n.Payload.Status = pilot.StatusFinish
	n.Payload.Action = action
	return n
}

// HashCode returns a signed download hash code naming fullPath, as issued by the platform.
func HashCode(t testing.TB, fullPath string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"full_path": fullPath,
		"issuer":    "SERVICE DATA DOWNLOAD",
	}).SignedString([]byte("server-side-secret"))
	if err != nil {
		t.Fatalf("sign hash code: %v", err)
	}
	return token
}
