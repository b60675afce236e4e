package payload

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tinywideclouds/go-sns-push-service/pkg/push"
)

// gcmMaxTimeToLive is four weeks, the FCM legacy maximum.
const gcmMaxTimeToLive = int64(4 * 7 * 24 * 60 * 60)

const pushIDLength = 10

var zeroTime time.Time

type gcmData struct {
	Time   string `json:"time"`
	PushID string `json:"push_id"`
	Data   string `json:"data"`
}

type gcmBody struct {
	Priority   string  `json:"priority"`
	Data       gcmData `json:"data"`
	TimeToLive *int64  `json:"time_to_live,omitempty"`
}

type admBody struct {
	Data map[string]any `json:"data"`
}

// GCM builds the Android envelope. An empty pushID is replaced by a random
// one and a zero timestamp by the current time; supplying both makes the
// output deterministic.
func GCM(n push.Notification, pushID string, timestamp time.Time) (Envelope, error) {
	if pushID == "" {
		pushID = newPushID()
	}
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	data, err := marshalBody(n.Data)
	if err != nil {
		return nil, err
	}

	body := gcmBody{
		Priority: "high",
		Data: gcmData{
			Time:   timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
			PushID: pushID,
			Data:   data,
		},
	}
	if n.ExpirationTime != nil {
		ttl := int64(n.ExpirationTime.Sub(timestamp) / time.Second)
		ttl = max(0, min(ttl, gcmMaxTimeToLive))
		body.TimeToLive = &ttl
	}

	text, err := marshalBody(body)
	if err != nil {
		return nil, err
	}
	return Envelope{KeyGCM: text}, nil
}

// ADM builds the Amazon envelope. Only data is forwarded.
func ADM(n push.Notification) (Envelope, error) {
	text, err := marshalBody(admBody{Data: n.Data})
	if err != nil {
		return nil, err
	}
	return Envelope{KeyADM: text}, nil
}

func newPushID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:pushIDLength]
}
