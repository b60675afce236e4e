package payload

import (
	"fmt"
	"strconv"

	"github.com/sideshow/apns2/payload"
	"github.com/tinywideclouds/go-sns-push-service/pkg/push"
)

// IOS compiles the notification into an APNs body. Production variants are
// keyed APNS, everything else APNS_SANDBOX.
func IOS(n push.Notification, production bool) (Envelope, error) {
	body, err := marshalBody(compileAPNS(n.Data))
	if err != nil {
		return nil, err
	}

	key := KeyAPNSSandbox
	if production {
		key = KeyAPNS
	}
	return Envelope{key: body}, nil
}

// compileAPNS maps well-known keys into the aps dictionary and passes the
// rest through as custom keys. Expiration is an APNs header, not body.
func compileAPNS(data map[string]any) *payload.Payload {
	p := payload.NewPayload()

	title, hasTitle := data["title"].(string)
	switch alert := data["alert"].(type) {
	case string:
		if hasTitle {
			p.AlertTitle(title).AlertBody(alert)
		} else {
			p.Alert(alert)
		}
	case nil:
		if hasTitle {
			p.AlertTitle(title)
		}
	default:
		p.Alert(alert)
	}

	for key, value := range data {
		switch key {
		case "alert", "title":
		case "badge":
			if badge, ok := toInt(value); ok {
				p.Badge(badge)
			}
		case "sound":
			p.Sound(value)
		case "content-available":
			if isSet(value) {
				p.ContentAvailable()
			}
		case "mutable-content":
			if isSet(value) {
				p.MutableContent()
			}
		case "category":
			p.Category(fmt.Sprint(value))
		case "threadId", "thread-id":
			p.ThreadID(fmt.Sprint(value))
		default:
			p.Custom(key, value)
		}
	}
	return p
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	default:
		return 0, false
	}
}

func isSet(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "1" || b == "true"
	default:
		n, ok := toInt(v)
		return ok && n == 1
	}
}
