package orders

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

// FlexTime normalizes the two timestamp encodings found in order and
// chat documents: BSON datetimes and ISO-8601 strings. Some legacy
// write paths stored strings; everything written by this service is a
// datetime. The ambiguity stops here and never reaches the tracker or
// chat ordering.
type FlexTime struct {
	time.Time
}

func Now() FlexTime { return FlexTime{time.Now().UTC()} }

func (t FlexTime) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(t.Time.UTC())
}

func (t *FlexTime) UnmarshalBSONValue(bt bsontype.Type, data []byte) error {
	raw := bsoncore.Value{Type: bt, Data: data}
	switch bt {
	case bson.TypeDateTime:
		t.Time = raw.Time().UTC()
		return nil
	case bson.TypeString:
		s, ok := raw.StringValueOK()
		if !ok {
			return fmt.Errorf("flextime: malformed string value")
		}
		parsed, err := parseISO(s)
		if err != nil {
			return err
		}
		t.Time = parsed.UTC()
		return nil
	case bson.TypeNull:
		t.Time = time.Time{}
		return nil
	default:
		return fmt.Errorf("flextime: cannot decode %s", bt)
	}
}

func parseISO(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999Z0700", "2006-01-02 15:04:05"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("flextime: unparseable timestamp %q", s)
}
