package publishers

import (
	"errors"
	"testing"
)

type recordingLogger struct {
	noopLogger
	keys []string
	objs []map[string]any
}

func (r *recordingLogger) DebugObj(_, key string, obj interface{}) { r.record(key, obj) }
func (r *recordingLogger) ErrorObj(_, key string, obj interface{}) { r.record(key, obj) }

func (r *recordingLogger) record(key string, obj interface{}) {
	r.keys = append(r.keys, key)
	r.objs = append(r.objs, obj.(map[string]any))
}

func TestDeliveryLogTagsPublisherID(t *testing.T) {
	rec := &recordingLogger{}
	dl := newDeliveryLog(rec, "crm", TypeHTTP)

	dl.delivered(map[string]any{"status": 202})
	dl.failed(errors.New("boom"))

	if len(rec.keys) != 2 || rec.keys[0] != "publisher_http_delivery" || rec.keys[1] != "publisher_http_error" {
		t.Fatalf("unexpected keys %v", rec.keys)
	}
	for _, obj := range rec.objs {
		if obj["publisher_id"] != "crm" {
			t.Fatalf("missing publisher id in %v", obj)
		}
	}
	if rec.objs[0]["status"] != 202 || rec.objs[1]["error"] != "boom" {
		t.Fatalf("unexpected fields %v", rec.objs)
	}
}

func TestDeliveryLogNilLogger(t *testing.T) {
	dl := newDeliveryLog(nil, "x", TypeSQS)
	dl.delivered(nil)
	dl.failed(errors.New("ignored"))
}
