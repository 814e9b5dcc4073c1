package publishers

// Logger defines the logging surface publishers rely on.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) InfoObj(string, string, interface{})  {}
func (noopLogger) DebugObj(string, string, interface{}) {}
func (noopLogger) WarnObj(string, string, interface{})  {}
func (noopLogger) ErrorObj(string, string, interface{}) {}

// deliveryLog writes per-sink delivery outcomes under publisher_<type>_* keys,
// always tagged with the publisher id.
type deliveryLog struct {
	log Logger
	id  string
	typ string
}

func newDeliveryLog(log Logger, id, typ string) deliveryLog {
	if log == nil {
		log = noopLogger{}
	}
	return deliveryLog{log: log, id: id, typ: typ}
}

func (d deliveryLog) delivered(fields map[string]any) {
	d.log.DebugObj(d.typ+" publisher delivered event", "publisher_"+d.typ+"_delivery", d.with(fields))
}

func (d deliveryLog) failed(err error) {
	d.log.ErrorObj(d.typ+" publisher send failed", "publisher_"+d.typ+"_error", d.with(map[string]any{
		"error": err.Error(),
	}))
}

func (d deliveryLog) with(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["publisher_id"] = d.id
	return out
}
