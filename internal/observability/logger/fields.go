package logger

import (
	"time"

	"go.uber.org/zap"
)

// Standard field constructors so call sites agree on key names.

// RequestID is the per-request correlation ID.
func RequestID(v string) zap.Field {
	return zap.String("request_id", v)
}

// Method is the HTTP method.
func Method(v string) zap.Field {
	return zap.String("method", v)
}

// Path is the request path.
func Path(v string) zap.Field {
	return zap.String("path", v)
}

// Status is the HTTP status code.
func Status(v int) zap.Field {
	return zap.Int("status", v)
}

// Duration is the request duration.
func Duration(v time.Duration) zap.Field {
	return zap.Duration("duration", v)
}

// Bytes is the response size in bytes.
func Bytes(v int) zap.Field {
	return zap.Int("bytes", v)
}

// DurationMs is the request duration in milliseconds.
func DurationMs(v int64) zap.Field {
	return zap.Int64("duration_ms", v)
}

// ClientIP is the remote client address.
func ClientIP(v string) zap.Field {
	return zap.String("client_ip", v)
}

// RegistrationID identifies a registration record.
func RegistrationID(v string) zap.Field {
	return zap.String("registration_id", v)
}

// Email is the destination address (use with care in prod).
func Email(v string) zap.Field {
	return zap.String("email", v)
}

// Component names the emitting component.
func Component(v string) zap.Field {
	return zap.String("component", v)
}

// Op names the current operation.
func Op(v string) zap.Field {
	return zap.String("op", v)
}

// Layer names the layer (controller, service, store).
func Layer(v string) zap.Field {
	return zap.String("layer", v)
}

// Err wraps an error field.
func Err(err error) zap.Field {
	return zap.Error(err)
}

// String is a generic string field.
func String(key, v string) zap.Field {
	return zap.String(key, v)
}

// Int is a generic int field.
func Int(key string, v int) zap.Field {
	return zap.Int(key, v)
}

// Any is a generic field for arbitrary values.
func Any(key string, v any) zap.Field {
	return zap.Any(key, v)
}
