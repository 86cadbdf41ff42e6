package logger

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dropDatabas3/gatekeeper/internal/util"
)

// HTTP fields.

func RequestID(v string) zap.Field {
	return zap.String("request_id", v)
}

func Method(v string) zap.Field {
	return zap.String("method", v)
}

func Path(v string) zap.Field {
	return zap.String("path", v)
}

func Status(v int) zap.Field {
	return zap.Int("status", v)
}

func DurationMs(v int64) zap.Field {
	return zap.Int64("duration_ms", v)
}

func Bytes(v int) zap.Field {
	return zap.Int("bytes", v)
}

func Duration(v time.Duration) zap.Field {
	return zap.Duration("duration", v)
}

// Domain fields.

func UserID(v uuid.UUID) zap.Field {
	return zap.String("user_id", v.String())
}

func GroupID(v uuid.UUID) zap.Field {
	return zap.String("group_id", v.String())
}

func ResourceID(v uuid.UUID) zap.Field {
	return zap.String("resource_id", v.String())
}

func RoleID(v uuid.UUID) zap.Field {
	return zap.String("role_id", v.String())
}

func RoleName(v string) zap.Field {
	return zap.String("role_name", v)
}

func Privilege(v string) zap.Field {
	return zap.String("privilege", v)
}

func ClientID(v uuid.UUID) zap.Field {
	return zap.String("client_id", v.String())
}

func TokenID(v uuid.UUID) zap.Field {
	return zap.String("token_id", v.String())
}

func Category(v string) zap.Field {
	return zap.String("category", v)
}

// Email masks the address before it reaches the logs.
func Email(v string) zap.Field {
	return zap.String("email", util.MaskEmail(v))
}

// System fields.

func Component(v string) zap.Field {
	return zap.String("component", v)
}

func Op(v string) zap.Field {
	return zap.String("op", v)
}

func Layer(v string) zap.Field {
	return zap.String("layer", v)
}

func Err(err error) zap.Field {
	return zap.Error(err)
}

func Count(v int) zap.Field {
	return zap.Int("count", v)
}

func String(key, v string) zap.Field {
	return zap.String(key, v)
}

func Bool(key string, v bool) zap.Field {
	return zap.Bool(key, v)
}
