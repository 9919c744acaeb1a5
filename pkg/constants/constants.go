package constants

type ContextKey string

const (
	PoolKey      ContextKey = "pool"
	TxKey        ContextKey = "tx"
	TenantIDKey  ContextKey = "tenantID"
	UserIDKey    ContextKey = "userID"
	LoggerKey    ContextKey = "logger"
	RequestIDKey ContextKey = "requestID"
	ParamsKey    ContextKey = "params"
)
