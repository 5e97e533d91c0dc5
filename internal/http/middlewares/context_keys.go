package middlewares

const (
	CtxRequestID = "request_id"
	// principal stashed by the auth middleware
	ctxPrincipalKey = "auth.principal"
)
