package middleware

// Gin context keys populated by the middleware chain.
const (
	ClientIDCtx     = "client_id"
	ClientRoleCtx   = "client_role"
	ClientCenterCtx = "client_center"
	CSRFTokenCtx    = "csrf_token"
)
