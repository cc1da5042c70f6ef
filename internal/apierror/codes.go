package apierror

// Error type URIs following the urn:killsub:error:* pattern.
// These are used as the "type" field in RFC 9457 Problem Details.
const (
	// TypeValidation indicates request validation failed (400)
	TypeValidation = "urn:killsub:error:validation"

	// TypeBadRequest indicates a malformed or invalid request (400)
	TypeBadRequest = "urn:killsub:error:bad_request"

	// TypeUnauthorized indicates missing or invalid authentication (401)
	TypeUnauthorized = "urn:killsub:error:unauthorized"

	// TypeForbidden indicates insufficient permissions (403)
	TypeForbidden = "urn:killsub:error:forbidden"

	// TypePlanRestricted indicates the user's plan does not include the
	// requested feature (403, upgrade_required set)
	TypePlanRestricted = "urn:killsub:error:plan_restricted"

	// TypeNotFound indicates the requested resource was not found (404)
	TypeNotFound = "urn:killsub:error:not_found"

	// TypeQuotaExceeded indicates a plan limit has been reached (429)
	TypeQuotaExceeded = "urn:killsub:error:quota_exceeded"

	// TypeRateLimit indicates too many requests (429)
	TypeRateLimit = "urn:killsub:error:rate_limit"

	// TypeInternal indicates an unexpected server error (500)
	TypeInternal = "urn:killsub:error:internal"
)

// Titles for each error type - human-readable summaries
const (
	TitleValidation     = "Validation Error"
	TitleBadRequest     = "Bad Request"
	TitleUnauthorized   = "Authentication Required"
	TitleForbidden      = "Permission Denied"
	TitlePlanRestricted = "Plan Upgrade Required"
	TitleNotFound       = "Resource Not Found"
	TitleQuotaExceeded  = "Plan Limit Reached"
	TitleRateLimit      = "Rate Limit Exceeded"
	TitleInternal       = "Internal Server Error"
)
