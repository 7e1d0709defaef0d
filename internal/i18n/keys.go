// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserNotFound       = "auth.user_not_found"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthRegisterSuccess    = "auth.register_success"
	KeyAuthAccessDenied       = "auth.access_denied"

	// Commodities
	KeyCommodityCreated     = "commodity.created"
	KeyCommodityUpdated     = "commodity.updated"
	KeyCommodityDeactivated = "commodity.deactivated"
	KeyCommodityNotFound    = "commodity.not_found"

	// Prices
	KeyPriceNotFound      = "price.not_found"
	KeyPriceNoCurrent     = "price.no_current"
	KeyPriceSyncStarted   = "price.sync_started"
	KeyPriceSyncRunning   = "price.sync_running"
	KeyPriceSyncFailed    = "price.sync_failed"
	KeyPriceUpstreamDown  = "price.upstream_unavailable"
	KeyPriceInvalidWindow = "price.invalid_window"

	// Overrides
	KeyOverrideCreated          = "override.created"
	KeyOverridePending          = "override.pending"
	KeyOverrideApproved         = "override.approved"
	KeyOverrideRejected         = "override.rejected"
	KeyOverrideDeleted          = "override.deleted"
	KeyOverrideNotFound         = "override.not_found"
	KeyOverrideAlreadyProcessed = "override.already_processed"
	KeyOverrideInvalidDecision  = "override.invalid_decision"

	// Market reports
	KeyReportCreated  = "report.created"
	KeyReportUpdated  = "report.updated"
	KeyReportDeleted  = "report.deleted"
	KeyReportNotFound = "report.not_found"
	KeyReportVerified = "report.verified"

	// Import
	KeyImportCompleted  = "import.completed"
	KeyImportBadHeader  = "import.bad_header"
	KeyImportFileNeeded = "import.file_required"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"
	KeyValidationTooShort = "validation.too_short"
	KeyValidationTooLong  = "validation.too_long"

	// File Upload
	KeyFileUploadSuccess = "file.upload_success"
	KeyFileUploadFailed  = "file.upload_failed"
	KeyFileInvalidType   = "file.invalid_type"
	KeyFileTooLarge      = "file.too_large"

	// Rate limiting
	KeyRateLimited = "rate.limited"
)
