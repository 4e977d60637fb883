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
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthLogoutSuccess      = "auth.logout_success"

	// Products
	KeyProductCreated   = "product.created"
	KeyProductUpdated   = "product.updated"
	KeyProductDeleted   = "product.deleted"
	KeyProductNotFound  = "product.not_found"
	KeyProductNoVariant = "product.no_variant"

	// Cart
	KeyCartNotFound     = "cart.not_found"
	KeyCartEmpty        = "cart.empty"
	KeyCartItemAdded    = "cart.item_added"
	KeyCartItemRemoved  = "cart.item_removed"
	KeyCartCleared      = "cart.cleared"
	KeyCartBadVariant   = "cart.bad_variant"

	// Checkout
	KeyCheckoutInProgress   = "checkout.in_progress"
	KeyCheckoutSubmitted    = "checkout.submitted"
	KeyCheckoutInvalidForm  = "checkout.invalid_form"
	KeyCheckoutCartChanged  = "checkout.cart_changed"

	// Payments
	KeyPaymentSuccess       = "payment.success"
	KeyPaymentFailed        = "payment.failed"
	KeyPaymentLinkFailed    = "payment.link_failed"
	KeyPaymentInvalidAmount = "payment.invalid_amount"

	// Orders
	KeyOrderNotFound   = "order.not_found"
	KeyOrderMarkedPaid = "order.marked_paid"

	// Admin
	KeyAdminActionSuccess = "admin.action_success"
	KeyAdminAccessDenied  = "admin.access_denied"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"
	KeyValidationEmail    = "validation.invalid_email"
	KeyValidationPhone    = "validation.invalid_phone"

	// File Upload
	KeyFileUploadSuccess = "file.upload_success"
	KeyFileUploadFailed  = "file.upload_failed"
	KeyFileInvalidType   = "file.invalid_type"
	KeyFileTooLarge      = "file.too_large"

	// Notifications
	KeyNotificationSent   = "notification.sent"
	KeyNotificationFailed = "notification.failed"
)
