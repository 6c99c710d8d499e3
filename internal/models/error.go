package models

// APIError represents a standardized error response for the API
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error code constants
const (
	// General errors
	ErrBadRequest       = "BAD_REQUEST"
	ErrUnauthorized     = "UNAUTHORIZED"
	ErrForbidden        = "FORBIDDEN"
	ErrNotFound         = "NOT_FOUND"
	ErrConflict         = "CONFLICT"
	ErrInternalServer   = "INTERNAL_SERVER_ERROR"
	ErrValidationFailed = "VALIDATION_FAILED"
	ErrTooManyRequests  = "TOO_MANY_REQUESTS"

	// Menu errors
	ErrCategoryNotFound      = "CATEGORY_NOT_FOUND"
	ErrCategoryDuplicateName = "CATEGORY_DUPLICATE_NAME"
	ErrCategoryHasDishes     = "CATEGORY_HAS_DISHES"
	ErrDishNotFound          = "DISH_NOT_FOUND"
	ErrDishUnavailable       = "DISH_UNAVAILABLE"
	ErrDishInUse             = "DISH_IN_USE"

	// Table errors
	ErrTableNotFound        = "TABLE_NOT_FOUND"
	ErrTableDuplicateNumber = "TABLE_DUPLICATE_NUMBER"
	ErrTableOccupied        = "TABLE_OCCUPIED"
	ErrTableHasOpenOrder    = "TABLE_HAS_OPEN_ORDER"
	ErrTableNotOccupied     = "TABLE_NOT_OCCUPIED"

	// Order errors
	ErrOrderNotFound        = "ORDER_NOT_FOUND"
	ErrOrderClosed          = "ORDER_CLOSED"
	ErrOrderInvalidStatus   = "ORDER_INVALID_STATUS"
	ErrOrderLineNotFound    = "ORDER_LINE_NOT_FOUND"
	ErrOrderMissingTable    = "ORDER_MISSING_TABLE"
	ErrOrderMissingDishes   = "ORDER_MISSING_DISHES"
	ErrOrderInvalidQuantity = "ORDER_INVALID_QUANTITY"
	ErrOrderCreationFailed  = "ORDER_CREATION_FAILED"

	// Employee errors
	ErrEmployeeNotFound    = "EMPLOYEE_NOT_FOUND"
	ErrEmployeeDuplicate   = "EMPLOYEE_DUPLICATE_USERNAME"
	ErrEmployeeInvalidRole = "EMPLOYEE_INVALID_ROLE"
	ErrInvalidCredentials  = "INVALID_CREDENTIALS"

	// OAuth/Auth errors (maintain RFC 6749 compatibility)
	ErrInvalidRequest       = "invalid_request"
	ErrInvalidClient        = "invalid_client"
	ErrInvalidGrant         = "invalid_grant"
	ErrUnauthorizedClient   = "unauthorized_client"
	ErrUnsupportedGrantType = "unsupported_grant_type"
	ErrInvalidScope         = "invalid_scope"
)

// NewAPIError creates a new API error with the given code and message
func NewAPIError(code, message string, details ...map[string]interface{}) APIError {
	err := APIError{
		Code:    code,
		Message: message,
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

// OAuth2Error represents an OAuth2 error response (RFC 6749)
type OAuth2Error struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	ErrorURI         string `json:"error_uri,omitempty"`
}

// NewOAuth2Error creates a new OAuth2 error response
func NewOAuth2Error(error, description string) OAuth2Error {
	return OAuth2Error{
		Error:            error,
		ErrorDescription: description,
	}
}
