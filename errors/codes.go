package errors

// ErrorCode is the stable numeric code carried in every error envelope.
type ErrorCode int32

const (
	ErrorCode_HTTP_OK ErrorCode = 200

	// General
	ErrorCode_INTERNAL          ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT  ErrorCode = 1001
	ErrorCode_NOT_FOUND         ErrorCode = 1002
	ErrorCode_ALREADY_EXISTS    ErrorCode = 1003
	ErrorCode_PERMISSION_DENIED ErrorCode = 1004
	ErrorCode_UNAUTHENTICATED   ErrorCode = 1005
	ErrorCode_FORBIDDEN         ErrorCode = 1006
	ErrorCode_INVALID_PAYLOAD   ErrorCode = 1007
	ErrorCode_VALIDATION_FAILED ErrorCode = 1008

	// Auth
	ErrorCode_AUTH_INVALID_TOKEN       ErrorCode = 2000
	ErrorCode_AUTH_TOKEN_EXPIRED       ErrorCode = 2001
	ErrorCode_AUTH_INVALID_CREDENTIALS ErrorCode = 2002
	ErrorCode_AUTH_USER_NOT_FOUND      ErrorCode = 2003
	ErrorCode_AUTH_USER_ALREADY_EXISTS ErrorCode = 2004
	ErrorCode_AUTH_OAUTH_FAILED        ErrorCode = 2005

	// Meetings
	ErrorCode_MEETING_NOT_FOUND          ErrorCode = 3000
	ErrorCode_MEETING_INVALID_TRANSITION ErrorCode = 3001
	ErrorCode_MEETING_UNSUPPORTED_FORMAT ErrorCode = 3002
	ErrorCode_MEETING_FILE_TOO_LARGE     ErrorCode = 3003

	// Tasks
	ErrorCode_TASK_NOT_FOUND          ErrorCode = 4000
	ErrorCode_TASK_INVALID_TRANSITION ErrorCode = 4001

	// Integrations and sync
	ErrorCode_INTEGRATION_NOT_FOUND ErrorCode = 5000
	ErrorCode_INTEGRATION_INACTIVE  ErrorCode = 5001
	ErrorCode_SYNC_ALREADY_SYNCED   ErrorCode = 5002
	ErrorCode_SYNC_TARGET_REQUIRED  ErrorCode = 5003
	ErrorCode_SYNC_IN_PROGRESS      ErrorCode = 5004
	ErrorCode_SYNC_FAILED           ErrorCode = 5005
	ErrorCode_UPSTREAM_TIMEOUT      ErrorCode = 5006

	// Infrastructure
	ErrorCode_INTEGRATION_STORAGE_FAILED      ErrorCode = 6000
	ErrorCode_INTEGRATION_CACHE_FAILED        ErrorCode = 6001
	ErrorCode_INTEGRATION_EXTERNAL_API_FAILED ErrorCode = 6002
	ErrorCode_DB_QUERY_FAILED                 ErrorCode = 6003
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:                         "HTTP_OK",
	ErrorCode_INTERNAL:                        "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:                "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                       "NOT_FOUND",
	ErrorCode_ALREADY_EXISTS:                  "ALREADY_EXISTS",
	ErrorCode_PERMISSION_DENIED:               "PERMISSION_DENIED",
	ErrorCode_UNAUTHENTICATED:                 "UNAUTHENTICATED",
	ErrorCode_FORBIDDEN:                       "FORBIDDEN",
	ErrorCode_INVALID_PAYLOAD:                 "INVALID_PAYLOAD",
	ErrorCode_VALIDATION_FAILED:               "VALIDATION_FAILED",
	ErrorCode_AUTH_INVALID_TOKEN:              "AUTH_INVALID_TOKEN",
	ErrorCode_AUTH_TOKEN_EXPIRED:              "AUTH_TOKEN_EXPIRED",
	ErrorCode_AUTH_INVALID_CREDENTIALS:        "AUTH_INVALID_CREDENTIALS",
	ErrorCode_AUTH_USER_NOT_FOUND:             "AUTH_USER_NOT_FOUND",
	ErrorCode_AUTH_USER_ALREADY_EXISTS:        "AUTH_USER_ALREADY_EXISTS",
	ErrorCode_AUTH_OAUTH_FAILED:               "AUTH_OAUTH_FAILED",
	ErrorCode_MEETING_NOT_FOUND:               "MEETING_NOT_FOUND",
	ErrorCode_MEETING_INVALID_TRANSITION:      "MEETING_INVALID_TRANSITION",
	ErrorCode_MEETING_UNSUPPORTED_FORMAT:      "MEETING_UNSUPPORTED_FORMAT",
	ErrorCode_MEETING_FILE_TOO_LARGE:          "MEETING_FILE_TOO_LARGE",
	ErrorCode_TASK_NOT_FOUND:                  "TASK_NOT_FOUND",
	ErrorCode_TASK_INVALID_TRANSITION:         "TASK_INVALID_TRANSITION",
	ErrorCode_INTEGRATION_NOT_FOUND:           "INTEGRATION_NOT_FOUND",
	ErrorCode_INTEGRATION_INACTIVE:            "INTEGRATION_INACTIVE",
	ErrorCode_SYNC_ALREADY_SYNCED:             "SYNC_ALREADY_SYNCED",
	ErrorCode_SYNC_TARGET_REQUIRED:            "SYNC_TARGET_REQUIRED",
	ErrorCode_SYNC_IN_PROGRESS:                "SYNC_IN_PROGRESS",
	ErrorCode_SYNC_FAILED:                     "SYNC_FAILED",
	ErrorCode_UPSTREAM_TIMEOUT:                "UPSTREAM_TIMEOUT",
	ErrorCode_INTEGRATION_STORAGE_FAILED:      "INTEGRATION_STORAGE_FAILED",
	ErrorCode_INTEGRATION_CACHE_FAILED:        "INTEGRATION_CACHE_FAILED",
	ErrorCode_INTEGRATION_EXTERNAL_API_FAILED: "INTEGRATION_EXTERNAL_API_FAILED",
	ErrorCode_DB_QUERY_FAILED:                 "DB_QUERY_FAILED",
}

// String returns the symbolic name of the code.
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
