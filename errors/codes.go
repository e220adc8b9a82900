package errors

// ErrorCode identifies an application error category. Codes are stable and
// returned to clients, so existing values must not be renumbered.
type ErrorCode int

const (
	ErrorCode_HTTP_OK ErrorCode = 0

	// General
	ErrorCode_INTERNAL          ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT  ErrorCode = 1001
	ErrorCode_NOT_FOUND         ErrorCode = 1002
	ErrorCode_ALREADY_EXISTS    ErrorCode = 1003
	ErrorCode_PERMISSION_DENIED ErrorCode = 1004
	ErrorCode_UNAUTHENTICATED   ErrorCode = 1005
	ErrorCode_INVALID_PAYLOAD   ErrorCode = 1006
	ErrorCode_CONFLICT          ErrorCode = 1007

	// Authentication
	ErrorCode_AUTH_INVALID_TOKEN       ErrorCode = 2000
	ErrorCode_AUTH_TOKEN_EXPIRED       ErrorCode = 2001
	ErrorCode_AUTH_INVALID_CREDENTIALS ErrorCode = 2002
	ErrorCode_AUTH_USER_NOT_FOUND      ErrorCode = 2003
	ErrorCode_AUTH_USER_ALREADY_EXISTS ErrorCode = 2004
	ErrorCode_AUTH_INVALID_REFRESH     ErrorCode = 2005

	// Ingestion
	ErrorCode_CSV_PARSE_FAILED  ErrorCode = 3000
	ErrorCode_UPLOAD_TOO_LARGE  ErrorCode = 3001
	ErrorCode_UPLOAD_WRONG_TYPE ErrorCode = 3002

	// AI analysis
	ErrorCode_AI_ANALYSIS_FAILED     ErrorCode = 4000
	ErrorCode_AI_SERVICE_UNAVAILABLE ErrorCode = 4001
	ErrorCode_AI_QUOTA_EXCEEDED      ErrorCode = 4002

	// Report
	ErrorCode_REPORT_EXPORT_FAILED ErrorCode = 5000

	// Integrations
	ErrorCode_DB_QUERY_FAILED            ErrorCode = 6000
	ErrorCode_INTEGRATION_CACHE_FAILED   ErrorCode = 6001
	ErrorCode_INTEGRATION_STORAGE_FAILED ErrorCode = 6002
)

var codeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:                    "OK",
	ErrorCode_INTERNAL:                   "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:           "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                  "NOT_FOUND",
	ErrorCode_ALREADY_EXISTS:             "ALREADY_EXISTS",
	ErrorCode_PERMISSION_DENIED:          "PERMISSION_DENIED",
	ErrorCode_UNAUTHENTICATED:            "UNAUTHENTICATED",
	ErrorCode_INVALID_PAYLOAD:            "INVALID_PAYLOAD",
	ErrorCode_CONFLICT:                   "CONFLICT",
	ErrorCode_AUTH_INVALID_TOKEN:         "AUTH_INVALID_TOKEN",
	ErrorCode_AUTH_TOKEN_EXPIRED:         "AUTH_TOKEN_EXPIRED",
	ErrorCode_AUTH_INVALID_CREDENTIALS:   "AUTH_INVALID_CREDENTIALS",
	ErrorCode_AUTH_USER_NOT_FOUND:        "AUTH_USER_NOT_FOUND",
	ErrorCode_AUTH_USER_ALREADY_EXISTS:   "AUTH_USER_ALREADY_EXISTS",
	ErrorCode_AUTH_INVALID_REFRESH:       "AUTH_INVALID_REFRESH",
	ErrorCode_CSV_PARSE_FAILED:           "CSV_PARSE_FAILED",
	ErrorCode_UPLOAD_TOO_LARGE:           "UPLOAD_TOO_LARGE",
	ErrorCode_UPLOAD_WRONG_TYPE:          "UPLOAD_WRONG_TYPE",
	ErrorCode_AI_ANALYSIS_FAILED:         "AI_ANALYSIS_FAILED",
	ErrorCode_AI_SERVICE_UNAVAILABLE:     "AI_SERVICE_UNAVAILABLE",
	ErrorCode_AI_QUOTA_EXCEEDED:          "AI_QUOTA_EXCEEDED",
	ErrorCode_REPORT_EXPORT_FAILED:       "REPORT_EXPORT_FAILED",
	ErrorCode_DB_QUERY_FAILED:            "DB_QUERY_FAILED",
	ErrorCode_INTEGRATION_CACHE_FAILED:   "INTEGRATION_CACHE_FAILED",
	ErrorCode_INTEGRATION_STORAGE_FAILED: "INTEGRATION_STORAGE_FAILED",
}

// String returns the symbolic name for the code.
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
