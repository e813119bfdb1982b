package web

import "net/http"

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type methodNotAllowedResponse struct {
	Error errorBody `json:"error"`
	Allow []string  `json:"allow"`
}

// writeError формирует стандартный JSON с кодом и сообщением об ошибке.
func writeError(w http.ResponseWriter, status int, code, message string) {
	resp := errorResponse{
		Error: errorBody{
			Code:    code,
			Message: message,
		},
	}
	writeJSON(w, status, resp)
}

// writeMethodNotAllowed отвечает 405 с заголовком Allow и перечнем
// разрешённых методов в теле. Неподдерживаемый метод — штатный исход, не сбой.
func writeMethodNotAllowed(w http.ResponseWriter, allowed ...string) {
	for _, m := range allowed {
		w.Header().Add("Allow", m)
	}
	resp := methodNotAllowedResponse{
		Error: errorBody{
			Code:    "METHOD_NOT_ALLOWED",
			Message: "method not allowed",
		},
		Allow: allowed,
	}
	writeJSON(w, http.StatusMethodNotAllowed, resp)
}

// Возможные значения кода ошибки.
const (
	METHODNOTALLOWED     ErrorResponseErrorCode = "METHOD_NOT_ALLOWED"
	PROJECTCONFIGMISSING ErrorResponseErrorCode = "PROJECT_CONFIG_MISSING"
	NOTFOUND             ErrorResponseErrorCode = "NOT_FOUND"
)

// ErrorResponseErrorCode описывает код ошибки в ответе.
type ErrorResponseErrorCode string
