package utils

// ResponseData is the envelope returned by every REST handler.
type ResponseData struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Results any    `json:"results,omitempty"`
}

// PanicIfNeeded panics on error so the recovery middleware can translate
// typed errors into HTTP responses.
func PanicIfNeeded(err any) {
	if err != nil {
		panic(err)
	}
}
