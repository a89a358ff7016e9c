package echoapi

import (
	"github.com/trezcool/kazi/core"
)

type (
	// Response is the envelope of every successful response.
	Response struct {
		Success    bool             `json:"success"`
		Data       interface{}      `json:"data,omitempty"`
		Message    string           `json:"message,omitempty"`
		Pagination *core.Pagination `json:"pagination,omitempty"`
		Metadata   interface{}      `json:"metadata,omitempty"`
	}

	FieldDetail struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	}

	// ErrorResponse is the envelope of every failed response.
	ErrorResponse struct {
		Success bool          `json:"success"`
		Error   string        `json:"error"`
		Message string        `json:"message,omitempty"`
		Details []FieldDetail `json:"details,omitempty"`
	}
)

func ok(data interface{}, message ...string) Response {
	resp := Response{Success: true, Data: data}
	if len(message) > 0 {
		resp.Message = message[0]
	}
	return resp
}

func details(flds []core.FieldError) []FieldDetail {
	dtls := make([]FieldDetail, 0, len(flds))
	for _, fld := range flds {
		dtls = append(dtls, FieldDetail{Field: fld.Field, Message: fld.Error})
	}
	return dtls
}
