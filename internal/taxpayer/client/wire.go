package client

import (
	"encoding/json"
	"strconv"
	"strings"

	"fiscalid/internal/taxpayer/models"
)

// Registry result codes.
const (
	statusSuccess   = "200"
	statusMalformed = "A400"
	codeFound       = "0680"
	codeNotFound    = "0640"
	msgNotEnrolled  = "CONTRIBUYENTE NO INSCRITO"
)

// formatHints mark a schema or pattern failure inside an A400 message.
var formatHints = []string{
	"Pattern constraint failed",
	"invalid according to its datatype",
	"element is invalid",
	"Fallo de schema XML",
}

type lookupRequest struct {
	Number      string `json:"dRuc"`
	Kind        string `json:"dTipoRuc"`
	CompanyCode string `json:"gCompanyCode"`
}

type envelope struct {
	Status *struct {
		Code    string          `json:"Code"`
		Message json.RawMessage `json:"Message"`
	} `json:"Status"`
	Data   []dataItem      `json:"Data"`
	Errors json.RawMessage `json:"errors"`
}

type dataItem struct {
	Result *struct {
		CheckDigit string `json:"dDV"`
		Name       string `json:"dNomb"`
		Proc       struct {
			Code    string `json:"dCodRes"`
			Message string `json:"dMsgRes"`
		} `json:"gResProc"`
	} `json:"gResRucDV"`
}

// statusMessage reads Status.Message, which is either an object carrying
// dMsgRes/dCodRes or a bare string.
func statusMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var obj struct {
		Msg  string `json:"dMsgRes"`
		Code string `json:"dCodRes"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		if obj.Msg != "" {
			return obj.Msg
		}
		return obj.Code
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

func hasFormatHint(msg string) bool {
	for _, h := range formatHints {
		if strings.Contains(msg, h) {
			return true
		}
	}
	return false
}

func present(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s != "" && s != "null"
}

// interpret maps an HTTP status and body onto a LookupResult. transportFault
// is true when the registry itself misbehaved and the breaker should count it.
func interpret(httpStatus int, body []byte, number string) (result models.LookupResult, transportFault bool) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return models.LookupResult{Outcome: models.TransientFailure, Detail: "unparseable response"}, true
	}

	if env.Status != nil && env.Status.Code == statusMalformed {
		msg := statusMessage(env.Status.Message)
		return models.LookupResult{
			Outcome:         models.MalformedInput,
			FormatViolation: hasFormatHint(msg),
			Detail:          msg,
		}, false
	}

	if httpStatus < 200 || httpStatus > 299 {
		return models.LookupResult{Outcome: models.TransientFailure, Detail: "http status " + strconv.Itoa(httpStatus)}, true
	}

	if env.Status != nil && env.Status.Code == statusSuccess && len(env.Data) > 0 && env.Data[0].Result != nil {
		res := env.Data[0].Result
		switch {
		case res.Proc.Code == codeFound && res.CheckDigit != "" && res.Name != "":
			return models.LookupResult{
				Outcome:    models.Verified,
				CheckDigit: strings.TrimSpace(res.CheckDigit),
				LegalName:  strings.TrimSpace(res.Name),
			}, false
		case res.Proc.Code == codeNotFound, strings.EqualFold(strings.TrimSpace(res.Proc.Message), msgNotEnrolled):
			return models.LookupResult{
				Outcome:          models.NotRegistered,
				MissingSeparator: !strings.Contains(number, "-"),
				Detail:           res.Proc.Message,
			}, false
		default:
			return models.LookupResult{Outcome: models.TransientFailure, Detail: res.Proc.Code + " " + res.Proc.Message}, false
		}
	}

	if present(env.Errors) {
		return models.LookupResult{Outcome: models.MalformedInput, Detail: "registry rejected request data"}, false
	}
	return models.LookupResult{Outcome: models.TransientFailure, Detail: "unrecognized envelope"}, false
}
