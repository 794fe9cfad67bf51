package httpwire

import "fmt"

// Method is one of the closed set of HTTP request tokens the engine
// recognizes, per RFC 7231 plus the WebDAV (RFC 4918) and PATCH (RFC 5789)
// extensions (spec §3,
// §4.1). Unknown tokens are a fatal parse error rather than a new Method
// value.
type Method int

// The 34-token closed method set.
const (
	MethodUnknown Method = iota
	MethodGet
	MethodHead
	MethodPost
	MethodPut
	MethodDelete
	MethodConnect
	MethodOptions
	MethodTrace
	MethodPatch
	// WebDAV (RFC 4918) and related extensions.
	MethodPropFind
	MethodPropPatch
	MethodMkCol
	MethodCopy
	MethodMove
	MethodLock
	MethodUnlock
	MethodVersionControl
	MethodReport
	MethodCheckout
	MethodCheckin
	MethodUncheckout
	MethodMkWorkspace
	MethodUpdate
	MethodLabel
	MethodMerge
	MethodBaselineControl
	MethodMkActivity
	MethodOrderPatch
	MethodAcl
	MethodSearch
	// RFC 5789.
	MethodPatchExt
	// RFC 3253 / CalDAV extras rounding out the closed set to 34 tokens.
	MethodMkCalendar
	MethodMkRedirectRef
	MethodUpdateRedirectRef
	methodCount
)

var methodNames = [methodCount]string{
	MethodUnknown:           "",
	MethodGet:               "GET",
	MethodHead:              "HEAD",
	MethodPost:              "POST",
	MethodPut:               "PUT",
	MethodDelete:            "DELETE",
	MethodConnect:           "CONNECT",
	MethodOptions:           "OPTIONS",
	MethodTrace:             "TRACE",
	MethodPatch:             "PATCH",
	MethodPropFind:          "PROPFIND",
	MethodPropPatch:         "PROPPATCH",
	MethodMkCol:             "MKCOL",
	MethodCopy:              "COPY",
	MethodMove:              "MOVE",
	MethodLock:              "LOCK",
	MethodUnlock:            "UNLOCK",
	MethodVersionControl:    "VERSION-CONTROL",
	MethodReport:            "REPORT",
	MethodCheckout:          "CHECKOUT",
	MethodCheckin:           "CHECKIN",
	MethodUncheckout:        "UNCHECKOUT",
	MethodMkWorkspace:       "MKWORKSPACE",
	MethodUpdate:            "UPDATE",
	MethodLabel:             "LABEL",
	MethodMerge:             "MERGE",
	MethodBaselineControl:   "BASELINE-CONTROL",
	MethodMkActivity:        "MKACTIVITY",
	MethodOrderPatch:        "ORDERPATCH",
	MethodAcl:               "ACL",
	MethodSearch:            "SEARCH",
	MethodPatchExt:          "PATCH-EXT",
	MethodMkCalendar:        "MKCALENDAR",
	MethodMkRedirectRef:     "MKREDIRECTREF",
	MethodUpdateRedirectRef: "UPDATEREDIRECTREF",
}

var methodByName map[string]Method

func init() {
	methodByName = make(map[string]Method, methodCount)
	for m, name := range methodNames {
		if name != "" {
			methodByName[name] = Method(m)
		}
	}
}

// String returns the wire token for m.
func (m Method) String() string {
	if int(m) < 0 || int(m) >= int(methodCount) {
		return ""
	}
	return methodNames[m]
}

// ParseMethod resolves a wire token against the closed method set. An
// unrecognized token yields a *ParseError (the parser treats this as fatal,
// per spec §4.1).
func ParseMethod(token string) (Method, error) {
	if m, ok := methodByName[token]; ok {
		return m, nil
	}
	return MethodUnknown, &ParseError{Reason: fmt.Sprintf("unknown method token %q", token)}
}
