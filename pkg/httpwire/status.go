package httpwire

import "strconv"

// statusPhrases is the IANA status-code table the engine recognizes (spec
// §3: "status (integer code + canonical phrase from the IANA table, ≈60
// values)"). ParseStatus rejects a code outside this table; StatusPhrase
// falls back to "Unknown Status" for one.
var statusPhrases = map[int]string{
	100: "Continue",
	101: "Switching Protocols",
	102: "Processing",
	103: "Early Hints",
	200: "OK",
	201: "Created",
	202: "Accepted",
	203: "Non-Authoritative Information",
	204: "No Content",
	205: "Reset Content",
	206: "Partial Content",
	207: "Multi-Status",
	208: "Already Reported",
	226: "IM Used",
	300: "Multiple Choices",
	301: "Moved Permanently",
	302: "Found",
	303: "See Other",
	304: "Not Modified",
	305: "Use Proxy",
	307: "Temporary Redirect",
	308: "Permanent Redirect",
	400: "Bad Request",
	401: "Unauthorized",
	402: "Payment Required",
	403: "Forbidden",
	404: "Not Found",
	405: "Method Not Allowed",
	406: "Not Acceptable",
	407: "Proxy Authentication Required",
	408: "Request Timeout",
	409: "Conflict",
	410: "Gone",
	411: "Length Required",
	412: "Precondition Failed",
	413: "Payload Too Large",
	414: "URI Too Long",
	415: "Unsupported Media Type",
	416: "Range Not Satisfiable",
	417: "Expectation Failed",
	418: "I'm a Teapot",
	421: "Misdirected Request",
	422: "Unprocessable Entity",
	423: "Locked",
	424: "Failed Dependency",
	425: "Too Early",
	426: "Upgrade Required",
	428: "Precondition Required",
	429: "Too Many Requests",
	431: "Request Header Fields Too Large",
	451: "Unavailable For Legal Reasons",
	500: "Internal Server Error",
	501: "Not Implemented",
	502: "Bad Gateway",
	503: "Service Unavailable",
	504: "Gateway Timeout",
	505: "HTTP Version Not Supported",
	506: "Variant Also Negotiates",
	507: "Insufficient Storage",
	508: "Loop Detected",
	510: "Not Extended",
	511: "Network Authentication Required",
}

// StatusPhrase returns the canonical reason phrase for code, or a fallback
// for codes outside the known table.
func StatusPhrase(code int) string {
	if p, ok := statusPhrases[code]; ok {
		return p
	}
	return "Unknown Status"
}

// ParseStatus parses the CODE token of a response preamble (spec §4.1:
// "Code is parsed as uint16 and validated against the known status set").
// A code that is not in the status table is a ParseError.
func ParseStatus(token string) (int, error) {
	code, err := strconv.ParseUint(token, 10, 16)
	if err != nil || code < 100 || code > 999 {
		return 0, &ParseError{Reason: "invalid status code " + strconv.Quote(token)}
	}
	if _, ok := statusPhrases[int(code)]; !ok {
		return 0, &ParseError{Reason: "unknown status code " + strconv.Quote(token)}
	}
	return int(code), nil
}
