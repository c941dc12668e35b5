package assist

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rbrowning13/IMC-CMS-sub001/internal/domain"
)

// Keys accepted as the embedded context object, checked in order.
var contextContainerKeys = []string{"page_data", "context", "pageContext", "page_context"}

// Top-level keys promoted into the context when the context itself does not
// already carry them.
var promotedKeys = []string{
	domain.KeyClaimID,
	domain.KeyInvoiceID,
	domain.KeyReportID,
	domain.KeyCarrierID,
	domain.KeyEmployerID,
	domain.KeyProviderID,
	domain.KeyActiveTab,
	domain.KeyPath,
	domain.KeyURL,
	domain.KeyContextScope,
	domain.KeyThreadState,
}

var idKeys = map[string]bool{
	domain.KeyClaimID:    true,
	domain.KeyInvoiceID:  true,
	domain.KeyReportID:   true,
	domain.KeyCarrierID:  true,
	domain.KeyEmployerID: true,
	domain.KeyProviderID: true,
}

// NormalizeContext turns an arbitrary client payload into a canonical
// context. It is pure and total: malformed input never fails, identifier
// keys normalize to int64, and context_scope never holds a numeric value.
// Keys the normalizer does not recognize pass through unchanged.
func NormalizeContext(raw map[string]any) domain.Context {
	out := domain.Context{}
	if raw == nil {
		out[domain.KeyContextScope] = string(domain.ContextSystem)
		return out
	}

	// 1. Start from the embedded context object, if any.
	embedded := extractEmbedded(raw)
	for k, v := range embedded {
		if k == "scope" {
			continue // resolved below
		}
		setNormalized(out, k, v)
	}

	// 2. Promote top-level identifier-like keys not already present.
	for _, k := range promotedKeys {
		if _, exists := out[k]; exists {
			continue
		}
		if v, ok := raw[k]; ok {
			setNormalized(out, k, v)
		}
	}

	// 3. A top-level string "context" acts as a scope label when none is set.
	if _, hasScope := out[domain.KeyContextScope]; !hasScope {
		if s, ok := raw["context"].(string); ok && s != "" {
			out[domain.KeyContextScope] = s
		}
	}

	// 4. Resolve the overloaded "scope" field, top level first.
	resolveScope(out, raw["scope"])
	resolveScope(out, embedded["scope"])

	// 5. A numeric context_scope is always a misfiled claim id.
	if v, ok := out[domain.KeyContextScope]; ok {
		if n, numeric := asInt64(v); numeric {
			if _, has := out[domain.KeyClaimID]; !has {
				out[domain.KeyClaimID] = n
			}
			delete(out, domain.KeyContextScope)
		}
	}

	// 6. Infer a scope when none survived.
	if _, ok := out.Scope(); !ok {
		switch {
		case hasKey(out, domain.KeyClaimID) || hasKey(out, domain.KeyReportID):
			out[domain.KeyContextScope] = string(domain.ContextClaim)
		case hasKey(out, domain.KeyInvoiceID):
			out[domain.KeyContextScope] = string(domain.ContextInvoice)
		default:
			out[domain.KeyContextScope] = string(domain.ContextSystem)
		}
	}

	// Unrecognized top-level keys pass through for downstream consumers.
	for k, v := range raw {
		if isReservedTopLevel(k) {
			continue
		}
		if _, exists := out[k]; !exists {
			out[k] = v
		}
	}

	return out
}

func extractEmbedded(raw map[string]any) map[string]any {
	for _, key := range contextContainerKeys {
		if m, ok := raw[key].(map[string]any); ok {
			return m
		}
	}
	return map[string]any{}
}

// resolveScope classifies one "scope" value: numeric values are claim ids,
// non-numeric labels are context_scope candidates. Existing fields win.
func resolveScope(out domain.Context, v any) {
	if v == nil {
		return
	}
	if n, ok := asInt64(v); ok {
		if _, has := out[domain.KeyClaimID]; !has {
			out[domain.KeyClaimID] = n
		}
		return
	}
	if s, ok := v.(string); ok && s != "" {
		if _, has := out[domain.KeyContextScope]; !has {
			out[domain.KeyContextScope] = s
		}
	}
}

// setNormalized stores v under k, coercing identifier keys to int64.
// Identifier values that cannot be read as integers are discarded.
func setNormalized(out domain.Context, k string, v any) {
	if idKeys[k] {
		if n, ok := asInt64(v); ok {
			out[k] = n
		}
		return
	}
	if k == domain.KeyContextScope {
		if s, ok := v.(string); ok && s != "" {
			out[k] = s
		} else if n, ok := asInt64(v); ok {
			// Reclassified in the safety pass.
			out[k] = strconv.FormatInt(n, 10)
		}
		return
	}
	out[k] = v
}

// asInt64 reads ints, floats with integral values, json.Number, and
// digit-strings as int64.
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, true
		}
	}
	return 0, false
}

func hasKey(c domain.Context, k string) bool {
	_, ok := c[k]
	return ok
}

func isReservedTopLevel(k string) bool {
	switch k {
	case "query", "question", "session_id", "pending_intent", "scope", "context":
		return true
	}
	for _, c := range contextContainerKeys {
		if k == c {
			return true
		}
	}
	for _, p := range promotedKeys {
		if k == p {
			return true
		}
	}
	return false
}
