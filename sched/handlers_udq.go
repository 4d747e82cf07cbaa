package sched

import (
	"strconv"
	"strings"
)

func parseFloatToken(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// udqHandlers is the user-defined-quantity keyword registry.
func udqHandlers() map[string]KeywordHandler {
	return map[string]KeywordHandler{
		"UDQ": handleUDQ,
	}
}

// handleUDQ processes ASSIGN, DEFINE and UNITS records. Each record is an
// action token followed by the quantity name and the remaining tokens.
func handleUDQ(hc *HandlerContext) error {
	if err := requireRecords(hc, 1); err != nil {
		return err
	}
	st := hc.State()
	udq := st.UDQ()
	changed := false

	for r := range hc.keyword.Records {
		record := &hc.keyword.Records[r]
		verb := record.Item("ACTION").GetTrimmedString(0)
		quantity := record.Item("QUANTITY").GetTrimmedString(0)
		if _, err := UDQVarTypeFromName(quantity, hc.Location()); err != nil {
			return err
		}

		data := record.Item("DATA")
		var tokens []string
		for v := range data.Values {
			if t := data.GetTrimmedString(v); t != "" {
				tokens = append(tokens, t)
			}
		}

		switch verb {
		case "ASSIGN":
			value, selector, err := splitAssign(tokens, hc.Location())
			if err != nil {
				return err
			}
			udq.AddAssign(quantity, selector, value, hc.currentStep)
			changed = true
		case "DEFINE":
			if len(tokens) == 0 {
				return NewInputError(hc.Location(), "UDQ DEFINE for %s carries no expression", quantity)
			}
			expression := strings.Join(tokens, " ")
			if err := udq.AddDefine(quantity, expression, hc.currentStep, hc.Location()); err != nil {
				return err
			}
			changed = true
		case "UNITS":
			if len(tokens) == 0 {
				return NewInputError(hc.Location(), "UDQ UNITS for %s carries no unit string", quantity)
			}
			udq.AddUnits(quantity, tokens[0])
		default:
			return NewInputError(hc.Location(), "Unknown UDQ action: %s", verb)
		}
	}

	if changed {
		st.Events.AddEvent(EventUDQChange)
	}
	return nil
}

// splitAssign separates the trailing numeric value of an ASSIGN from the
// optional leading well or group selectors.
func splitAssign(tokens []string, location Location) (float64, []string, error) {
	if len(tokens) == 0 {
		return 0, nil, NewInputError(location, "UDQ ASSIGN carries no value")
	}
	last := tokens[len(tokens)-1]
	value, err := parseFloatToken(last)
	if err != nil {
		return 0, nil, NewInputError(location, "UDQ ASSIGN value %q is not numeric", last)
	}
	return value, tokens[:len(tokens)-1], nil
}
