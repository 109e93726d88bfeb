package placeholder

import (
	"fmt"
	"strconv"
)

// Parse scans source left to right and splits it into a reconstruction
// plan: literal spans between placeholders, localized string references,
// and dynamic spans. The scan is a single linear pass with no backtracking.
//
// jsonp supplies the resolver stored on chunk-mapping placeholders; passing
// nil declares that the context does not support them (filenames), making
// any such placeholder a contract violation.
//
// Recoverable defects (a serial absent from the string table) are reported
// as issue strings and degrade to a static copy of the raw placeholder so
// the build keeps going with the problem visible in its output.
func Parse(source string, table StringTable, jsonp *LocaleResolver) (Plan, []string, error) {
	var (
		plan   Plan
		issues []string
	)

	last := 0
	for _, m := range placeholderRegex.FindAllStringSubmatchIndex(source, -1) {
		start, end := m[0], m[1]
		if start > last {
			plan = append(plan, staticElement(source[last:start]))
		}
		last = end

		raw := source[start:end]
		label := source[m[2]:m[3]]

		switch label {
		case LabelLocalized:
			serial, err := strconv.Atoi(source[m[6]:m[7]])
			if err != nil {
				return nil, nil, fmt.Errorf("parse serial in placeholder %q: %w", raw, err)
			}
			data, ok := table.Lookup(serial)
			if !ok {
				issues = append(issues, fmt.Sprintf("no string registered for placeholder %q", raw))
				plan = append(plan, staticElement(raw))
				continue
			}
			plan = append(plan, Element{
				Kind:           KindLocalized,
				Serial:         serial,
				String:         data,
				PlaceholderLen: len(raw),
			})

		case LabelLocaleName:
			plan = append(plan, Element{
				Kind:           KindDynamic,
				Resolver:       IdentityLocale(),
				PlaceholderLen: len(raw),
			})

		case LabelJsonp:
			if jsonp == nil {
				return nil, nil, fmt.Errorf("chunk mapping placeholder %q is not supported in this context", raw)
			}
			token := ""
			if m[4] >= 0 {
				token = source[m[4]:m[5]]
			}
			plan = append(plan, Element{
				Kind:           KindDynamic,
				Resolver:       *jsonp,
				Token:          token,
				PlaceholderLen: len(raw),
			})

		default:
			return nil, nil, fmt.Errorf("unexpected placeholder label %q in %q", label, raw)
		}
	}

	if trailing := source[last:]; trailing != "" || len(plan) == 0 {
		plan = append(plan, staticElement(trailing))
	}

	return plan, issues, nil
}
