package browser

import (
	"fmt"
	"strings"
)

// Strategy names how a Locator identifies a DOM node.
type Strategy string

const (
	StrategyName      Strategy = "name"
	StrategyID        Strategy = "id"
	StrategyXPath     Strategy = "xpath"
	StrategyClassName Strategy = "class name"
	StrategyTagName   Strategy = "tag name"
	StrategyText      Strategy = "text"
)

// Locator is an immutable (strategy, value) pair identifying a DOM node.
type Locator struct {
	Strategy Strategy
	Value    string
}

// ByName matches on the name attribute.
func ByName(name string) Locator { return Locator{Strategy: StrategyName, Value: name} }

// ByID matches on the id attribute.
func ByID(id string) Locator { return Locator{Strategy: StrategyID, Value: id} }

// ByXPath uses the expression as is.
func ByXPath(expr string) Locator { return Locator{Strategy: StrategyXPath, Value: expr} }

// ByClassName matches elements carrying the given class.
func ByClassName(class string) Locator { return Locator{Strategy: StrategyClassName, Value: class} }

// ByTagName matches elements by tag.
func ByTagName(tag string) Locator { return Locator{Strategy: StrategyTagName, Value: tag} }

// ByText matches elements whose own text contains the given string.
func ByText(text string) Locator { return Locator{Strategy: StrategyText, Value: text} }

// String renders the locator for logs and error messages.
func (l Locator) String() string {
	return fmt.Sprintf("%s=%q", l.Strategy, l.Value)
}

// XPath translates the locator into an XPath 1.0 expression.
func (l Locator) XPath() (string, error) {
	if l.Value == "" {
		return "", fmt.Errorf("%w: empty value for strategy %q", ErrInvalidLocator, l.Strategy)
	}

	switch l.Strategy {
	case StrategyXPath:
		return l.Value, nil
	case StrategyName:
		return fmt.Sprintf("//*[@name=%s]", QuoteXPath(l.Value)), nil
	case StrategyID:
		return fmt.Sprintf("//*[@id=%s]", QuoteXPath(l.Value)), nil
	case StrategyClassName:
		return fmt.Sprintf(`//*[contains(concat(" ", normalize-space(@class), " "), %s)]`,
			QuoteXPath(" "+l.Value+" ")), nil
	case StrategyTagName:
		return "//" + l.Value, nil
	case StrategyText:
		return fmt.Sprintf("//*[contains(text(), %s)]", QuoteXPath(l.Value)), nil
	default:
		return "", fmt.Errorf("%w: unknown strategy %q", ErrInvalidLocator, l.Strategy)
	}
}

// QuoteXPath quotes s as an XPath string literal. XPath 1.0 has no escape
// sequences, so strings holding both quote kinds go through concat().
func QuoteXPath(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}

	parts := strings.Split(s, `"`)
	quoted := make([]string, 0, 2*len(parts))
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `'"'`)
		}
		if p != "" {
			quoted = append(quoted, `"`+p+`"`)
		}
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}
