package formschema

// layoutTypes group or decorate inputs but hold no value of their own.
var layoutTypes = map[string]bool{
	"panel":       true,
	"columns":     true,
	"tabs":        true,
	"fieldset":    true,
	"well":        true,
	"table":       true,
	"htmlelement": true,
	"content":     true,
	"button":      true,
}

// valueContainers hold a nested value built from their children.
var valueContainers = map[string]bool{
	"datagrid":  true,
	"editgrid":  true,
	"container": true,
}

// Children returns nested components from components, columns and table cells.
func (c Component) Children() []Component {
	if len(c.Columns) == 0 {
		return c.Components
	}
	out := make([]Component, 0, len(c.Components))
	out = append(out, c.Components...)
	for _, col := range c.Columns {
		out = append(out, col...)
	}
	return out
}

func (c Component) IsLayout() bool {
	if layoutTypes[c.Type] {
		return true
	}
	// tab entries inside "tabs" carry no type
	return c.Type == "" && len(c.Children()) > 0
}

// IsField reports whether c contributes a value to the submission.
func (c Component) IsField() bool {
	if c.Key == "" || c.IsLayout() {
		return false
	}
	if valueContainers[c.Type] {
		return true
	}
	if _, known := typeKinds[c.Type]; known {
		return true
	}
	return c.Input
}

// Walk visits comps depth-first. Returning false from fn skips the
// component's children.
func Walk(comps []Component, fn func(Component) bool) {
	for _, c := range comps {
		if fn(c) {
			Walk(c.Children(), fn)
		}
	}
}

// Fields lists the value-bearing components of comps, looking through
// layout nodes but not into grids or containers, whose children belong to
// the nested value.
func Fields(comps []Component) []Component {
	var out []Component
	Walk(comps, func(c Component) bool {
		if c.IsField() {
			out = append(out, c)
			return false
		}
		return true
	})
	return out
}

// VisibleFields is Fields without hidden components. A hidden layout node
// hides its whole subtree.
func VisibleFields(comps []Component) []Component {
	var out []Component
	Walk(comps, func(c Component) bool {
		if c.Hidden {
			return false
		}
		if c.IsField() {
			out = append(out, c)
			return false
		}
		return true
	})
	return out
}

func (s *Schema) Fields() []Component {
	if s == nil {
		return nil
	}
	return Fields(s.Components)
}
