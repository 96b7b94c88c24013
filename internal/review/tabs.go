package review

// Tab is one selectable pane header with its live member count.
type Tab struct {
	ID     GroupID `json:"id"`
	Label  string  `json:"label"`
	Count  int     `json:"count"`
	Active bool    `json:"active"`
}

// TabController derives the tab strip from the model. It holds no membership
// state of its own: counts and presence are recomputed from the model on
// every render so a reassignment can never leave a stale badge behind.
type TabController struct {
	model *Model
}

// NewTabController creates a controller over the given model.
func NewTabController(model *Model) *TabController {
	return &TabController{model: model}
}

// Render returns the current tab strip, nil when the model is empty.
func (t *TabController) Render() []Tab {
	groups := t.model.Groups()
	if len(groups) == 0 {
		return nil
	}

	active := t.model.ActiveTab()
	tabs := make([]Tab, len(groups))
	for i, g := range groups {
		tabs[i] = Tab{
			ID:     g.ID,
			Label:  g.Name(),
			Count:  g.Count(),
			Active: g.ID == active,
		}
	}
	return tabs
}

// Select activates the given tab. A stale id is a no-op; the previous
// selection stands.
func (t *TabController) Select(id GroupID) bool {
	return t.model.SelectTab(id)
}
