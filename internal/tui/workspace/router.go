package workspace

type routerEntry struct {
	view   View
	target ViewTarget
}

// Router is the navigation stack. The bottom entry is the active section.
type Router struct {
	stack []routerEntry
}

func NewRouter() *Router {
	return &Router{}
}

// Reset clears the stack and makes view the new root.
func (r *Router) Reset(view View, target ViewTarget) {
	r.stack = []routerEntry{{view: view, target: target}}
}

func (r *Router) Push(view View, target ViewTarget) {
	r.stack = append(r.stack, routerEntry{view: view, target: target})
}

// Pop removes the top view and returns the new current one. The root is
// never popped; Pop then returns nil.
func (r *Router) Pop() View {
	if len(r.stack) <= 1 {
		return nil
	}
	r.stack[len(r.stack)-1] = routerEntry{}
	r.stack = r.stack[:len(r.stack)-1]
	return r.Current()
}

// Current returns the top view, or nil if empty.
func (r *Router) Current() View {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1].view
}

// Replace swaps the top view for an updated copy.
func (r *Router) Replace(view View) {
	if len(r.stack) > 0 {
		r.stack[len(r.stack)-1].view = view
	}
}

// CurrentTarget returns the target of the top view.
func (r *Router) CurrentTarget() ViewTarget {
	if len(r.stack) == 0 {
		return ViewPlanner
	}
	return r.stack[len(r.stack)-1].target
}

// Section returns the target of the root view.
func (r *Router) Section() ViewTarget {
	if len(r.stack) == 0 {
		return ViewPlanner
	}
	return r.stack[0].target
}

func (r *Router) Depth() int {
	return len(r.stack)
}

func (r *Router) CanGoBack() bool {
	return len(r.stack) > 1
}

// Breadcrumbs returns the title chain for all views in the stack.
func (r *Router) Breadcrumbs() []string {
	crumbs := make([]string, len(r.stack))
	for i, entry := range r.stack {
		crumbs[i] = entry.view.Title()
	}
	return crumbs
}
