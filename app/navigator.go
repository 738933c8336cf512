package app

import "sync"

// Navigator tracks the active view. The gateway uses it to send the user
// to the sign-in view on a 401.
type Navigator struct {
	mu      sync.Mutex
	current string
	history []string
}

func NewNavigator(initial string) *Navigator {
	return &Navigator{current: initial}
}

func (n *Navigator) CurrentView() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Redirect replaces the current view.
func (n *Navigator) Redirect(view string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if view == n.current {
		return
	}
	n.history = append(n.history, n.current)
	n.current = view
}

// History lists the views left through Redirect, oldest first.
func (n *Navigator) History() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.history...)
}
