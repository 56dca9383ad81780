package main

func (m *model) handlePan(key string, speed int) {
	dx := float64(keyPanStep*speed) * cellWidth
	dy := float64(keyPanStep*speed) * cellHeight
	view := m.engine.Viewport()
	switch key {
	case "h", "left", "H", "shift+left":
		view.PanBy(dx, 0)
	case "l", "right", "L", "shift+right":
		view.PanBy(-dx, 0)
	case "k", "up", "K", "shift+up":
		view.PanBy(0, dy)
	case "j", "down", "J", "shift+down":
		view.PanBy(0, -dy)
	}
}

func (m *model) getMoveSpeed(key string) int {
	switch key {
	case "H", "L", "K", "J", "shift+left", "shift+right", "shift+up", "shift+down":
		return 2
	default:
		return 1
	}
}

func isNavigationKey(key string) bool {
	switch key {
	case "h", "j", "k", "l", "H", "J", "K", "L",
		"left", "right", "up", "down",
		"shift+left", "shift+right", "shift+up", "shift+down":
		return true
	}
	return false
}
