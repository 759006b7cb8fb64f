package loop

import "time"

// Screen layout.
const (
	hudRows       = 2  // Rows above the road for scores, lives and level
	progressWidth = 20 // Cells of the level progress bar
)

// Session limits.
const (
	shutdownDisplay = 5 * time.Second // How long the shutdown notice stays up

	// Warn this long before an idle session is closed.
	idleWarning = 30 * time.Second
)
