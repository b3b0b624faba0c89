package i18n

// EnMessages English message catalog
var EnMessages = map[string]string{
	// UI - Panel titles
	"panel.timer":       "Timer",
	"panel.todo":        "To-do",
	"panel.backgrounds": "Backgrounds",
	"panel.help":        "Help",

	// Timer
	"timer.running":  "Running",
	"timer.paused":   "Paused",
	"timer.complete": "%s session complete!",
	"timer.preset":   "%d min %s",
	"timer.set":      "Timer set to %s (%s)",
	"timer.invalid":  "Duration must be a positive number of minutes",

	// Ambient sound
	"audio.on":       "Noise on",
	"audio.off":      "Noise off",
	"audio.volume":   "Volume %d%%",
	"audio.kind":     "Noise: %s",
	"audio.disabled": "Audio unavailable",

	// To-do
	"todo.empty":       "Nothing to do.",
	"todo.remaining":   "%d remaining",
	"todo.filter":      "Filter: %s",
	"todo.placeholder": "What needs doing?",
	"todo.added":       "Added: %s",
	"todo.toggled":     "Toggled: %s",
	"todo.deleted":     "Deleted #%d",
	"todo.cleared":     "Cleared %d completed",
	"todo.not_found":   "No to-do with id %d",

	// Backgrounds
	"bg.current":            "Background: %s",
	"bg.upload_placeholder": "Path to an image file",
	"bg.uploaded":           "Uploaded %s",
	"bg.removed":            "Removed %s",
	"bg.preset":             "preset",
	"bg.upload":             "upload",

	// Quotes
	"quote.title":   "Quote",
	"quote.fetched": "Fetched %d quotes",

	// Blocking alert
	"alert.title":   "Storage error",
	"alert.dismiss": "Press enter to dismiss",

	// Key help (TUI)
	"keys.preset":     "preset",
	"keys.toggle":     "start/pause",
	"keys.reset":      "reset",
	"keys.volume_up":  "volume up",
	"keys.volume_dn":  "volume down",
	"keys.noise":      "noise on/off",
	"keys.noise_kind": "noise colour",
	"keys.bg_next":    "next background",
	"keys.bg_prev":    "prev background",
	"keys.tab":        "switch panel",
	"keys.add":        "add",
	"keys.done":       "toggle done",
	"keys.delete":     "delete",
	"keys.filter":     "filter",
	"keys.clear":      "clear completed",
	"keys.quote":      "next quote",
	"keys.help":       "help",
	"keys.quit":       "quit",
	"keys.upload":     "upload image",

	// REPL
	"repl.welcome":  "focusdesk %s. Type /help for commands.",
	"repl.unknown":  "Unknown command: %s",
	"repl.bye":      "Bye.",
	"repl.usage":    "Usage: %s",
	"repl.status":   "%s  %s  [%s]",
	"repl.help_doc": helpDocEn,

	// Errors
	"error.generic": "Error: %v",
	"error.storage": "Storage error: %v",
}

const helpDocEn = `# focusdesk

| key | action |
|---|---|
| 1-9 | choose a duration preset (keys past the last preset do nothing) |
| space | start / pause |
| r | reset the timer |
| + / - | volume |
| n | ambient noise on / off |
| c | white / brown noise |
| b / B | next / previous background |
| u | upload a background image |
| tab | switch panel |
| a / x / d / f | add, toggle, delete, filter to-dos |
| X | clear completed to-dos |
| . | next quote |
| ? | help |
| q / ctrl+c | quit |

REPL commands: /start /pause /toggle /reset /preset N /set MIN
/status /todo /quote /noise /vol N /bg /help /quit
`
